package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// fakeSheet serves the subset of the Values API the client uses.
type fakeSheet struct {
	mu    sync.Mutex
	rows  [][]any
	calls []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		json.NewEncoder(w).Encode(gsheet.ValueRange{Range: "Ledger!A:F", Values: f.rows})
		return
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		f.calls = append(f.calls, "append")
		var vr gsheet.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		f.rows = nil
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		var vr gsheet.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		f.rows = vr.Values
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
		return
	}
	io.WriteString(w, "{}")
}

func newTestClient(t *testing.T) (*Client, *fakeSheet) {
	t.Helper()
	fake := &fakeSheet{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	require.NoError(t, err)
	return NewWithService(svc, Config{SpreadsheetID: "sheet-id"}, log.New(log.Config{Output: io.Discard})), fake
}

func tx(id, owner int64, cents int64, kind core.Kind) core.Transaction {
	return core.Transaction{ID: id, Owner: owner, Date: core.NewDate(2025, 1, 2), Category: "Food", Amount: core.Money{Cents: cents}, Kind: kind}
}

func TestNew_MissingConfig(t *testing.T) {
	logger := log.New(log.Config{Output: io.Discard})

	_, err := New(context.Background(), Config{}, logger)
	assert.EqualError(t, err, "missing GOOGLE_SPREADSHEET_ID")

	_, err = New(context.Background(), Config{SpreadsheetID: "x"}, logger)
	assert.ErrorContains(t, err, "missing service account credentials")

	_, err = New(context.Background(), Config{SpreadsheetID: "x", CredentialsFile: "/does/not/exist.json"}, logger)
	assert.ErrorContains(t, err, "read service account file")
}

func TestAppendTransaction(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.AppendTransaction(ctx, tx(1, 7, 1250, core.Expense)))
	require.Len(t, fake.rows, 2, "header and one row")
	assert.Equal(t, []any{"id", "owner", "date", "category", "amount", "kind"}, fake.rows[0])
	assert.Equal(t, []any{float64(1), float64(7), "2025-01-02", "Food", "12.50", "expense"}, fake.rows[1])

	// redelivery of the same id is a no-op
	require.NoError(t, c.AppendTransaction(ctx, tx(1, 7, 1250, core.Expense)))
	assert.Len(t, fake.rows, 2)

	require.NoError(t, c.AppendTransaction(ctx, tx(2, 8, 500, core.Income)))
	assert.Len(t, fake.rows, 3)
}

func TestRemoveOwner(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	for _, tr := range []core.Transaction{tx(1, 7, 100, core.Expense), tx(2, 8, 200, core.Income), tx(3, 7, 300, core.Expense)} {
		require.NoError(t, c.AppendTransaction(ctx, tr))
	}

	n, err := c.RemoveOwner(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, fake.rows, 2)
	assert.Equal(t, "id", fake.rows[0][0])
	assert.Equal(t, float64(2), fake.rows[1][0])

	fake.calls = nil
	n, err = c.RemoveOwner(ctx, 99)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"get"}, fake.calls, "nothing to remove means no writes")
}

func TestCell(t *testing.T) {
	row := []any{float64(3), " 12 ", "3.0", "food"}
	assert.Equal(t, "3", cell(row, 0))
	assert.Equal(t, "12", cell(row, 1))
	assert.Equal(t, "3", cell(row, 2))
	assert.Equal(t, "food", cell(row, 3))
	assert.Equal(t, "", cell(row, 9))
}

func TestNilService(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheet: DefaultSheetName}
	assert.Error(t, c.AppendTransaction(context.Background(), tx(1, 1, 1, core.Expense)))
	_, err := c.RemoveOwner(context.Background(), 1)
	assert.Error(t, err)
}
