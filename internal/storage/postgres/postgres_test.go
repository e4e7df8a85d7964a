package postgres

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Runs only against a disposable database named by FINTRACK_TEST_POSTGRES_URL.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("FINTRACK_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("FINTRACK_TEST_POSTGRES_URL not set")
	}
	s, err := New(context.Background(), url, log.New(log.Config{Output: io.Discard}))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name := fmt.Sprintf("user_%d", time.Now().UnixNano())
	u, err := s.CreateUser(ctx, name, "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, name, "hash")
	assert.ErrorIs(t, err, storage.ErrDuplicateUser)

	got, err := s.UserByUsername(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	second, err := s.Append(ctx, u.ID, core.NewTransaction{Date: core.NewDate(2025, 2, 1), Category: "Food", Amount: core.Money{Cents: 500}, Kind: core.Expense})
	require.NoError(t, err)
	first, err := s.Append(ctx, u.ID, core.NewTransaction{Date: core.NewDate(2025, 1, 1), Category: "Salary", Amount: core.Money{Cents: 900}, Kind: core.Income})
	require.NoError(t, err)

	all, err := s.FetchAll(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []core.Transaction{first, second}, all)

	one, err := s.Get(ctx, u.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second, one)

	n, err := s.ClearAll(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = s.Get(ctx, u.ID, second.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
