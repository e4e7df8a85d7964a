package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/storage/memory"
)

func TestRenderReport(t *testing.T) {
	records := []core.Transaction{
		{ID: 1, Date: core.NewDate(2025, 1, 5), Category: "Food", Amount: core.Money{Cents: 2550}, Kind: core.Expense},
		{ID: 2, Date: core.NewDate(2025, 1, 31), Category: "Salary", Amount: core.Money{Cents: 100000}, Kind: core.Income},
		{ID: 3, Date: core.NewDate(2025, 2, 2), Category: "Rent", Amount: core.Money{Cents: 50000}, Kind: core.Expense},
	}
	sum, err := report.Summarize(records)
	require.NoError(t, err)

	out := RenderReport("alice", sum)
	for _, want := range []string{"Ledger of alice", "3 transactions", "1000.00", "525.50", "474.50", "Rent", "Food", "2025-01", "2025-02", "Income", "Expense"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Rent"), strings.Index(out, "Food"))
}

func TestRenderReportEmpty(t *testing.T) {
	out := RenderReport("bob", report.Summary{})
	assert.Contains(t, out, "No transactions recorded.")
	assert.NotContains(t, out, "Monthly")
}

func TestRenderReportIncomeOnly(t *testing.T) {
	sum, err := report.Summarize([]core.Transaction{
		{ID: 1, Date: core.NewDate(2025, 3, 1), Category: "Salary", Amount: core.Money{Cents: 100}, Kind: core.Income},
	})
	require.NoError(t, err)

	out := RenderReport("carol", sum)
	assert.Contains(t, out, "No expenses recorded.")
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := renderTable([]string{"Category", "Total"}, [][]string{{"Food", "5.00"}, {"Entertainment", "120.00"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	last := lines[len(lines)-1]
	prev := lines[len(lines)-2]
	assert.Equal(t, len(strings.TrimRight(prev, " ")), len(strings.TrimRight(last, " ")))
}

func TestSkippedSummary(t *testing.T) {
	errs := []error{errors.New("row 2: bad"), errors.New("row 3: bad"), errors.New("row 4: bad")}
	out := SkippedSummary(errs, 2)
	assert.Contains(t, out, "row 2: bad")
	assert.Contains(t, out, "row 3: bad")
	assert.NotContains(t, out, "row 4")
	assert.Contains(t, out, "and 1 more")
}

func TestLoadConfigAndOpenStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DataBackend)

	logger := SetupLogger(cfg)
	require.NotNil(t, logger)

	store, err := OpenStore(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &memory.Store{}, store)

	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	store, err = OpenStore(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.NoError(t, store.Close())

	t.Setenv("DATA_BACKEND", "sheets")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "invalid data backend")
}

func TestGracefulShutdownStop(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "error", LogFormat: "json"})
	ctx, stop := GracefulShutdown(context.Background(), logger)
	assert.NoError(t, ctx.Err())
	stop()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
