//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Run with: go test -tags=integration ./internal/sheets/google
func TestIntegration_ExportRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	cfg := Config{
		SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}
	if cfg.SpreadsheetID == "" || (cfg.CredentialsJSON == "" && cfg.CredentialsFile == "") {
		t.Skip("spreadsheet credentials not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := New(ctx, cfg, log.New(log.DefaultConfig()))
	require.NoError(t, err)

	// a far-away owner id keeps real rows untouched
	owner := time.Now().UnixNano()
	tr := core.Transaction{ID: owner, Owner: owner, Date: core.NewDate(2025, 1, 1), Category: "Integration", Amount: core.Money{Cents: 1234}, Kind: core.Expense}
	require.NoError(t, client.AppendTransaction(ctx, tr))

	n, err := client.RemoveOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
