// Package sheets mirrors ledgers into an external spreadsheet.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerExporter keeps a flat row-per-transaction copy of every ledger.
	LedgerExporter interface {
		// AppendTransaction adds one row for t. Appending an already
		// exported id must not produce a second row.
		AppendTransaction(ctx context.Context, t core.Transaction) error
		// RemoveOwner deletes every row of owner and reports how many.
		RemoveOwner(ctx context.Context, owner int64) (int, error)
	}
)

// Header is the column layout of an exported row.
var Header = []string{"id", "owner", "date", "category", "amount", "kind"}

// Row renders t in Header order.
func Row(t core.Transaction) []any {
	return []any{t.ID, t.Owner, t.Date.String(), t.Category, t.Amount.String(), t.Kind.String()}
}
