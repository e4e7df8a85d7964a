// Package memory is an in-process LedgerExporter for tests and for running
// the worker without spreadsheet credentials.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

type Exporter struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ sheets.LedgerExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) AppendTransaction(_ context.Context, t core.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.rows {
		if r.ID == t.ID {
			return nil
		}
	}
	e.rows = append(e.rows, t)
	return nil
}

func (e *Exporter) RemoveOwner(_ context.Context, owner int64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.rows[:0]
	removed := 0
	for _, r := range e.rows {
		if r.Owner == owner {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	e.rows = kept
	return removed, nil
}

// Rows returns a copy of the exported rows in insertion order.
func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Transaction(nil), e.rows...)
}
