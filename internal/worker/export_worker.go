// Package worker applies ledger events to the spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// ExportWorker mirrors ledgers into a spreadsheet, one event at a time.
type ExportWorker struct {
	store    storage.TransactionStore
	exporter sheets.LedgerExporter
	logger   *log.Logger
}

func NewExportWorker(store storage.TransactionStore, exporter sheets.LedgerExporter, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		store:    store,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent is the consumer callback. A returned error requeues the event.
func (w *ExportWorker) HandleEvent(ctx context.Context, event amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEvent, event.Type,
		log.FieldOwner, event.Owner,
		log.FieldTransactionID, event.TransactionID)

	switch event.Type {
	case amqp.TransactionCreated:
		return w.exportTransaction(ctx, event)
	case amqp.TransactionsCleared:
		return w.removeOwner(ctx, event)
	default:
		// the decoder already rejects these; nothing to retry
		w.logger.WarnContext(ctx, "Ignoring unknown ledger event", log.FieldEvent, event.Type)
		return nil
	}
}

func (w *ExportWorker) exportTransaction(ctx context.Context, event amqp.LedgerEvent) error {
	t, err := w.store.Get(ctx, event.Owner, event.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		// cleared before we got to it
		w.logger.InfoContext(ctx, "Transaction no longer exists, skipping export",
			log.FieldOwner, event.Owner, log.FieldTransactionID, event.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exporter.AppendTransaction(ctx, t); err != nil {
		return fmt.Errorf("export transaction %d: %w", t.ID, err)
	}
	return nil
}

func (w *ExportWorker) removeOwner(ctx context.Context, event amqp.LedgerEvent) error {
	n, err := w.exporter.RemoveOwner(ctx, event.Owner)
	if err != nil {
		return fmt.Errorf("remove owner %d: %w", event.Owner, err)
	}
	w.logger.InfoContext(ctx, "Removed exported rows",
		log.FieldOwner, event.Owner, log.FieldCount, n, "cleared", event.Count)
	return nil
}
