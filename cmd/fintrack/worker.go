package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Export ledger events to Google Sheets",
		Long: `worker consumes the ledger events published by serve and import and
mirrors every user's transactions into the configured spreadsheet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWorker(cmd.Context())
		},
	}
}

func (a *app) runWorker(ctx context.Context) error {
	if a.cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required to run the worker")
	}
	if !a.cfg.ExportEnabled() {
		return errors.New("GOOGLE_SPREADSHEET_ID is required to run the worker")
	}

	l, err := a.openLedger(ctx, false)
	if err != nil {
		return err
	}
	defer l.Close()

	exporter, err := google.New(ctx, google.Config{
		SpreadsheetID:   a.cfg.GoogleSpreadsheetID,
		SheetName:       a.cfg.GoogleSheetName,
		CredentialsJSON: a.cfg.GoogleServiceAccountJSON,
		CredentialsFile: a.cfg.GoogleServiceAccountFile,
	}, a.logger)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.logger)
	if err != nil {
		return err
	}
	defer client.Close()

	w := worker.NewExportWorker(l.store, exporter, a.logger)
	a.logger.Info("Starting export worker",
		"queue", a.cfg.AMQPQueue, "sheet", a.cfg.GoogleSheetName, log.FieldOperation, log.OpStartup)

	err = client.Consume(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("Export worker stopped")
		return nil
	}
	return err
}
