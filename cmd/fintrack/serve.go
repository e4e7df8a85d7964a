package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

func newServeCmd(a *app) *cobra.Command {
	var corsOrigins []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web app and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), corsOrigins)
		},
	}
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "origin allowed to call /api with credentials (repeatable, default localhost)")
	return cmd
}

func (a *app) serve(ctx context.Context, corsOrigins []string) error {
	l, err := a.openLedger(ctx, true)
	if err != nil {
		return err
	}
	defer l.Close()

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + a.cfg.Port,
		CookieSecure:       a.cfg.CookieSecure,
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
		CORSOrigins:        corsOrigins,
	}, apphttp.Deps{
		Transactions: l.tx,
		Auth:         l.auth,
		Store:        l.store,
		Logger:       a.logger,
	})
	if err != nil {
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 20 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("Starting fintrack server",
			"port", a.cfg.Port, "backend", a.cfg.DataBackend, log.FieldOperation, log.OpStartup)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server shutdown error", log.FieldError, err)
		return err
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}
