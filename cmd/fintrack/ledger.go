package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/chart"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

const (
	sessionCacheSize = 10000
	cleanupInterval  = time.Minute
)

// ledger is the wired store, caches, services and optional event publisher.
type ledger struct {
	store     storage.Store
	publisher *amqp.Client
	caches    *cache.Manager
	tx        *services.TransactionService
	auth      *auth.Service
	logger    *log.Logger
}

// openLedger wires the ledger. With publish set and AMQP configured, changes
// are announced to the export worker; a broker that cannot be reached only
// disables announcements.
func (a *app) openLedger(ctx context.Context, publish bool) (*ledger, error) {
	store, err := cli.OpenStore(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}

	l := &ledger{store: store, caches: cache.NewManager(a.logger), logger: a.logger}

	var pub services.Publisher
	if publish && a.cfg.AMQPURL != "" {
		client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.logger)
		if err != nil {
			a.logger.Warn("AMQP unavailable, ledger events disabled", log.FieldError, err)
		} else {
			l.publisher = client
			pub = client
		}
	}

	sessions := cache.NewLRUCache[auth.Session](sessionCacheSize, a.cfg.SessionTTL)
	l.caches.Register("sessions", sessions)
	l.caches.StartCleanup(cleanupInterval)

	l.tx = services.NewTransactionService(store, chart.NewRenderer(), pub, a.logger)
	l.auth, err = auth.NewService(store, sessions, auth.Options{TTL: a.cfg.SessionTTL}, a.logger)
	if err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// owner resolves a username to the id that scopes its transactions.
func (l *ledger) owner(ctx context.Context, username string) (core.User, error) {
	u, err := l.store.UserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, fmt.Errorf("no user named %q", username)
	}
	return u, err
}

func (l *ledger) Close() {
	l.caches.Stop()
	l.caches.Wait()
	if l.publisher != nil {
		if err := l.publisher.Close(); err != nil {
			l.logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	}
	if err := l.store.Close(); err != nil {
		l.logger.Warn("Failed to close store", log.FieldError, err)
	}
}
