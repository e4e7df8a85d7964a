package backend

import (
	"context"
	"fmt"

	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
	"fintrack/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateStore opens the configured backend, running migrations where the
// backend has a schema.
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (storage.Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil

	case PostgresBackend:
		store, err := postgres.New(ctx, config.PostgresURL, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return store, nil

	case MemoryBackend:
		f.logger.Warn("Initialized memory backend, data is lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// Migrate applies pending migrations without keeping a connection open.
// It returns the schema version, or 0 for the memory backend.
func Migrate(config Config) (uint, error) {
	if err := config.Validate(); err != nil {
		return 0, err
	}
	switch config.Type {
	case SQLiteBackend:
		return storage.RunMigrations(config.SQLiteDBPath)
	case PostgresBackend:
		return postgres.RunMigrations(config.PostgresURL)
	default:
		return 0, nil
	}
}
