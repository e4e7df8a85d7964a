package backend

import (
	"context"

	"fintrack/internal/storage"
)

// Factory creates stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (storage.Store, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds configuration for store creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresURL  string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
