package backend

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.ErrorContains(t, err, "invalid backend type")

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.ErrorContains(t, err, "Postgres URL is required")

	c, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, c.Type)
}

func TestFactory_CreateStore(t *testing.T) {
	f := NewFactory(log.New(log.Config{Output: io.Discard}))
	ctx := context.Background()

	s, err := f.CreateStore(ctx, Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s)

	path := filepath.Join(t.TempDir(), "f.db")
	s, err = f.CreateStore(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &storage.SQLiteRepository{}, s)
	_, ok := s.(Pinger)
	assert.True(t, ok)

	_, err = f.CreateStore(ctx, Config{Type: "bogus"})
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	v, err := Migrate(Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = Migrate(Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "m.db")})
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}
