package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	logger := log.New(log.Config{Output: io.Discard})
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "fintrack.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTx(t *testing.T, date, category, amount, kind string) core.NewTransaction {
	t.Helper()
	tx, err := core.ParseTransaction(date, category, amount, kind)
	require.NoError(t, err)
	return tx
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	require.NoError(t, err)
	v2, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v1)
	assert.Equal(t, v1, v2)
}

func TestSQLiteUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = repo.CreateUser(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrDuplicateUser)

	got, err := repo.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.UserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteTransactionsScopedByOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, "bob", "h")
	require.NoError(t, err)

	late, err := repo.Append(ctx, alice.ID, newTx(t, "2025-02-01", "Food", "5", "expense"))
	require.NoError(t, err)
	early, err := repo.Append(ctx, alice.ID, newTx(t, "2025-01-05", "Salary", "1000", "income"))
	require.NoError(t, err)
	_, err = repo.Append(ctx, bob.ID, newTx(t, "2025-01-01", "Food", "1", "expense"))
	require.NoError(t, err)

	all, err := repo.FetchAll(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, early, all[0])
	assert.Equal(t, late, all[1])
	assert.Equal(t, core.Income, all[0].Kind)
	assert.Equal(t, core.Money{Cents: 100000}, all[0].Amount)

	got, err := repo.Get(ctx, alice.ID, late.ID)
	require.NoError(t, err)
	assert.Equal(t, late, got)
	_, err = repo.Get(ctx, bob.ID, late.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repo.ClearAll(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err = repo.FetchAll(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	bobs, err := repo.FetchAll(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)
}

func TestSQLiteAppendRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Append(context.Background(), 1, core.NewTransaction{Date: core.NewDate(2025, 1, 1), Category: "Food", Kind: core.Kind(0)})
	var de *core.DataError
	assert.ErrorAs(t, err, &de)
}

func TestSQLiteCorruptRowSurfacesDataError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, "carol", "h")
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, date, category, amount_cents, kind, created_at) VALUES (?, '05/01/2025', 'Food', 100, 'expense', 0)`, u.ID)
	require.NoError(t, err)

	_, err = repo.FetchAll(ctx, u.ID)
	var de *core.DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, core.FieldDate, de.Field)
	assert.NotZero(t, de.ID)
}
