package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func TestStore_Users(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "h")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = s.CreateUser(ctx, "alice", "h2")
	assert.ErrorIs(t, err, storage.ErrDuplicateUser)

	_, err = s.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_OrderAndScope(t *testing.T) {
	s := New()
	ctx := context.Background()

	b, err := s.Append(ctx, 1, core.NewTransaction{Date: core.NewDate(2025, 3, 1), Category: "Food", Amount: core.Money{Cents: 1}, Kind: core.Expense})
	require.NoError(t, err)
	a, err := s.Append(ctx, 1, core.NewTransaction{Date: core.NewDate(2025, 1, 1), Category: "Food", Amount: core.Money{Cents: 2}, Kind: core.Expense})
	require.NoError(t, err)
	_, err = s.Append(ctx, 2, core.NewTransaction{Date: core.NewDate(2025, 1, 1), Category: "Food", Amount: core.Money{Cents: 3}, Kind: core.Income})
	require.NoError(t, err)

	all, err := s.FetchAll(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []core.Transaction{a, b}, all)

	_, err = s.Get(ctx, 2, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	n, err := s.ClearAll(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.ClearAll(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	other, err := s.FetchAll(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Append(ctx, 7, core.NewTransaction{Date: core.NewDate(2025, 1, 1), Category: "Food", Amount: core.Money{Cents: 1}, Kind: core.Expense})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.FetchAll(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, all, 50)
	seen := map[int64]bool{}
	for _, tx := range all {
		assert.False(t, seen[tx.ID])
		seen[tx.ID] = true
	}
}
