// Package memory is a process-local Store used by tests and by
// DATA_BACKEND=memory. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu      sync.Mutex
	nextTx  int64
	nextUsr int64
	users   map[string]core.User
	items   map[int64][]core.Transaction
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users: make(map[string]core.User),
		items: make(map[int64][]core.Transaction),
	}
}

func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return core.User{}, storage.ErrDuplicateUser
	}
	s.nextUsr++
	u := core.User{ID: s.nextUsr, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	s.users[username] = u
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return u, nil
}

// Append validates and stores the record under owner.
func (s *Store) Append(_ context.Context, owner int64, t core.NewTransaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTx++
	rec := core.Transaction{
		ID:       s.nextTx,
		Owner:    owner,
		Date:     t.Date,
		Category: t.Category,
		Amount:   t.Amount,
		Kind:     t.Kind,
	}
	s.items[owner] = append(s.items[owner], rec)
	return rec, nil
}

// Put stores a record verbatim, bypassing validation. Tests use it to
// simulate corrupt rows.
func (s *Store) Put(t core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		s.nextTx++
		t.ID = s.nextTx
	}
	s.items[t.Owner] = append(s.items[t.Owner], t)
}

func (s *Store) FetchAll(_ context.Context, owner int64) ([]core.Transaction, error) {
	s.mu.Lock()
	out := append([]core.Transaction{}, s.items[owner]...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Get(_ context.Context, owner, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items[owner] {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (s *Store) ClearAll(_ context.Context, owner int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.items[owner]))
	delete(s.items, owner)
	return n, nil
}

func (s *Store) Close() error { return nil }
