// Package storage defines the persistence ports and the SQLite adapter.
// Every transaction operation is scoped to one owner; no call ever reads or
// deletes another owner's records.
package storage

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateUser = errors.New("username already exists")
)

type (
	// TransactionStore persists each owner's transaction log.
	TransactionStore interface {
		// FetchAll returns the owner's records ordered by date, then id.
		FetchAll(ctx context.Context, owner int64) ([]core.Transaction, error)
		// Append stores a record and returns it with its assigned id.
		Append(ctx context.Context, owner int64, t core.NewTransaction) (core.Transaction, error)
		// ClearAll deletes every record of the owner and reports how many.
		ClearAll(ctx context.Context, owner int64) (int64, error)
		// Get returns one record, or ErrNotFound.
		Get(ctx context.Context, owner, id int64) (core.Transaction, error)
	}

	UserStore interface {
		// CreateUser fails with ErrDuplicateUser when the username is taken.
		CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)
		// UserByUsername returns ErrNotFound for an unknown username.
		UserByUsername(ctx context.Context, username string) (core.User, error)
	}

	// Store is what a backend provides to the application.
	Store interface {
		TransactionStore
		UserStore
		Close() error
	}
)

// ScanTransaction builds a record from stored column values. Corrupt
// values surface as *core.DataError rather than reaching the reports.
func ScanTransaction(id, owner int64, date core.Date, category string, cents int64, kind string) (core.Transaction, error) {
	k, err := core.ParseKind(kind)
	if err != nil {
		var de *core.DataError
		if errors.As(err, &de) {
			de.ID = id
		}
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:       id,
		Owner:    owner,
		Date:     date,
		Category: category,
		Amount:   core.Money{Cents: cents},
		Kind:     k,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
