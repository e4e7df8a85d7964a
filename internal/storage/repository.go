package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

var _ Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.User{}, ErrDuplicateUser
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	return core.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	var (
		u       core.User
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("select user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, nil
}

func (r *SQLiteRepository) Append(ctx context.Context, owner int64, t core.NewTransaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, date, category, amount_cents, kind, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		owner, t.Date.String(), t.Category, t.Amount.Cents, t.Kind.String(), time.Now().Unix())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}

	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		log.NewFields().WithOwner(owner).WithTransaction(id, t.Category, t.Kind.String(), t.Amount.Cents).ToSlice()...)

	return core.Transaction{
		ID:       id,
		Owner:    owner,
		Date:     t.Date,
		Category: t.Category,
		Amount:   t.Amount,
		Kind:     t.Kind,
	}, nil
}

func (r *SQLiteRepository) FetchAll(ctx context.Context, owner int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, category, amount_cents, kind
		 FROM transactions WHERE user_id = ? ORDER BY date, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, owner, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, category, amount_cents, kind
		 FROM transactions WHERE user_id = ? AND id = ?`, owner, id)
	t, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	return t, err
}

func (r *SQLiteRepository) ClearAll(ctx context.Context, owner int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ?`, owner)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (core.Transaction, error) {
	var (
		id, owner, cents     int64
		date, category, kind string
	)
	if err := s.Scan(&id, &owner, &date, &category, &cents, &kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		var de *core.DataError
		if errors.As(err, &de) {
			de.ID = id
		}
		return core.Transaction{}, err
	}
	return ScanTransaction(id, owner, d, category, cents, kind)
}
