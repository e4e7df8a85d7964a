// Package postgres implements storage.Store on a pgx connection pool.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const uniqueViolation = "23505"

type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

var _ storage.Store = (*Store)(nil)

// New migrates the database at connStr and opens a pool on it.
func New(ctx context.Context, connStr string, logger *log.Logger) (*Store, error) {
	if _, err := RunMigrations(connStr); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{pool: pool, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

// RunMigrations applies the embedded migrations and returns the schema version.
func RunMigrations(connStr string) (uint, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer db.Close()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return 0, fmt.Errorf("create pgx driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	u := core.User{Username: username, PasswordHash: passwordHash}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		username, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.User{}, storage.ErrDuplicateUser
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, storage.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (s *Store) Append(ctx context.Context, owner int64, t core.NewTransaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, date, category, amount_cents, kind)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		owner, t.Date.Time, t.Category, t.Amount.Cents, t.Kind.String()).Scan(&id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	s.logger.DebugContext(ctx, "Transaction saved to Postgres",
		log.NewFields().WithOwner(owner).WithTransaction(id, t.Category, t.Kind.String(), t.Amount.Cents).ToSlice()...)

	return core.Transaction{ID: id, Owner: owner, Date: t.Date, Category: t.Category, Amount: t.Amount, Kind: t.Kind}, nil
}

func (s *Store) FetchAll(ctx context.Context, owner int64) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, date, category, amount_cents, kind
		 FROM transactions WHERE user_id = $1 ORDER BY date, id`, owner)
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

func (s *Store) Get(ctx context.Context, owner, id int64) (core.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, date, category, amount_cents, kind
		 FROM transactions WHERE user_id = $1 AND id = $2`, owner, id)
	t, err := scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, err
}

func (s *Store) ClearAll(ctx context.Context, owner int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, owner)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRow(row pgx.Row) (core.Transaction, error) {
	var (
		id, owner, cents int64
		date             time.Time
		category, kind   string
	)
	if err := row.Scan(&id, &owner, &date, &category, &cents, &kind); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	d := core.NewDate(date.Year(), int(date.Month()), date.Day())
	return storage.ScanTransaction(id, owner, d, category, cents, kind)
}
