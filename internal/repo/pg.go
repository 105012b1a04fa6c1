package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the Postgres SelectionStore. Rows live in the selections table.
type PGStore struct {
	db   db
	pool *pgxpool.Pool
}

// NewPGStore returns a store over an already-migrated connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewPGStore(db db) *PGStore {
	return &PGStore{db: db}
}

// OpenPGStore connects to dsn, applies migrations and returns a store that
// owns the pool.
func OpenPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenPGStore: open: %w", err)
	}
	err = Migrate(ctx, goose.DialectPostgres, sqlDB)
	sqlDB.Close()
	if err != nil {
		return nil, fmt.Errorf("repo.OpenPGStore: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenPGStore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repo.OpenPGStore: ping: %w", err)
	}
	return &PGStore{db: pool, pool: pool}, nil
}

func (s *PGStore) Get(ctx context.Context) (string, bool, error) {
	const q = `SELECT value FROM selections WHERE key = @key`

	var id string
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"key": SelectionKey}).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("repo.PGStore.Get: %w", err)
	}
	return id, true, nil
}

func (s *PGStore) Set(ctx context.Context, id string) error {
	const q = `
		INSERT INTO selections (key, value, updated_at)
		VALUES (@key, @value, now())
		ON CONFLICT (key) DO UPDATE
		SET value      = EXCLUDED.value,
		    updated_at = now()`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"key": SelectionKey, "value": id}); err != nil {
		return fmt.Errorf("repo.PGStore.Set: %w", err)
	}
	return nil
}

// Close closes the pool when the store owns one.
func (s *PGStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
