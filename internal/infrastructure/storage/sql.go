package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/persistence/database"
)

const upsertEntry = `
INSERT INTO kv_entries (key, value, expires_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`

// SQLStore keeps entries in a kv_entries table. Expiry is stored as unix
// milliseconds and enforced on read as well as by Sweep.
type SQLStore struct {
	db    *sql.DB
	name  string
	clock Clock
}

// NewSQLStore ensures the schema exists on db. name labels the backend,
// typically the driver (sqlite, turso).
func NewSQLStore(ctx context.Context, db *sql.DB, name string, clock Clock) (*SQLStore, error) {
	if err := database.NewTableCreator().CreateSchema(ctx, db); err != nil {
		return nil, err
	}
	return &SQLStore{db: db, name: name, clock: clock}, nil
}

func (s *SQLStore) Name() string { return s.name }

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) read(ctx context.Context, q queryer, key string) ([]byte, bool, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := q.QueryRowContext(ctx, `SELECT value, expires_at FROM kv_entries WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if s.clock.Now().UnixMilli() >= expiresAt {
		if _, err := q.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, found, err := s.read(ctx, s.db, key)
	if err != nil {
		return nil, fmt.Errorf("sql get error: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.clock.Now().Add(ttl).UnixMilli()
	if _, err := s.db.ExecContext(ctx, upsertEntry, key, value, expiresAt); err != nil {
		return fmt.Errorf("sql set error: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sql delete error: %w", err)
	}
	return nil
}

func (s *SQLStore) Mutate(ctx context.Context, key string, fn MutateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sql begin error: %w", err)
	}
	defer tx.Rollback()

	current, found, err := s.read(ctx, tx, key)
	if err != nil {
		return fmt.Errorf("sql mutate read error: %w", err)
	}

	next, expiresAt, err := fn(current, found)
	if err != nil {
		return err
	}

	if next == nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	} else {
		_, err = tx.ExecContext(ctx, upsertEntry, key, next, expiresAt.UnixMilli())
	}
	if err != nil {
		return fmt.Errorf("sql mutate write error: %w", err)
	}

	return tx.Commit()
}

func (s *SQLStore) Sweep(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE expires_at <= ?`, s.clock.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sql sweep error: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(removed), nil
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }
