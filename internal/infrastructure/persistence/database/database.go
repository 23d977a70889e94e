// Package database provides the core functionality for creating and managing
// database connections in a clean, isolated manner.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
)

// Driver names registered by the imported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverLibSQL = "libsql"
)

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
}

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
	Driver string
}

// NewConnection establishes a new database connection for the specified driver.
func NewConnection(ctx context.Context, driverName, dataSourceName string, pool PoolConfig) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, Driver: driverName}, nil
}

// OpenSQLite opens a local SQLite file, creating its directory when needed.
// Transactions take the write lock up front so read-modify-write sequences
// never interleave, and a single connection keeps the file lock local.
func OpenSQLite(ctx context.Context, path string, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := NewConnection(ctx, DriverSQLite, dsn, PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		logger.Storage().Error("Failed to open SQLite database", "error", err.Error(), "path", path)
		return nil, fmt.Errorf("sqlite connection failed: %w", err)
	}

	logger.Storage().Info("SQLite connection established", "path", path, "duration", time.Since(start))
	return db, nil
}

// OpenTurso opens a libsql connection to a Turso database.
func OpenTurso(ctx context.Context, databaseURL, authToken string, pool PoolConfig, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()

	if databaseURL == "" || authToken == "" {
		return nil, fmt.Errorf("turso database url and auth token are required")
	}

	connStr := fmt.Sprintf("%s?authToken=%s", databaseURL, authToken)
	db, err := NewConnection(ctx, DriverLibSQL, connStr, pool)
	if err != nil {
		logger.Storage().Error("Failed to open Turso connection", "error", err.Error(), "databaseURL", databaseURL)
		return nil, fmt.Errorf("turso connection failed: %w", err)
	}

	logger.Storage().Info("Turso connection established", "databaseURL", databaseURL, "duration", time.Since(start))
	return db, nil
}
