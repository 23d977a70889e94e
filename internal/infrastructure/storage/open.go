package storage

import (
	"context"
	"fmt"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/persistence/database"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendTurso  = "turso"
)

// Options selects and configures a backend.
type Options struct {
	Backend          string
	RedisURL         string
	SQLitePath       string
	TursoDatabaseURL string
	TursoAuthToken   string
	Pool             database.PoolConfig
	Clock            Clock
}

// Open builds the configured backend.
func Open(ctx context.Context, opts Options, logger *logging.ChanneledLogger) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		logger.Storage().Info("Using in-memory store")
		return NewMemoryStore(opts.Clock), nil

	case BackendRedis:
		store, err := OpenRedis(ctx, RedisOptions{URL: opts.RedisURL}, opts.Clock)
		if err != nil {
			return nil, err
		}
		logger.Storage().Info("Using Redis store")
		return store, nil

	case BackendSQLite:
		db, err := database.OpenSQLite(ctx, opts.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(ctx, db.DB, BackendSQLite, opts.Clock)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil

	case BackendTurso:
		db, err := database.OpenTurso(ctx, opts.TursoDatabaseURL, opts.TursoAuthToken, opts.Pool, logger)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(ctx, db.DB, BackendTurso, opts.Clock)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
