package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxMutateRetries bounds optimistic transaction retries under contention.
const maxMutateRetries = 16

// RedisOptions configures a Redis backed store.
type RedisOptions struct {
	URL         string
	MaxRetries  int
	PoolSize    int
	PoolTimeout time.Duration
}

// RedisStore keeps entries in Redis and relies on native key expiry.
type RedisStore struct {
	client *redis.Client
	clock  Clock
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, clock Clock) *RedisStore {
	return &RedisStore{client: client, clock: clock}
}

// OpenRedis dials Redis from a URL and verifies the connection.
func OpenRedis(ctx context.Context, opts RedisOptions, clock Clock) (*RedisStore, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL must be provided")
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = 10
	}
	if opts.PoolTimeout == 0 {
		opts.PoolTimeout = 30 * time.Second
	}

	opt, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	opt.MaxRetries = opts.MaxRetries
	opt.PoolSize = opts.PoolSize
	opt.PoolTimeout = opts.PoolTimeout
	opt.ReadTimeout = 5 * time.Second
	opt.WriteTimeout = 5 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStore(client, clock), nil
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Mutate runs fn inside a WATCH/MULTI transaction. fn may be invoked more
// than once when another writer touches the key, so it must not have side
// effects beyond its return values.
func (s *RedisStore) Mutate(ctx context.Context, key string, fn MutateFunc) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			current, found = nil, false
		} else if err != nil {
			return err
		}

		next, expiresAt, err := fn(current, found)
		if err != nil {
			return err
		}

		ttl := expiresAt.Sub(s.clock.Now())
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil || ttl <= 0 {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, next, ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxMutateRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis mutate %s: too much contention", key)
}

// Sweep is a no-op; Redis expires keys itself.
func (s *RedisStore) Sweep(ctx context.Context) (int, error) { return 0, nil }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
