package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type backend struct {
	name    string
	store   Store
	clock   *fakeClock
	advance func(time.Duration)
}

func backends(t *testing.T) []backend {
	t.Helper()
	ctx := context.Background()
	var out []backend

	memClock := newFakeClock()
	out = append(out, backend{
		name:    "memory",
		store:   NewMemoryStore(memClock.Now),
		clock:   memClock,
		advance: memClock.Advance,
	})

	sqlClock := newFakeClock()
	sqlStore, err := Open(ctx, Options{
		Backend:    BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "kv.db"),
		Clock:      sqlClock.Now,
	}, logging.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })
	out = append(out, backend{name: "sqlite", store: sqlStore, clock: sqlClock, advance: sqlClock.Advance})

	mr := miniredis.RunT(t)
	redisClock := newFakeClock()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisStore := NewRedisStore(client, redisClock.Now)
	t.Cleanup(func() { redisStore.Close() })
	out = append(out, backend{
		name:  "redis",
		store: redisStore,
		clock: redisClock,
		advance: func(d time.Duration) {
			redisClock.Advance(d)
			mr.FastForward(d)
		},
	})

	return out
}

func TestStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			_, err := b.store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.store.Set(ctx, "k", []byte("v1"), time.Minute))
			got, err := b.store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)

			require.NoError(t, b.store.Set(ctx, "k", []byte("v2"), time.Minute))
			got, err = b.store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)

			require.NoError(t, b.store.Delete(ctx, "k"))
			_, err = b.store.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, b.store.Ping(ctx))
		})
	}
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.store.Set(ctx, "k", []byte("v"), time.Minute))

			b.advance(59 * time.Second)
			_, err := b.store.Get(ctx, "k")
			require.NoError(t, err)

			b.advance(time.Second)
			_, err = b.store.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreMutate(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			err := b.store.Mutate(ctx, "counter", func(current []byte, found bool) ([]byte, time.Time, error) {
				assert.False(t, found)
				return []byte("1"), b.clock.Now().Add(time.Minute), nil
			})
			require.NoError(t, err)

			err = b.store.Mutate(ctx, "counter", func(current []byte, found bool) ([]byte, time.Time, error) {
				assert.True(t, found)
				assert.Equal(t, []byte("1"), current)
				return []byte("2"), b.clock.Now().Add(time.Minute), nil
			})
			require.NoError(t, err)

			got, err := b.store.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, []byte("2"), got)

			boom := errors.New("boom")
			err = b.store.Mutate(ctx, "counter", func([]byte, bool) ([]byte, time.Time, error) {
				return nil, time.Time{}, boom
			})
			assert.ErrorIs(t, err, boom)
			got, err = b.store.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, []byte("2"), got, "failed mutation leaves the value untouched")

			err = b.store.Mutate(ctx, "counter", func([]byte, bool) ([]byte, time.Time, error) {
				return nil, time.Time{}, nil
			})
			require.NoError(t, err)
			_, err = b.store.Get(ctx, "counter")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreMutateIsAtomic(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			const workers = 10
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := b.store.Mutate(ctx, "counter", func(current []byte, found bool) ([]byte, time.Time, error) {
						n := 0
						if found {
							n, _ = strconv.Atoi(string(current))
						}
						return []byte(strconv.Itoa(n + 1)), b.clock.Now().Add(time.Minute), nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			got, err := b.store.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(workers), string(got))
		})
	}
}

func TestMemoryAndSQLSweep(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		if b.name == "redis" {
			continue
		}
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.store.Set(ctx, "short", []byte("x"), time.Minute))
			require.NoError(t, b.store.Set(ctx, "long", []byte("y"), time.Hour))

			b.advance(2 * time.Minute)
			removed, err := b.store.Sweep(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, removed)

			_, err = b.store.Get(ctx, "long")
			assert.NoError(t, err)
		})
	}
}

func TestKeyHashesRawIdentity(t *testing.T) {
	k1 := Key("csrf", "127.0.0.1-Mozilla/5.0")
	k2 := Key("csrf", "127.0.0.1-Mozilla/5.0")
	k3 := Key("ratelimit", "127.0.0.1-Mozilla/5.0")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, "csrf:")
	assert.NotContains(t, k1, "127.0.0.1")
	assert.Len(t, k1, len("csrf:")+43)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"}, logging.NewDiscardLogger())
	assert.Error(t, err)
}
