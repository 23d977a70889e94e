package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
)

type failingSweeper struct{}

func (failingSweeper) Name() string                       { return "broken" }
func (failingSweeper) Sweep(context.Context) (int, error) { return 0, errors.New("down") }

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSweeper) Name() string { return "counting" }

func (c *countingSweeper) Sweep(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 0, nil
}

func (c *countingSweeper) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestRunOnceSweepsEveryStore(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := storage.NewMemoryStore(clock)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Hour))

	now = now.Add(2 * time.Minute)

	worker := NewWorker(&Config{CleanupInterval: time.Minute}, logging.NewDiscardLogger(), failingSweeper{}, store)
	assert.Equal(t, 1, worker.RunOnce(ctx))
	assert.Equal(t, 1, store.Len())
}

func TestStartStopsOnCancel(t *testing.T) {
	sweeper := &countingSweeper{}
	worker := NewWorker(&Config{CleanupInterval: 5 * time.Millisecond}, logging.NewDiscardLogger(), sweeper)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeper.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
