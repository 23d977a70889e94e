// Package cleanup provides the background worker that purges expired CSRF
// and rate limit records from the keyed stores.
package cleanup

import (
	"context"
	"time"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
)

// Sweeper is implemented by every storage.Store.
type Sweeper interface {
	Name() string
	Sweep(ctx context.Context) (int, error)
}

// Worker handles background store cleanup operations
type Worker struct {
	stores []Sweeper
	config *Config
	logger *logging.ChanneledLogger
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(config *Config, logger *logging.ChanneledLogger, stores ...Sweeper) *Worker {
	return &Worker{
		stores: stores,
		config: config,
		logger: logger,
	}
}

// Start begins the cleanup worker routine, using the configured interval.
// It returns when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Storage().Info("Store cleanup worker started",
		"interval", w.config.CleanupInterval, "verbose", w.config.VerboseReporting)

	for {
		select {
		case <-ctx.Done():
			w.logger.Storage().Info("Store cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce sweeps every store and returns the number of removed entries.
func (w *Worker) RunOnce(ctx context.Context) int {
	start := time.Now()

	var totalCleaned int
	for _, store := range w.stores {
		select {
		case <-ctx.Done():
			return totalCleaned
		default:
		}

		removed, err := store.Sweep(ctx)
		if err != nil {
			w.logger.LogError(logging.ChannelStorage, "sweep", err, map[string]any{"backend": store.Name()})
			continue
		}
		totalCleaned += removed
	}

	duration := time.Since(start)
	if totalCleaned > 0 {
		w.logger.Storage().Info("Store cleanup finished", "removed", totalCleaned, "stores", len(w.stores), "duration", duration)
	} else if w.config.VerboseReporting {
		w.logger.Storage().Debug("Store cleanup completed - no expired items found", "duration", duration)
	}

	return totalCleaned
}

var _ Sweeper = storage.Store(nil)
