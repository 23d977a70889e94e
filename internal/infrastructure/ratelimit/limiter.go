// Package ratelimit implements a fixed-window request counter per client.
package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
)

const namespace = "ratelimit"

// Config holds the ceiling and window.
type Config struct {
	Max    int
	Window time.Duration
	Clock  storage.Clock
}

type record struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"resetAt"`
}

// Limiter admits at most Max requests per client key per window. The window
// is anchored at the first request and does not slide.
type Limiter struct {
	store  storage.Store
	max    int
	window time.Duration
	clock  storage.Clock
}

// NewLimiter creates a Limiter using store for counters.
func NewLimiter(store storage.Store, cfg Config) *Limiter {
	return &Limiter{
		store:  store,
		max:    cfg.Max,
		window: cfg.Window,
		clock:  cfg.Clock,
	}
}

// Window is the retry hint surfaced on rejection.
func (l *Limiter) Window() time.Duration { return l.window }

// Allow records a request for key and reports whether it is admitted. A
// rejected request does not change the stored counter.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	var allowed bool

	err := l.store.Mutate(ctx, storage.Key(namespace, key), func(current []byte, found bool) ([]byte, time.Time, error) {
		now := l.clock.Now()

		var rec record
		if found {
			if err := json.Unmarshal(current, &rec); err != nil {
				found = false
			}
		}

		resetAt := time.UnixMilli(rec.ResetAt)
		switch {
		case !found || now.After(resetAt):
			rec = record{Count: 1, ResetAt: now.Add(l.window).UnixMilli()}
			allowed = true
		case rec.Count < l.max:
			rec.Count++
			allowed = true
		default:
			allowed = false
			return current, retainUntil(resetAt), nil
		}

		next, err := json.Marshal(rec)
		if err != nil {
			return nil, time.Time{}, err
		}
		return next, retainUntil(time.UnixMilli(rec.ResetAt)), nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return allowed, nil
}

// retainUntil keeps a record readable at the reset instant itself, since the
// window only rolls over once now is strictly after resetAt.
func retainUntil(resetAt time.Time) time.Time {
	return resetAt.Add(time.Millisecond)
}
