// Package performance provides performance tracking for request operations.
package performance

import (
	"sync"
	"time"
)

// OperationStats aggregates completed markers for one operation name
type OperationStats struct {
	Count         int64         `json:"count"`
	Failures      int64         `json:"failures"`
	TotalDuration time.Duration `json:"totalDuration"`
	MaxDuration   time.Duration `json:"maxDuration"`
	LastSeen      time.Time     `json:"lastSeen"`
}

// AverageDuration returns the mean duration of completed operations
func (s OperationStats) AverageDuration() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Count)
}

// Tracker hands out markers and keeps per-operation aggregates
type Tracker struct {
	mu      sync.RWMutex
	stats   map[string]*OperationStats
	started time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		stats:   make(map[string]*OperationStats),
		started: time.Now(),
	}
}

// StartOperation creates a new performance marker for an operation
func (t *Tracker) StartOperation(operation string) *Marker {
	return &Marker{
		Operation: operation,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stats[m.Operation]
	if !ok {
		s = &OperationStats{}
		t.stats[m.Operation] = s
	}
	s.Count++
	if !m.Success {
		s.Failures++
	}
	s.TotalDuration += m.Duration
	if m.Duration > s.MaxDuration {
		s.MaxDuration = m.Duration
	}
	s.LastSeen = m.EndTime
}

// Snapshot returns a copy of the per-operation aggregates
func (t *Tracker) Snapshot() map[string]OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]OperationStats, len(t.stats))
	for op, s := range t.stats {
		out[op] = *s
	}
	return out
}

// Uptime returns how long the tracker has been running
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
