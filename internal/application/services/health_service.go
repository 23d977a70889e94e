package services

import (
	"context"
	"time"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/performance"
)

// Pinger is implemented by the keyed store.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthReport is served by the health endpoint.
type HealthReport struct {
	Status     string                                `json:"status"`
	Store      string                                `json:"store"`
	StoreError string                                `json:"storeError,omitempty"`
	Notifier   string                                `json:"notifier"`
	Uptime     string                                `json:"uptime"`
	Operations map[string]performance.OperationStats `json:"operations,omitempty"`
}

// HealthService reports store reachability and request statistics.
type HealthService struct {
	store       Pinger
	notifier    string
	perfTracker *performance.Tracker
}

func NewHealthService(store Pinger, notifierName string, perfTracker *performance.Tracker) *HealthService {
	return &HealthService{store: store, notifier: notifierName, perfTracker: perfTracker}
}

// Check pings the store with a short deadline.
func (s *HealthService) Check(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:     "ok",
		Store:      s.store.Name(),
		Notifier:   s.notifier,
		Uptime:     s.perfTracker.Uptime().Round(time.Second).String(),
		Operations: s.perfTracker.Snapshot(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.store.Ping(pingCtx); err != nil {
		report.Status = "degraded"
		report.StoreError = err.Error()
	}

	return report
}

// Healthy reports whether the report should be served with 200.
func (r *HealthReport) Healthy() bool { return r.Status == "ok" }
