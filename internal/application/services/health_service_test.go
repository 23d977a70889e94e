package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/performance"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
)

type downStore struct{}

func (downStore) Name() string { return "redis" }
func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsStore(t *testing.T) {
	tracker := performance.NewTracker()
	tracker.StartOperation("submission:brief").Complete()

	report := NewHealthService(storage.NewMemoryStore(nil), "log", tracker).Check(context.Background())

	assert.True(t, report.Healthy())
	assert.Equal(t, "memory", report.Store)
	assert.Equal(t, "log", report.Notifier)
	assert.Contains(t, report.Operations, "submission:brief")
}

func TestHealthDegradedWhenStoreUnreachable(t *testing.T) {
	report := NewHealthService(downStore{}, "smtp", performance.NewTracker()).Check(context.Background())

	assert.False(t, report.Healthy())
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "connection refused", report.StoreError)
}
