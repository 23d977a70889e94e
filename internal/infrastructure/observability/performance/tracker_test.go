package performance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAggregatesCompletedMarkers(t *testing.T) {
	tracker := NewTracker()

	ok := tracker.StartOperation("csrf:issue")
	ok.Complete()

	failed := tracker.StartOperation("csrf:issue")
	failed.SetError(errors.New("boom"))
	failed.Complete()
	failed.Complete() // second call is ignored

	stats := tracker.Snapshot()
	require.Contains(t, stats, "csrf:issue")
	assert.Equal(t, int64(2), stats["csrf:issue"].Count)
	assert.Equal(t, int64(1), stats["csrf:issue"].Failures)
	assert.GreaterOrEqual(t, stats["csrf:issue"].MaxDuration, stats["csrf:issue"].AverageDuration())
}

func TestMarkerMetadata(t *testing.T) {
	m := NewTracker().StartOperation("submission:brief")
	m.AddMetadata("products", 3)
	assert.Equal(t, 3, m.Metadata["products"])
	assert.True(t, m.Success)
}
