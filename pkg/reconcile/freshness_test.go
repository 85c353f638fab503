package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateFreshness(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	threshold := 24 * time.Hour

	lastSync := map[string]time.Time{
		"uhp":       now.Add(-2 * time.Hour),
		"oborne":    now.Add(-30 * time.Hour),
		"unleashed": now.Add(-23 * time.Hour),
	}

	report := EvaluateFreshness(lastSync, now, threshold)

	require.True(t, report.Blocked())
	require.Len(t, report.Stale, 1)
	assert.Equal(t, "oborne", report.Stale[0].Supplier)
	assert.InDelta(t, 30.0, report.Stale[0].AgeHours, 0.001)

	require.Len(t, report.Fresh, 2)
	assert.Equal(t, "uhp", report.Fresh[0].Supplier)
	assert.Equal(t, "unleashed", report.Fresh[1].Supplier)
}

func TestEvaluateFreshness_ExactThresholdIsFresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	report := EvaluateFreshness(map[string]time.Time{
		"kadac": now.Add(-24 * time.Hour),
	}, now, 24*time.Hour)

	assert.False(t, report.Blocked())
	assert.Len(t, report.Fresh, 1)
}

func TestEvaluateFreshness_Empty(t *testing.T) {
	report := EvaluateFreshness(nil, time.Now(), 24*time.Hour)

	assert.False(t, report.Blocked())
	assert.Empty(t, report.Fresh)
	assert.Empty(t, report.Stale)
}
