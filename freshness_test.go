package penalty_test

import (
	"testing"
	"time"

	"github.com/fwojciec/penalty"
	"github.com/stretchr/testify/assert"
)

func TestSyncMarker_Stale(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

	var missing *penalty.SyncMarker
	assert.True(t, missing.Stale(now, 24*time.Hour))

	recent := &penalty.SyncMarker{LastUpdate: now.Add(-23 * time.Hour)}
	assert.False(t, recent.Stale(now, 24*time.Hour))

	old := &penalty.SyncMarker{LastUpdate: now.Add(-25 * time.Hour)}
	assert.True(t, old.Stale(now, 24*time.Hour))

	assert.True(t, recent.Stale(now, 0))
}
