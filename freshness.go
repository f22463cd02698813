package penalty

import (
	"context"
	"time"
)

// SyncMarker records the last completed synchronization.
type SyncMarker struct {
	LastUpdate time.Time `json:"last_update"`
	RunID      string    `json:"run_id,omitempty"`
	FromYear   int       `json:"from_year,omitempty"`
	ToYear     int       `json:"to_year,omitempty"`
}

// Stale reports whether the marker is older than maxAge at now.
// A nil marker is always stale.
func (m *SyncMarker) Stale(now time.Time, maxAge time.Duration) bool {
	if m == nil || m.LastUpdate.IsZero() {
		return true
	}
	return now.Sub(m.LastUpdate) > maxAge
}

// FreshnessStore persists the sync marker outside the record store.
type FreshnessStore interface {
	// LastSync returns the stored marker, or nil if none was saved.
	LastSync(ctx context.Context) (*SyncMarker, error)

	// MarkSynced replaces the stored marker.
	MarkSynced(ctx context.Context, marker SyncMarker) error
}
