package mock

import (
	"context"

	"github.com/fwojciec/penalty"
)

var _ penalty.FreshnessStore = (*FreshnessStore)(nil)

// FreshnessStore is a mock implementation of penalty.FreshnessStore.
type FreshnessStore struct {
	LastSyncFn   func(ctx context.Context) (*penalty.SyncMarker, error)
	MarkSyncedFn func(ctx context.Context, marker penalty.SyncMarker) error
}

func (s *FreshnessStore) LastSync(ctx context.Context) (*penalty.SyncMarker, error) {
	return s.LastSyncFn(ctx)
}

func (s *FreshnessStore) MarkSynced(ctx context.Context, marker penalty.SyncMarker) error {
	return s.MarkSyncedFn(ctx, marker)
}
