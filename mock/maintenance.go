package mock

import (
	"context"

	"github.com/fwojciec/penalty"
)

var _ penalty.MaintenanceService = (*MaintenanceService)(nil)

// MaintenanceService is a mock implementation of penalty.MaintenanceService.
type MaintenanceService struct {
	RepairIdentifiersFn func(ctx context.Context, dryRun bool) ([]penalty.IDRename, error)
	EraseAllFn          func(ctx context.Context) (*penalty.EraseResult, error)
	StatsFn             func(ctx context.Context) (*penalty.Stats, error)
}

func (s *MaintenanceService) RepairIdentifiers(ctx context.Context, dryRun bool) ([]penalty.IDRename, error) {
	return s.RepairIdentifiersFn(ctx, dryRun)
}

func (s *MaintenanceService) EraseAll(ctx context.Context) (*penalty.EraseResult, error) {
	return s.EraseAllFn(ctx)
}

func (s *MaintenanceService) Stats(ctx context.Context) (*penalty.Stats, error) {
	return s.StatsFn(ctx)
}
