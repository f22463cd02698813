package penalty

import (
	"context"
	"time"
)

// Stats summarizes the contents of the store.
type Stats struct {
	Records              int        `json:"records"`
	Documents            int        `json:"documents"`
	DocumentsWithoutText int        `json:"documentsWithoutText"`
	LatestRecordDate     *time.Time `json:"latestRecordDate,omitempty"`
}

// EraseResult reports what EraseAll removed.
type EraseResult struct {
	Records   int `json:"records"`
	Documents int `json:"documents"`
}

// MaintenanceService represents store-wide maintenance operations.
type MaintenanceService interface {
	// RepairIdentifiers renames positional record IDs whose year does not
	// match the record's date, following PlanIDRepair. Renames propagate to
	// document links. With dryRun nothing is written.
	RepairIdentifiers(ctx context.Context, dryRun bool) ([]IDRename, error)

	// EraseAll deletes every record and document.
	EraseAll(ctx context.Context) (*EraseResult, error)

	// Stats returns store totals.
	Stats(ctx context.Context) (*Stats, error)
}
