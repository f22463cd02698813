package mock

import (
	"context"

	"github.com/fwojciec/penalty"
)

var _ penalty.RecordService = (*RecordService)(nil)

// RecordService is a mock implementation of penalty.RecordService.
type RecordService struct {
	UpsertRecordFn         func(ctx context.Context, record *penalty.Record) (bool, error)
	FindRecordByIDFn       func(ctx context.Context, id string) (*penalty.Record, error)
	FindRecordsFn          func(ctx context.Context, filter penalty.RecordFilter) ([]*penalty.Record, error)
	RemoveRecordsForYearFn func(ctx context.Context, year int) (int, error)
}

func (s *RecordService) UpsertRecord(ctx context.Context, record *penalty.Record) (bool, error) {
	return s.UpsertRecordFn(ctx, record)
}

func (s *RecordService) FindRecordByID(ctx context.Context, id string) (*penalty.Record, error) {
	return s.FindRecordByIDFn(ctx, id)
}

func (s *RecordService) FindRecords(ctx context.Context, filter penalty.RecordFilter) ([]*penalty.Record, error) {
	return s.FindRecordsFn(ctx, filter)
}

func (s *RecordService) RemoveRecordsForYear(ctx context.Context, year int) (int, error) {
	return s.RemoveRecordsForYearFn(ctx, year)
}
