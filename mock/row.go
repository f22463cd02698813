package mock

import (
	"context"

	"github.com/fwojciec/penalty"
)

var _ penalty.RowSource = (*RowSource)(nil)

// RowSource is a mock implementation of penalty.RowSource.
type RowSource struct {
	FetchYearRowsFn func(ctx context.Context, year int) ([]penalty.RawRow, error)
}

func (s *RowSource) FetchYearRows(ctx context.Context, year int) ([]penalty.RawRow, error) {
	return s.FetchYearRowsFn(ctx, year)
}
