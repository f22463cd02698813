package mock

import (
	"context"

	"github.com/fwojciec/penalty"
)

var _ penalty.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of penalty.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, query penalty.SearchQuery) ([]*penalty.SearchResult, int, error)
}

func (s *SearchService) Search(ctx context.Context, query penalty.SearchQuery) ([]*penalty.SearchResult, int, error) {
	return s.SearchFn(ctx, query)
}
