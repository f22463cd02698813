package mock

import (
	"context"

	"github.com/fwojciec/penalty"
)

var _ penalty.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of penalty.DocumentService.
type DocumentService struct {
	LinkDocumentFn         func(ctx context.Context, url string, text *string, recordID string) error
	AddRecordDocumentFn    func(ctx context.Context, record *penalty.Record, url string, text *string) (bool, error)
	FindDocumentByURLFn    func(ctx context.Context, url string) (*penalty.Document, error)
	FindDocumentsFn        func(ctx context.Context, filter penalty.DocumentFilter) ([]*penalty.Document, error)
	PruneOrphanDocumentsFn func(ctx context.Context) (int, error)
}

func (s *DocumentService) LinkDocument(ctx context.Context, url string, text *string, recordID string) error {
	return s.LinkDocumentFn(ctx, url, text, recordID)
}

func (s *DocumentService) AddRecordDocument(ctx context.Context, record *penalty.Record, url string, text *string) (bool, error) {
	return s.AddRecordDocumentFn(ctx, record, url, text)
}

func (s *DocumentService) FindDocumentByURL(ctx context.Context, url string) (*penalty.Document, error) {
	return s.FindDocumentByURLFn(ctx, url)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter penalty.DocumentFilter) ([]*penalty.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) PruneOrphanDocuments(ctx context.Context) (int, error) {
	return s.PruneOrphanDocumentsFn(ctx)
}
