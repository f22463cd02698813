package mock

import (
	"context"
	"io"

	"github.com/fwojciec/penalty"
)

var _ penalty.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of penalty.Exporter.
type Exporter struct {
	ExportFn func(ctx context.Context, w io.Writer, results []*penalty.SearchResult) error
}

func (e *Exporter) Export(ctx context.Context, w io.Writer, results []*penalty.SearchResult) error {
	return e.ExportFn(ctx, w, results)
}
