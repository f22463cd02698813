package penalty

import (
	"context"
	"io"
)

// Exporter writes search results to a spreadsheet or similar format.
type Exporter interface {
	Export(ctx context.Context, w io.Writer, results []*SearchResult) error
}
