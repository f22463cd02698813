package penalty

import (
	"context"
	"time"
)

// Document represents a source PDF and the records it backs.
type Document struct {
	URL string `json:"url"`

	// Text is nil when extraction failed, which is distinct from an empty
	// document.
	Text        *string   `json:"text"`
	ContentHash string    `json:"contentHash"`
	RecordIDs   IDSet     `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasText reports whether extraction produced text for the document.
func (d *Document) HasText() bool {
	return d.Text != nil
}

// TextOrEmpty returns the document text, or "" when extraction failed.
func (d *Document) TextOrEmpty() string {
	if d.Text == nil {
		return ""
	}
	return *d.Text
}

// DocumentService represents a service for managing documents and their
// links to records.
type DocumentService interface {
	// LinkDocument attaches recordID to the document at url, creating the
	// document with text when it is not stored yet. Text of an existing
	// document is never overwritten and linking is idempotent.
	// Returns ENOTFOUND if the record does not exist.
	LinkDocument(ctx context.Context, url string, text *string, recordID string) error

	// AddRecordDocument inserts record unless its ID is stored and links it
	// to the document at url. Both writes commit together or not at all.
	AddRecordDocument(ctx context.Context, record *Record, url string, text *string) (inserted bool, err error)

	// FindDocumentByURL retrieves a document by URL.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByURL(ctx context.Context, url string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// PruneOrphanDocuments removes documents without any linked record and
	// returns how many were removed.
	PruneOrphanDocuments(ctx context.Context) (int, error)
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	URL      *string `json:"url"`
	RecordID *string `json:"recordId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
