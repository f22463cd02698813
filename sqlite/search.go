package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/penalty"
)

// Compile-time interface verification.
var _ penalty.SearchService = (*SearchService)(nil)

// SearchService implements penalty.SearchService over the SQLite store.
// Date bounds and linkage are resolved in SQL; text matching runs in Go so
// that every match mode ignores case beyond ASCII.
type SearchService struct {
	db *DB
}

// NewSearchService creates a new SearchService.
func NewSearchService(db *DB) *SearchService {
	return &SearchService{db: db}
}

// Search returns matching records ordered by date, newest first, and the
// total number of matches.
func (s *SearchService) Search(ctx context.Context, q penalty.SearchQuery) ([]*penalty.SearchResult, int, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}

	var where strings.Builder
	var args []any
	where.WriteString("1=1")
	if !q.From.IsZero() {
		where.WriteString(" AND r.date >= ?")
		args = append(args, formatDate(q.From))
	}
	if !q.To.IsZero() {
		where.WriteString(" AND r.date <= ?")
		args = append(args, formatDate(q.To))
	}

	// Records without a linked document are never returned.
	records, err := queryRecords(ctx, s.db.db, `
		SELECT r.id, r.date, r.revision_date, r.name, r.penalty_count, r.total_amount_usd, r.created_at
		FROM records r
		WHERE `+where.String()+`
		AND EXISTS (SELECT 1 FROM document_records dr WHERE dr.record_id = r.id)
		ORDER BY r.date DESC, r.id ASC
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		return nil, 0, nil
	}

	docs, err := queryDocuments(ctx, s.db.db, `
		SELECT d.url, d.text, d.content_hash, d.created_at
		FROM documents d
		WHERE d.url IN (
			SELECT dr.document_url FROM document_records dr
			JOIN records r ON r.id = dr.record_id
			WHERE `+where.String()+`
		)
	`, args...)
	if err != nil {
		return nil, 0, err
	}
	if err := loadLinks(ctx, s.db.db, docs); err != nil {
		return nil, 0, err
	}

	byRecord := make(map[string][]*penalty.Document)
	for _, doc := range docs {
		for _, id := range doc.RecordIDs.Slice() {
			byRecord[id] = append(byRecord[id], doc)
		}
	}

	var matched []*penalty.SearchResult
	for _, r := range records {
		linked := byRecord[r.ID]
		if !q.MatchRecord(r.Name, linked) {
			continue
		}
		matched = append(matched, &penalty.SearchResult{Record: r, Documents: linked})
	}

	total := len(matched)
	if q.Offset >= total {
		return nil, total, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, total, nil
}
