package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/penalty"
)

// Compile-time interface verification.
var _ penalty.DocumentService = (*DocumentService)(nil)

// DocumentService implements penalty.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

const documentColumns = "url, text, content_hash, created_at"

// LinkDocument attaches recordID to the document at url, creating the
// document when it is new. Stored text is never replaced.
func (s *DocumentService) LinkDocument(ctx context.Context, url string, text *string, recordID string) error {
	if url == "" {
		return penalty.Errorf(penalty.EINVALID, "document URL required")
	}
	if recordID == "" {
		return penalty.Errorf(penalty.EINVALID, "record ID required")
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return linkDocument(ctx, tx, url, text, recordID, time.Now().UTC())
	})
}

// AddRecordDocument stores record and links it to the document at url in
// one transaction. An existing record is kept as is and still linked.
func (s *DocumentService) AddRecordDocument(ctx context.Context, record *penalty.Record, url string, text *string) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}
	if url == "" {
		return false, penalty.Errorf(penalty.EINVALID, "document URL required")
	}

	var inserted bool
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		var err error
		if inserted, err = insertRecord(ctx, tx, record, now); err != nil {
			return err
		}
		return linkDocument(ctx, tx, url, text, record.ID, now)
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func linkDocument(ctx context.Context, tx *sql.Tx, url string, text *string, recordID string, now time.Time) error {
	var exists int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM records WHERE id = ?", recordID).Scan(&exists)
	if err == sql.ErrNoRows {
		return penalty.Errorf(penalty.ENOTFOUND, "record %q not found", recordID)
	}
	if err != nil {
		return err
	}

	var body sql.NullString
	var hash string
	if text != nil {
		body = sql.NullString{String: *text, Valid: true}
		hash = hashContent(*text)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, url, body, hash, now.Truncate(time.Second).Format(time.RFC3339)); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO document_records (document_url, record_id, position)
		SELECT ?, ?, COALESCE(MAX(position) + 1, 0) FROM document_records WHERE document_url = ?
	`, url, recordID, url)
	return err
}

// FindDocumentByURL retrieves a document by URL.
func (s *DocumentService) FindDocumentByURL(ctx context.Context, url string) (*penalty.Document, error) {
	docs, err := s.FindDocuments(ctx, penalty.DocumentFilter{URL: &url})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, penalty.Errorf(penalty.ENOTFOUND, "document %q not found", url)
	}
	return docs[0], nil
}

// FindDocuments retrieves documents matching the filter, oldest first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter penalty.DocumentFilter) ([]*penalty.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + documentColumns + " FROM documents WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.RecordID != nil {
		query.WriteString(" AND url IN (SELECT document_url FROM document_records WHERE record_id = ?)")
		args = append(args, *filter.RecordID)
	}

	query.WriteString(" ORDER BY created_at ASC, url ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	docs, err := queryDocuments(ctx, s.db.db, query.String(), args...)
	if err != nil {
		return nil, err
	}
	if err := loadLinks(ctx, s.db.db, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// PruneOrphanDocuments removes documents without any linked record.
func (s *DocumentService) PruneOrphanDocuments(ctx context.Context) (int, error) {
	var n int
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		n, err = pruneOrphans(ctx, tx)
		return err
	})
	return n, err
}

func pruneOrphans(ctx context.Context, q querier) (int, error) {
	result, err := q.ExecContext(ctx, `
		DELETE FROM documents
		WHERE NOT EXISTS (SELECT 1 FROM document_records dr WHERE dr.document_url = documents.url)
	`)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

func queryDocuments(ctx context.Context, q querier, query string, args ...any) ([]*penalty.Document, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*penalty.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDocument(s scanner) (*penalty.Document, error) {
	var doc penalty.Document
	var text sql.NullString
	var createdAt string

	if err := s.Scan(&doc.URL, &text, &doc.ContentHash, &createdAt); err != nil {
		return nil, err
	}
	if text.Valid {
		doc.Text = &text.String
	}

	var err error
	if doc.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &doc, nil
}

// loadLinks fills RecordIDs of docs. It runs after the document rows are
// closed because the pool holds a single connection.
func loadLinks(ctx context.Context, q querier, docs []*penalty.Document) error {
	for _, doc := range docs {
		rows, err := q.QueryContext(ctx, `
			SELECT record_id FROM document_records
			WHERE document_url = ?
			ORDER BY position ASC
		`, doc.URL)
		if err != nil {
			return err
		}

		var ids penalty.IDSet
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids.Add(id)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
		doc.RecordIDs = ids
	}
	return nil
}
