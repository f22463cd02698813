package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fwojciec/penalty"
)

// legacyTimestamp is SQLite's CURRENT_TIMESTAMP format.
const legacyTimestamp = "2006-01-02 15:04:05"

// ImportResult reports what ImportLegacy copied.
type ImportResult struct {
	Records        int `json:"records"`
	SkippedRecords int `json:"skippedRecords"`
	Documents      int `json:"documents"`
	Links          int `json:"links"`
	DanglingLinks  int `json:"danglingLinks"`
}

type legacyRecord struct {
	record    *penalty.Record
	createdAt string
}

type legacyDocument struct {
	url       string
	text      *string
	links     penalty.IDSet
	createdAt string
}

// ImportLegacy copies records and documents from a database in the flat
// layout, where tables are named penalties and penalties_pdfs and links are
// a comma-joined column. Records already present are kept; links to IDs
// without a record are dropped and counted.
func (db *DB) ImportLegacy(ctx context.Context, path string) (*ImportResult, error) {
	src, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	defer src.Close()
	src.SetMaxOpenConns(1)

	var result ImportResult

	records, skipped, err := readLegacyRecords(ctx, src)
	if err != nil {
		return nil, err
	}
	result.SkippedRecords = skipped

	docs, err := readLegacyDocuments(ctx, src)
	if err != nil {
		return nil, err
	}

	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, lr := range records {
			r := lr.record
			res, err := tx.ExecContext(ctx, `
				INSERT INTO records (`+recordColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING
			`, r.ID, formatDate(r.Date), nullDate(r.RevisionDate), r.Name,
				r.PenaltyCount, r.TotalAmountUSD, lr.createdAt)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n > 0 {
				result.Records++
			}
		}

		for _, d := range docs {
			for _, id := range d.links.Slice() {
				var exists int
				err := tx.QueryRowContext(ctx, "SELECT 1 FROM records WHERE id = ?", id).Scan(&exists)
				if err == sql.ErrNoRows {
					d.links.Remove(id)
					result.DanglingLinks++
					continue
				}
				if err != nil {
					return err
				}
			}
			if d.links.Len() == 0 {
				continue
			}

			created, err := time.Parse(time.RFC3339, d.createdAt)
			if err != nil {
				return err
			}
			for _, id := range d.links.Slice() {
				if err := linkDocument(ctx, tx, d.url, d.text, id, created); err != nil {
					return err
				}
			}
			result.Documents++
			result.Links += d.links.Len()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func readLegacyRecords(ctx context.Context, src *sql.DB) ([]legacyRecord, int, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT id, date, revision_date, name,
			aggregate_penalties_settlements_findings, penalties_settlements_usd_total, created_at
		FROM penalties
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read legacy records: %w", err)
	}
	defer rows.Close()

	var records []legacyRecord
	var skipped int
	for rows.Next() {
		var id string
		var date, revision, createdAt any
		var name sql.NullString
		var count, amount sql.NullFloat64
		if err := rows.Scan(&id, &date, &revision, &name, &count, &amount, &createdAt); err != nil {
			return nil, 0, err
		}

		d, ok := legacyTime(date)
		if !ok || id == "" {
			skipped++
			continue
		}
		r := &penalty.Record{
			ID:             id,
			Date:           penalty.Date(d),
			Name:           name.String,
			PenaltyCount:   int(count.Float64),
			TotalAmountUSD: amount.Float64,
		}
		if rev, ok := legacyTime(revision); ok {
			rev = penalty.Date(rev)
			r.RevisionDate = &rev
		}
		if r.Validate() != nil {
			skipped++
			continue
		}
		records = append(records, legacyRecord{record: r, createdAt: legacyCreatedAt(createdAt)})
	}
	return records, skipped, rows.Err()
}

func readLegacyDocuments(ctx context.Context, src *sql.DB) ([]legacyDocument, error) {
	rows, err := src.QueryContext(ctx, `
		SELECT pdf_url, pdf_text, linked_penalties, created_at FROM penalties_pdfs
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy documents: %w", err)
	}
	defer rows.Close()

	var docs []legacyDocument
	for rows.Next() {
		var url string
		var text, links sql.NullString
		var createdAt any
		if err := rows.Scan(&url, &text, &links, &createdAt); err != nil {
			return nil, err
		}

		d := legacyDocument{
			url:       url,
			links:     penalty.ParseIDSet(links.String),
			createdAt: legacyCreatedAt(createdAt),
		}
		if text.Valid {
			s := text.String
			d.text = &s
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// legacyTime decodes a date or timestamp column. The driver hands back
// time.Time for columns declared DATE or TIMESTAMP and text otherwise.
func legacyTime(v any) (time.Time, bool) {
	var s string
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return time.Time{}, false
	}
	for _, layout := range []string{dateLayout, legacyTimestamp, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// legacyCreatedAt converts a CURRENT_TIMESTAMP value to RFC3339, falling
// back to now.
func legacyCreatedAt(v any) string {
	if t, ok := legacyTime(v); ok {
		return t.UTC().Truncate(time.Second).Format(time.RFC3339)
	}
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
