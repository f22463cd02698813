package sqlite

import (
	"context"
	"database/sql"

	"github.com/fwojciec/penalty"
)

// Compile-time interface verification.
var _ penalty.MaintenanceService = (*MaintenanceService)(nil)

// MaintenanceService implements penalty.MaintenanceService using SQLite.
type MaintenanceService struct {
	db *DB
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(db *DB) *MaintenanceService {
	return &MaintenanceService{db: db}
}

// RepairIdentifiers renames records whose positional ID carries the wrong
// year. The link sets of affected documents are renamed by exact ID and
// rewritten in order. All renames commit together.
func (s *MaintenanceService) RepairIdentifiers(ctx context.Context, dryRun bool) ([]penalty.IDRename, error) {
	records, err := queryRecords(ctx, s.db.db, "SELECT "+recordColumns+" FROM records")
	if err != nil {
		return nil, err
	}

	renames := penalty.PlanIDRepair(records)
	if dryRun || len(renames) == 0 {
		return renames, nil
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		docs, err := documentsLinkedTo(ctx, tx, renames)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if _, err := tx.ExecContext(ctx, "DELETE FROM document_records WHERE document_url = ?", doc.URL); err != nil {
				return err
			}
		}

		for _, r := range renames {
			if _, err := tx.ExecContext(ctx, "UPDATE records SET id = ? WHERE id = ?", r.NewID, r.OldID); err != nil {
				return err
			}
			for _, doc := range docs {
				doc.RecordIDs.Rename(r.OldID, r.NewID)
			}
		}

		for _, doc := range docs {
			if err := writeLinks(ctx, tx, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renames, nil
}

// documentsLinkedTo loads the documents linked to any renamed record,
// with their link sets.
func documentsLinkedTo(ctx context.Context, tx *sql.Tx, renames []penalty.IDRename) ([]*penalty.Document, error) {
	seen := make(map[string]bool)
	var docs []*penalty.Document
	for _, r := range renames {
		rows, err := tx.QueryContext(ctx, "SELECT document_url FROM document_records WHERE record_id = ? ORDER BY document_url", r.OldID)
		if err != nil {
			return nil, err
		}
		var urls []string
		for rows.Next() {
			var url string
			if err := rows.Scan(&url); err != nil {
				rows.Close()
				return nil, err
			}
			urls = append(urls, url)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}

		for _, url := range urls {
			if !seen[url] {
				seen[url] = true
				docs = append(docs, &penalty.Document{URL: url})
			}
		}
	}
	return docs, loadLinks(ctx, tx, docs)
}

// writeLinks stores the link set of doc in order.
func writeLinks(ctx context.Context, tx *sql.Tx, doc *penalty.Document) error {
	for i, id := range doc.RecordIDs.Slice() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_records (document_url, record_id, position) VALUES (?, ?, ?)
		`, doc.URL, id, i); err != nil {
			return err
		}
	}
	return nil
}

// EraseAll deletes every record, document and link.
func (s *MaintenanceService) EraseAll(ctx context.Context) (*penalty.EraseResult, error) {
	var result penalty.EraseResult
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&result.Records); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&result.Documents); err != nil {
			return err
		}
		for _, stmt := range []string{
			"DELETE FROM document_records",
			"DELETE FROM documents",
			"DELETE FROM records",
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats returns store totals.
func (s *MaintenanceService) Stats(ctx context.Context) (*penalty.Stats, error) {
	var stats penalty.Stats
	var latest sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM records),
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM documents WHERE text IS NULL),
			(SELECT MAX(date) FROM records)
	`).Scan(&stats.Records, &stats.Documents, &stats.DocumentsWithoutText, &latest)
	if err != nil {
		return nil, err
	}

	if latest.Valid {
		d, err := parseDate(latest.String, "date")
		if err != nil {
			return nil, err
		}
		stats.LatestRecordDate = &d
	}
	return &stats, nil
}
