package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/penalty"
)

// Compile-time interface verification.
var _ penalty.RecordService = (*RecordService)(nil)

// RecordService implements penalty.RecordService using SQLite.
type RecordService struct {
	db *DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *DB) *RecordService {
	return &RecordService{db: db}
}

const recordColumns = "id, date, revision_date, name, penalty_count, total_amount_usd, created_at"

// UpsertRecord inserts the record unless its ID is already stored.
func (s *RecordService) UpsertRecord(ctx context.Context, record *penalty.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}
	return insertRecord(ctx, s.db, record, time.Now().UTC())
}

func insertRecord(ctx context.Context, q querier, record *penalty.Record, now time.Time) (bool, error) {
	createdAt := now.Truncate(time.Second)

	result, err := q.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, record.ID, formatDate(record.Date), nullDate(record.RevisionDate), record.Name,
		record.PenaltyCount, record.TotalAmountUSD, createdAt.Format(time.RFC3339))
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	record.CreatedAt = createdAt
	return true, nil
}

// FindRecordByID retrieves a record by ID.
func (s *RecordService) FindRecordByID(ctx context.Context, id string) (*penalty.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE id = ?", id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, penalty.Errorf(penalty.ENOTFOUND, "record %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FindRecords retrieves records matching the filter, newest first.
func (s *RecordService) FindRecords(ctx context.Context, filter penalty.RecordFilter) ([]*penalty.Record, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recordColumns + " FROM records WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Year != nil {
		from, to := yearBounds(*filter.Year)
		query.WriteString(" AND date >= ? AND date < ?")
		args = append(args, from, to)
	}
	if !filter.From.IsZero() {
		query.WriteString(" AND date >= ?")
		args = append(args, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		query.WriteString(" AND date <= ?")
		args = append(args, formatDate(filter.To))
	}

	query.WriteString(" ORDER BY date DESC, id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	return queryRecords(ctx, s.db.db, query.String(), args...)
}

// RemoveRecordsForYear deletes every record dated in year together with
// its links, then prunes documents left without links. Runs in one
// transaction.
func (s *RecordService) RemoveRecordsForYear(ctx context.Context, year int) (int, error) {
	from, to := yearBounds(year)

	var removed int
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM document_records
			WHERE record_id IN (SELECT id FROM records WHERE date >= ? AND date < ?)
		`, from, to); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM records WHERE date >= ? AND date < ?", from, to)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		removed = int(n)

		_, err = pruneOrphans(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// querier is implemented by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func queryRecords(ctx context.Context, q querier, query string, args ...any) ([]*penalty.Record, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*penalty.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(s scanner) (*penalty.Record, error) {
	var record penalty.Record
	var date, createdAt string
	var revision sql.NullString

	if err := s.Scan(&record.ID, &date, &revision, &record.Name,
		&record.PenaltyCount, &record.TotalAmountUSD, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if record.Date, err = parseDate(date, "date"); err != nil {
		return nil, err
	}
	if revision.Valid {
		rev, err := parseDate(revision.String, "revision_date")
		if err != nil {
			return nil, err
		}
		record.RevisionDate = &rev
	}
	if record.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &record, nil
}
