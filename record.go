package penalty

import (
	"context"
	"time"
)

// Record represents a single enforcement action as listed on a year page.
type Record struct {
	ID             string     `json:"id"`
	Date           time.Time  `json:"date"`
	RevisionDate   *time.Time `json:"revisionDate,omitempty"`
	Name           string     `json:"name"`
	PenaltyCount   int        `json:"penaltyCount"`
	TotalAmountUSD float64    `json:"totalAmountUsd"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "record ID required")
	}
	if r.Date.IsZero() {
		return Errorf(EINVALID, "record date required")
	}
	if r.PenaltyCount < 0 {
		return Errorf(EINVALID, "record penalty count must not be negative")
	}
	if r.TotalAmountUSD < 0 {
		return Errorf(EINVALID, "record amount must not be negative")
	}
	return nil
}

// Year returns the calendar year of the record's date.
func (r *Record) Year() int {
	return r.Date.Year()
}

// RecordService represents a service for managing enforcement records.
type RecordService interface {
	// UpsertRecord inserts the record if its ID is not stored yet.
	// An existing record is never overwritten. Reports whether a row was inserted.
	UpsertRecord(ctx context.Context, record *Record) (inserted bool, err error)

	// FindRecordByID retrieves a record by ID.
	// Returns ENOTFOUND if record does not exist.
	FindRecordByID(ctx context.Context, id string) (*Record, error)

	// FindRecords retrieves records matching the filter, newest first.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)

	// RemoveRecordsForYear deletes every record dated in year, strips the
	// removed IDs from document links and prunes documents left without
	// links. Either all of it commits or none of it does.
	RemoveRecordsForYear(ctx context.Context, year int) (int, error)
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	ID   *string `json:"id"`
	Year *int    `json:"year"`

	// Inclusive date bounds. Zero values leave the bound open.
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Date truncates t to a calendar date in UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
