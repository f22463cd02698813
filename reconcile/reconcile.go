// Package reconcile keeps the local store in step with the published
// enforcement tables, one calendar year at a time.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/penalty"
	"github.com/google/uuid"
)

// Reconciler compares each year's live rows with the stored records and
// replaces the year wholesale when they disagree.
type Reconciler struct {
	Rows     penalty.RowSource
	Records  penalty.RecordService
	Ingester *Ingester
	Logger   *slog.Logger

	// NewRunID generates run identifiers. Defaults to random UUIDs.
	NewRunID func() string
}

// YearResult holds the outcome for one year.
type YearResult struct {
	Year    int           `json:"year"`
	Live    int           `json:"live"`
	Outside int           `json:"outside"`
	Stored  int           `json:"stored"`
	Verdict Verdict       `json:"verdict"`
	Removed int           `json:"removed"`
	Ingest  *IngestResult `json:"ingest,omitempty"`

	// Err is set when the year page could not be fetched. The year is
	// left untouched.
	Err error `json:"-"`
}

// Result holds the outcome of a reconciliation run.
type Result struct {
	RunID string       `json:"runId"`
	Years []YearResult `json:"years"`
}

// Updated returns the number of years that were replaced.
func (r *Result) Updated() int {
	var n int
	for _, y := range r.Years {
		if y.Verdict.Stale && y.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of years whose page could not be fetched.
func (r *Result) Failed() int {
	var n int
	for _, y := range r.Years {
		if y.Err != nil {
			n++
		}
	}
	return n
}

// Inserted returns the number of records stored across all years.
func (r *Result) Inserted() int {
	var n int
	for _, y := range r.Years {
		if y.Ingest != nil {
			n += y.Ingest.Inserted
		}
	}
	return n
}

// ProgressEvent reports progress during a reconciliation run.
type ProgressEvent struct {
	Type    ProgressType
	Year    int
	Verdict Verdict
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressYearStarted ProgressType = iota
	ProgressYearCurrent
	ProgressYearUpdated
	ProgressYearFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting reconciliation progress.
type ProgressFunc func(event ProgressEvent)

// Reconcile processes the years from..to inclusive, in order.
//
// A year whose page cannot be fetched is recorded as failed and the run
// moves on. Store errors abort the run and are returned together with the
// partial result.
func (r *Reconciler) Reconcile(ctx context.Context, from, to int, progress ProgressFunc) (*Result, error) {
	if from > to {
		return nil, penalty.Errorf(penalty.EINVALID, "start year %d is after end year %d", from, to)
	}

	runID := uuid.NewString()
	if r.NewRunID != nil {
		runID = r.NewRunID()
	}
	logger := loggerOrDiscard(r.Logger).With("run", runID)

	notify := func(e ProgressEvent) {
		if progress != nil {
			progress(e)
		}
	}

	result := &Result{RunID: runID}
	for year := from; year <= to; year++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		notify(ProgressEvent{Type: ProgressYearStarted, Year: year})

		yr, err := r.reconcileYear(ctx, logger, year)
		if err != nil {
			return result, err
		}
		result.Years = append(result.Years, *yr)

		switch {
		case yr.Err != nil:
			notify(ProgressEvent{Type: ProgressYearFailed, Year: year, Error: yr.Err})
		case yr.Verdict.Stale:
			notify(ProgressEvent{Type: ProgressYearUpdated, Year: year, Verdict: yr.Verdict})
		default:
			notify(ProgressEvent{Type: ProgressYearCurrent, Year: year})
		}
	}

	notify(ProgressEvent{Type: ProgressFinished})
	return result, nil
}

func (r *Reconciler) reconcileYear(ctx context.Context, logger *slog.Logger, year int) (*YearResult, error) {
	begin := time.Now()
	yr := &YearResult{Year: year}

	live, err := r.Rows.FetchYearRows(ctx, year)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error("fetch year", "year", year, "err", err)
		yr.Err = err
		return yr, nil
	}
	live, yr.Outside = rowsInYear(logger, year, live)
	yr.Live = len(live)

	y := year
	stored, err := r.Records.FindRecords(ctx, penalty.RecordFilter{Year: &y})
	if err != nil {
		return nil, fmt.Errorf("load records for %d: %w", year, err)
	}
	yr.Stored = len(stored)

	yr.Verdict = Compare(live, stored)
	if !yr.Verdict.Stale {
		logger.Info("year current", "year", year, "records", yr.Stored)
		return yr, nil
	}
	logger.Info("year stale", "year", year, "reason", yr.Verdict.Reason, "detail", yr.Verdict.Detail)

	yr.Removed, err = r.Records.RemoveRecordsForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("remove records for %d: %w", year, err)
	}

	yr.Ingest, err = r.Ingester.ingest(ctx, logger, live)
	if err != nil {
		return nil, fmt.Errorf("ingest %d: %w", year, err)
	}

	logger.Info("year updated",
		"year", year,
		"removed", yr.Removed,
		"inserted", yr.Ingest.Inserted,
		"invalid", yr.Ingest.Invalid,
		"without_text", yr.Ingest.WithoutText,
		"duration", time.Since(begin),
	)
	return yr, nil
}

// rowsInYear drops rows dated in another year. Such rows show up when a
// page still lists the previous year's table; they belong to the year of
// their date and are stored from that year's page. Rows with an unparseable
// date are kept.
func rowsInYear(logger *slog.Logger, year int, rows []penalty.RawRow) ([]penalty.RawRow, int) {
	kept := make([]penalty.RawRow, 0, len(rows))
	for _, row := range rows {
		date, _, err := penalty.ParseDates(row.DateText)
		if err == nil && date.Year() != year {
			logger.Debug("row outside year", "year", year, "position", row.Position, "date", date.Format(time.DateOnly), "name", row.Name)
			continue
		}
		kept = append(kept, row)
	}
	if n := len(rows) - len(kept); n > 0 {
		logger.Info("skipped rows dated in another year", "year", year, "rows", n)
	}
	return kept, len(rows) - len(kept)
}
