package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/penalty"
)

// Ensure LoggingRowSource implements penalty.RowSource.
var _ penalty.RowSource = (*LoggingRowSource)(nil)

// LoggingRowSource wraps a RowSource with logging.
type LoggingRowSource struct {
	next   penalty.RowSource
	logger *slog.Logger
}

// NewLoggingRowSource creates a new LoggingRowSource.
func NewLoggingRowSource(next penalty.RowSource, logger *slog.Logger) *LoggingRowSource {
	return &LoggingRowSource{next: next, logger: logger}
}

// FetchYearRows delegates to the wrapped source and logs the row count.
func (s *LoggingRowSource) FetchYearRows(ctx context.Context, year int) (rows []penalty.RawRow, err error) {
	defer func(begin time.Time) {
		s.logger.Info("year rows",
			"year", year,
			"count", len(rows),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchYearRows(ctx, year)
}
