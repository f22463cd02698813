package slog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/penalty"
)

// Ensure LoggingTextExtractor implements penalty.TextExtractor.
var _ penalty.TextExtractor = (*LoggingTextExtractor)(nil)

// LoggingTextExtractor wraps a TextExtractor with logging.
type LoggingTextExtractor struct {
	next   penalty.TextExtractor
	logger *slog.Logger
}

// NewLoggingTextExtractor creates a new LoggingTextExtractor.
func NewLoggingTextExtractor(next penalty.TextExtractor, logger *slog.Logger) *LoggingTextExtractor {
	return &LoggingTextExtractor{next: next, logger: logger}
}

// ExtractText delegates to the wrapped extractor and logs the page count.
func (e *LoggingTextExtractor) ExtractText(ctx context.Context, pdf []byte) (text string, err error) {
	defer func(begin time.Time) {
		pages := 0
		if err == nil {
			pages = strings.Count(text, penalty.PageBreak) + 1
		}
		e.logger.Debug("extract text",
			"bytes", len(pdf),
			"pages", pages,
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractText(ctx, pdf)
}
