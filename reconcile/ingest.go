package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/fwojciec/penalty"
)

// Ingester turns the live rows of a year page into stored records and
// linked documents.
type Ingester struct {
	Records    penalty.RecordService
	Documents  penalty.DocumentService
	Downloader penalty.Downloader
	Extractor  penalty.TextExtractor

	// Limiter throttles document downloads per host. Optional.
	Limiter penalty.DomainLimiter

	// BaseURL resolves relative document links.
	BaseURL string

	IDScheme penalty.IDScheme
	Logger   *slog.Logger
}

// IngestResult counts what happened to the rows of one pass.
type IngestResult struct {
	Inserted    int `json:"inserted"`
	Existing    int `json:"existing"`
	Invalid     int `json:"invalid"`
	Downloaded  int `json:"downloaded"`
	WithoutText int `json:"withoutText"`
}

// IngestRows stores every row whose candidate ID is not taken yet.
//
// Rows with an unparseable date are logged and skipped. Download and
// extraction failures store the document without text. Store errors abort
// the pass and are returned.
func (in *Ingester) IngestRows(ctx context.Context, rows []penalty.RawRow) (*IngestResult, error) {
	return in.ingest(ctx, loggerOrDiscard(in.Logger), rows)
}

func (in *Ingester) ingest(ctx context.Context, logger *slog.Logger, rows []penalty.RawRow) (*IngestResult, error) {
	assigner := penalty.NewIDAssigner(in.IDScheme)

	var result IngestResult
	for _, raw := range rows {
		if err := ctx.Err(); err != nil {
			return &result, err
		}

		row, err := penalty.ParseRow(raw, in.BaseURL)
		if err != nil {
			result.Invalid++
			logger.Warn("skip row", "year", raw.Year, "position", raw.Position, "name", raw.Name, "err", err)
			continue
		}

		id := assigner.Assign(row)
		if _, err := in.Records.FindRecordByID(ctx, id); err == nil {
			result.Existing++
			continue
		} else if penalty.ErrorCode(err) != penalty.ENOTFOUND {
			return &result, fmt.Errorf("lookup record %s: %w", id, err)
		}

		text, fetched, err := in.documentText(ctx, logger, row.DocumentURL)
		if err != nil {
			return &result, err
		}
		if fetched {
			result.Downloaded++
			if text == nil {
				result.WithoutText++
			}
		}

		if _, err := in.Documents.AddRecordDocument(ctx, row.Record(id), row.DocumentURL, text); err != nil {
			return &result, fmt.Errorf("store record %s: %w", id, err)
		}
		result.Inserted++
	}
	return &result, nil
}

// documentText downloads and extracts the document at docURL unless it is
// already stored. Failures yield nil text; only store and context errors
// are returned.
func (in *Ingester) documentText(ctx context.Context, logger *slog.Logger, docURL string) (text *string, fetched bool, err error) {
	if _, err := in.Documents.FindDocumentByURL(ctx, docURL); err == nil {
		return nil, false, nil
	} else if penalty.ErrorCode(err) != penalty.ENOTFOUND {
		return nil, false, fmt.Errorf("lookup document %s: %w", docURL, err)
	}

	if in.Limiter != nil {
		host := docURL
		if u, err := url.Parse(docURL); err == nil {
			host = u.Host
		}
		if err := in.Limiter.Wait(ctx, host); err != nil {
			return nil, false, err
		}
	}

	pdf, err := in.Downloader.Download(ctx, docURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		logger.Warn("download failed", "url", docURL, "err", err)
		return nil, true, nil
	}

	extracted, err := in.Extractor.ExtractText(ctx, pdf)
	if err != nil {
		logger.Warn("extraction failed", "url", docURL, "err", err)
		return nil, true, nil
	}
	return &extracted, true, nil
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
