package penalty

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the month/day/year form used in the date column.
const DateLayout = "1/2/2006"

// revisedMarker separates the primary date from a revision annotation,
// e.g. "01/02/2024 (Revised 03/04/2024)".
const revisedMarker = " (Revised "

// RawRow is one table row as published on a year page, before parsing.
type RawRow struct {
	// Position is the zero-based index of the row among the table's data rows.
	Position int `json:"position"`

	// Year is the page year the row was listed under.
	Year int `json:"year"`

	DateText         string `json:"dateText"`
	Name             string `json:"name"`
	PenaltyCountText string `json:"penaltyCountText"`
	AmountText       string `json:"amountText"`
	DocumentURL      string `json:"documentUrl"`
}

// RowSource produces the live rows of a year page.
type RowSource interface {
	// FetchYearRows returns the rows published for year. A year without a
	// page or without a table yields an empty list, not an error.
	FetchYearRows(ctx context.Context, year int) ([]RawRow, error)
}

// ParsedRow is a RawRow with typed fields.
type ParsedRow struct {
	Position       int
	Year           int
	Date           time.Time
	RevisionDate   *time.Time
	Name           string
	PenaltyCount   int
	TotalAmountUSD float64
	DocumentURL    string
}

// Record builds the record stored for the row under id.
func (p *ParsedRow) Record(id string) *Record {
	return &Record{
		ID:             id,
		Date:           p.Date,
		RevisionDate:   p.RevisionDate,
		Name:           p.Name,
		PenaltyCount:   p.PenaltyCount,
		TotalAmountUSD: p.TotalAmountUSD,
	}
}

// ParseRow parses a raw row. Dates are strict and fail the row with
// EINVALID; numbers are lenient and default to zero. Relative document
// URLs are resolved against baseURL.
func ParseRow(raw RawRow, baseURL string) (*ParsedRow, error) {
	date, revision, err := ParseDates(raw.DateText)
	if err != nil {
		return nil, err
	}

	docURL, err := ResolveURL(baseURL, raw.DocumentURL)
	if err != nil {
		return nil, err
	}

	return &ParsedRow{
		Position:       raw.Position,
		Year:           raw.Year,
		Date:           date,
		RevisionDate:   revision,
		Name:           strings.TrimSpace(raw.Name),
		PenaltyCount:   int(ExtractNumber(raw.PenaltyCountText)),
		TotalAmountUSD: ExtractNumber(raw.AmountText),
		DocumentURL:    docURL,
	}, nil
}

// ParseDates parses a date cell into the primary date and an optional
// revision date. Non-ASCII characters are stripped first.
func ParseDates(text string) (time.Time, *time.Time, error) {
	text = strings.TrimSpace(stripNonASCII(text))

	mainText, revisionText, revised := strings.Cut(text, revisedMarker)
	mainText = strings.TrimSpace(mainText)

	date, err := time.Parse(DateLayout, mainText)
	if err != nil {
		return time.Time{}, nil, Errorf(EINVALID, "invalid date format: %q", text)
	}
	if !revised {
		return date, nil, nil
	}

	revisionText = strings.TrimSpace(strings.ReplaceAll(revisionText, ")", ""))
	revision, err := time.Parse(DateLayout, revisionText)
	if err != nil {
		return time.Time{}, nil, Errorf(EINVALID, "invalid revision date format: %q", text)
	}
	return date, &revision, nil
}

func stripNonASCII(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] < 0x80 {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

var numberRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ExtractNumber returns the first number in text, ignoring thousands
// separators, or 0 when text holds none.
func ExtractNumber(text string) float64 {
	match := numberRe.FindString(text)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// ResolveURL returns href as an absolute URL, resolving root-relative and
// relative references against baseURL.
func ResolveURL(baseURL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", Errorf(EINVALID, "document URL required")
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", Errorf(EINVALID, "invalid document URL %q", href)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return "", Errorf(EINVALID, "invalid base URL %q", baseURL)
	}
	return base.ResolveReference(ref).String(), nil
}
