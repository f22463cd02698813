package penalty

import (
	"context"
	"strings"
	"time"
)

// MatchMode selects how a query is matched against text.
type MatchMode string

// MatchMode constants.
const (
	// MatchExact matches the whole query as one contiguous substring.
	MatchExact MatchMode = "exact"

	// MatchAllWords requires every whitespace-separated query token.
	MatchAllWords MatchMode = "all"

	// MatchAnyWord requires at least one query token.
	MatchAnyWord MatchMode = "any"
)

// ParseMatchMode parses a mode name. An empty name selects MatchExact.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "all", "all_words", "and":
		return MatchAllWords, nil
	case "any", "any_word", "or":
		return MatchAnyWord, nil
	}
	return "", Errorf(EINVALID, "unknown match mode %q (want exact, all or any)", s)
}

// Tokens returns the lowercased whitespace-separated tokens of query.
func Tokens(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Matches reports whether text matches query under mode, ignoring case.
// An empty query matches everything.
func Matches(text, query string, mode MatchMode) bool {
	if query == "" {
		return true
	}
	lower := strings.ToLower(text)

	switch mode {
	case MatchAllWords:
		for _, tok := range Tokens(query) {
			if !strings.Contains(lower, tok) {
				return false
			}
		}
		return true
	case MatchAnyWord:
		for _, tok := range Tokens(query) {
			if strings.Contains(lower, tok) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(lower, strings.ToLower(query))
	}
}

// SearchQuery selects records by text and date.
type SearchQuery struct {
	Text string    `json:"text"`
	Mode MatchMode `json:"mode"`

	// Inclusive date bounds. Zero values leave the bound open.
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Validate returns an error if the query is malformed.
func (q *SearchQuery) Validate() error {
	switch q.Mode {
	case MatchExact, MatchAllWords, MatchAnyWord:
	default:
		return Errorf(EINVALID, "unknown match mode %q", q.Mode)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return Errorf(EINVALID, "start date %s is after end date %s",
			q.From.Format("2006-01-02"), q.To.Format("2006-01-02"))
	}
	if q.Offset < 0 || q.Limit < 0 {
		return Errorf(EINVALID, "offset and limit must not be negative")
	}
	return nil
}

// InRange reports whether t falls inside the query's date bounds.
func (q *SearchQuery) InRange(t time.Time) bool {
	d := Date(t)
	if !q.From.IsZero() && d.Before(Date(q.From)) {
		return false
	}
	if !q.To.IsZero() && d.After(Date(q.To)) {
		return false
	}
	return true
}

// MatchRecord reports whether a record with name and linked docs is
// selected by the query text. A record without documents is never selected.
func (q *SearchQuery) MatchRecord(name string, docs []*Document) bool {
	if len(docs) == 0 {
		return false
	}
	if q.Text == "" || Matches(name, q.Text, q.Mode) {
		return true
	}
	for _, doc := range docs {
		if doc.HasText() && Matches(*doc.Text, q.Text, q.Mode) {
			return true
		}
	}
	return false
}

// SearchResult is a matched record with its linked documents.
type SearchResult struct {
	Record    *Record     `json:"record"`
	Documents []*Document `json:"documents"`
}

// SearchService finds records by query.
type SearchService interface {
	// Search returns matching records ordered by date, newest first,
	// and the total number of matches before Offset and Limit apply.
	Search(ctx context.Context, query SearchQuery) ([]*SearchResult, int, error)
}
