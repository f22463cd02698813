package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/penalty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Highlight markers around matches in printed excerpts.
const (
	markBefore = "**"
	markAfter  = "**"
)

var printer = message.NewPrinter(language.English)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	q, err := c.query(c.Query)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}
	if c.Page < 1 || c.PerPage < 1 || c.Excerpts < 0 {
		err := penalty.Errorf(penalty.EINVALID, "--page and --per-page must be positive, --excerpts must not be negative")
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}
	q.Offset = (c.Page - 1) * c.PerPage
	q.Limit = c.PerPage

	results, total, err := deps.Search.Search(deps.Ctx, q)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	if total == 0 {
		fmt.Fprintln(deps.Stdout, "No matching actions.")
		return nil
	}

	for _, r := range results {
		printResult(deps.Stdout, r, q, c.Excerpts)
	}

	pages := (total + c.PerPage - 1) / c.PerPage
	fmt.Fprintf(deps.Stdout, "Page %d of %d (%d matching actions)\n", c.Page, pages, total)
	return nil
}

// printResult writes one record, its documents and up to maxExcerpts
// excerpts per document.
func printResult(w io.Writer, r *penalty.SearchResult, q penalty.SearchQuery, maxExcerpts int) {
	rec := r.Record
	fmt.Fprintf(w, "%s  %s\n", rec.Date.Format(time.DateOnly), penalty.Highlight(rec.Name, q.Text, q.Mode, markBefore, markAfter))
	fmt.Fprintf(w, "  %s  %s\n", formatCount(rec.PenaltyCount), formatUSD(rec.TotalAmountUSD))
	if rec.RevisionDate != nil {
		fmt.Fprintf(w, "  revised %s\n", rec.RevisionDate.Format(time.DateOnly))
	}

	for _, doc := range r.Documents {
		fmt.Fprintf(w, "  %s\n", doc.URL)
		if !doc.HasText() {
			fmt.Fprintln(w, "    (no text available)")
			continue
		}
		if maxExcerpts == 0 || q.Text == "" {
			continue
		}

		excerpts := penalty.FindExcerpts(*doc.Text, q.Text, q.Mode)
		for _, e := range penalty.PageExcerpts(excerpts, 0, maxExcerpts) {
			printExcerpt(w, "    ", e, q)
		}
		if more := len(excerpts) - maxExcerpts; more > 0 {
			fmt.Fprintf(w, "    (%d more, see: penalty excerpts %q --url %s)\n", more, q.Text, doc.URL)
		}
	}
	fmt.Fprintln(w)
}

func printExcerpt(w io.Writer, indent string, e penalty.Excerpt, q penalty.SearchQuery) {
	fmt.Fprintf(w, "%s[p.%d] %s\n", indent, e.Page, penalty.Highlight(e.Text, q.Text, q.Mode, markBefore, markAfter))
}

func formatCount(n int) string {
	if n == 1 {
		return "1 penalty"
	}
	return printer.Sprintf("%d penalties", n)
}

// formatUSD formats an amount with thousands separators, e.g. "$1,234.50".
func formatUSD(v float64) string {
	return printer.Sprintf("$%.2f", v)
}
