// Package goquery parses the published enforcement tables using goquery.
package goquery

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/penalty"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultPageURL is the enforcement information page for the current year.
const DefaultPageURL = "https://ofac.treasury.gov/civil-penalties-and-enforcement-information"

// tableSelector matches the enforcement table on a year page.
const tableSelector = "table.usa-table"

// Ensure RowSource implements penalty.RowSource at compile time.
var _ penalty.RowSource = (*RowSource)(nil)

// RowSource fetches year pages and parses their enforcement tables.
type RowSource struct {
	fetcher penalty.Fetcher
	pageURL string

	// Now returns the current time. It decides which year is served from
	// the undecorated page URL.
	Now func() time.Time
}

// NewRowSource returns a RowSource reading pages below pageURL.
func NewRowSource(fetcher penalty.Fetcher, pageURL string) *RowSource {
	if pageURL == "" {
		pageURL = DefaultPageURL
	}
	return &RowSource{
		fetcher: fetcher,
		pageURL: strings.TrimRight(pageURL, "/"),
		Now:     time.Now,
	}
}

// YearURL returns the page listing the actions of year. The current year
// lives at the page URL itself, earlier years below it.
func (s *RowSource) YearURL(year int) string {
	if year == s.Now().Year() {
		return s.pageURL
	}
	return s.pageURL + "/" + strconv.Itoa(year) + "-enforcement-information"
}

// FetchYearRows fetches and parses the page for year. A missing page
// yields no rows.
func (s *RowSource) FetchYearRows(ctx context.Context, year int) ([]penalty.RawRow, error) {
	html, err := s.fetcher.Fetch(ctx, s.YearURL(year))
	if penalty.ErrorCode(err) == penalty.ENOTFOUND {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return ParseRows(html, year)
}

// ParseRows extracts the rows of the enforcement table in html.
//
// The first row holds the headers and the last the yearly totals; both are
// skipped. Of the rest only rows with exactly four cells whose first cell
// links to a document are kept. Position counts every row between header
// and totals, kept or not, so it stays aligned with the page.
func ParseRows(html string, year int) ([]penalty.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, penalty.Errorf(penalty.EINVALID, "failed to parse HTML: %v", err)
	}

	table := doc.Find(tableSelector).First()
	if table.Length() == 0 {
		return nil, nil
	}

	trs := table.Find("tr")
	if trs.Length() < 2 {
		return nil, nil
	}
	body := trs.Slice(1, trs.Length()-1)

	var rows []penalty.RawRow
	body.Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		if cells.Length() != 4 {
			return
		}
		link := cells.Eq(0).Find("a").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")

		rows = append(rows, penalty.RawRow{
			Position:         i,
			Year:             year,
			DateText:         cellText(link),
			Name:             cellText(cells.Eq(1)),
			PenaltyCountText: cellText(cells.Eq(2)),
			AmountText:       cellText(cells.Eq(3)),
			DocumentURL:      strings.TrimSpace(href),
		})
	})
	return rows, nil
}

// invisible removes format characters such as zero-width spaces and joiners
// that the site's editor leaves inside cells.
var invisible = runes.Remove(runes.In(unicode.Cf))

func cellText(sel *goquery.Selection) string {
	text, _, err := transform.String(invisible, sel.Text())
	if err != nil {
		text = sel.Text()
	}
	return strings.TrimSpace(text)
}
