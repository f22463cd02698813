// Package excelize writes search results as XLSX workbooks.
package excelize

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/penalty"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	ActionsSheet   = "Actions"
	DocumentsSheet = "Documents"
)

// Ensure Exporter implements penalty.Exporter at compile time.
var _ penalty.Exporter = (*Exporter)(nil)

// Exporter writes one row per enforcement action and one per linked document.
type Exporter struct{}

// NewExporter returns an Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes results as an XLSX workbook to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, results []*penalty.SearchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ActionsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(DocumentsSheet); err != nil {
		return err
	}

	if err := writeActions(f, results); err != nil {
		return err
	}
	if err := writeDocuments(f, results); err != nil {
		return err
	}

	index, _ := f.GetSheetIndex(ActionsSheet)
	f.SetActiveSheet(index)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeActions(f *excelize.File, results []*penalty.SearchResult) error {
	headers := []any{"ID", "Date", "Revision Date", "Name", "Penalties", "Amount (USD)", "Documents"}
	if err := f.SetSheetRow(ActionsSheet, "A1", &headers); err != nil {
		return err
	}

	for i, res := range results {
		r := res.Record
		revision := ""
		if r.RevisionDate != nil {
			revision = r.RevisionDate.Format("2006-01-02")
		}
		urls := make([]string, 0, len(res.Documents))
		for _, d := range res.Documents {
			urls = append(urls, d.URL)
		}

		row := []any{
			r.ID,
			r.Date.Format("2006-01-02"),
			revision,
			r.Name,
			r.PenaltyCount,
			r.TotalAmountUSD,
			strings.Join(urls, "\n"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ActionsSheet, cell, &row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(ActionsSheet, "A", "A", 12)
	_ = f.SetColWidth(ActionsSheet, "B", "C", 14)
	_ = f.SetColWidth(ActionsSheet, "D", "D", 48)
	_ = f.SetColWidth(ActionsSheet, "E", "F", 14)
	_ = f.SetColWidth(ActionsSheet, "G", "G", 60)
	return nil
}

func writeDocuments(f *excelize.File, results []*penalty.SearchResult) error {
	headers := []any{"URL", "Records", "Has Text", "Characters", "Fetched"}
	if err := f.SetSheetRow(DocumentsSheet, "A1", &headers); err != nil {
		return err
	}

	seen := make(map[string]bool)
	row := 2
	for _, res := range results {
		for _, d := range res.Documents {
			if seen[d.URL] {
				continue
			}
			seen[d.URL] = true

			values := []any{
				d.URL,
				d.RecordIDs.String(),
				yesNo(d.HasText()),
				len([]rune(d.TextOrEmpty())),
				d.CreatedAt.Format("2006-01-02"),
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(DocumentsSheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}

	_ = f.SetColWidth(DocumentsSheet, "A", "A", 60)
	_ = f.SetColWidth(DocumentsSheet, "B", "B", 24)
	_ = f.SetColWidth(DocumentsSheet, "C", "E", 12)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
