package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/penalty"
	penaltyfs "github.com/fwojciec/penalty/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	q, err := c.query(c.Query)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	results, total, err := deps.Search.Search(deps.Ctx, q)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}
	if total == 0 {
		err := penalty.Errorf(penalty.ENOTFOUND, "no matching actions to export")
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	if err := c.writeWorkbook(deps, results); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Exported %d actions to %s\n", len(results), c.Output)

	if c.TextDir == "" {
		return nil
	}

	writer := penaltyfs.NewWriter(c.TextDir)
	seen := make(map[string]bool)
	var written int
	for _, r := range results {
		for _, doc := range r.Documents {
			if seen[doc.URL] {
				continue
			}
			seen[doc.URL] = true
			if _, err := writer.WriteDocument(doc); err != nil {
				fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", doc.URL, err)
				continue
			}
			written++
		}
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d documents to %s\n", written, c.TextDir)
	return nil
}

func (c *ExportCmd) writeWorkbook(deps *Dependencies, results []*penalty.SearchResult) error {
	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.Output, err)
	}

	if err := deps.Exporter.Export(deps.Ctx, f, results); err != nil {
		f.Close()
		os.Remove(c.Output)
		return err
	}
	return f.Close()
}
