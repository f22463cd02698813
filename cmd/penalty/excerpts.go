package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fwojciec/penalty"
)

// Run executes the excerpts command.
func (c *ExcerptsCmd) Run(deps *Dependencies) error {
	mode, err := penalty.ParseMatchMode(c.Mode)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}
	if c.Offset < 0 || c.Limit < 0 {
		err := penalty.Errorf(penalty.EINVALID, "--offset and --limit must not be negative")
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	text, source, err := c.text(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", penalty.ErrorMessage(err))
		return err
	}

	excerpts := penalty.FindExcerpts(text, c.Query, mode)
	if len(excerpts) == 0 {
		fmt.Fprintf(deps.Stdout, "No excerpts of %q in %s.\n", c.Query, source)
		return nil
	}

	page := penalty.PageExcerpts(excerpts, c.Offset, c.Limit)
	q := penalty.SearchQuery{Text: c.Query, Mode: mode}
	for _, e := range page {
		printExcerpt(deps.Stdout, "", e, q)
		fmt.Fprintln(deps.Stdout)
	}

	if len(page) == 0 {
		fmt.Fprintf(deps.Stdout, "No excerpts after %d (%d total)\n", c.Offset, len(excerpts))
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Showing %d-%d of %d excerpts\n", c.Offset+1, c.Offset+len(page), len(excerpts))
	return nil
}

// text returns the text to scan and a name for it.
func (c *ExcerptsCmd) text(deps *Dependencies) (string, string, error) {
	switch {
	case c.URL != "" && c.File != "":
		return "", "", penalty.Errorf(penalty.EINVALID, "use either --url or --file, not both")
	case c.URL != "":
		doc, err := deps.Documents.FindDocumentByURL(deps.Ctx, c.URL)
		if err != nil {
			return "", "", err
		}
		if !doc.HasText() {
			return "", "", penalty.Errorf(penalty.ENOTFOUND, "document %s has no text", c.URL)
		}
		return *doc.Text, c.URL, nil
	case c.File != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", c.File, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			return string(data), c.File, nil
		}
		text, err := deps.Extractor.ExtractText(deps.Ctx, data)
		if err != nil {
			return "", "", err
		}
		return text, c.File, nil
	}
	return "", "", penalty.Errorf(penalty.EINVALID, "--url or --file required")
}
