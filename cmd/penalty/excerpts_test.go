package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/penalty"
	main "github.com/fwojciec/penalty/cmd/penalty"
	"github.com/fwojciec/penalty/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const excerptText = "Tax evasion was alleged.\fThe taxation authority and the tax office agreed."

func newExcerptDeps(doc *penalty.Document) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Documents: &mock.DocumentService{
			FindDocumentByURLFn: func(_ context.Context, url string) (*penalty.Document, error) {
				if doc == nil || url != doc.URL {
					return nil, penalty.Errorf(penalty.ENOTFOUND, "document not found")
				}
				return doc, nil
			},
		},
	}, stdout, stderr
}

func TestExcerptsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("shows excerpts of a stored document", func(t *testing.T) {
		t.Parallel()

		doc := &penalty.Document{URL: "https://example.com/a.pdf", Text: ptr(excerptText)}
		deps, stdout, stderr := newExcerptDeps(doc)

		cmd := &main.ExcerptsCmd{Query: "tax taxation", URL: doc.URL, Mode: "any", Limit: 10}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Empty(t, stderr.String())
		out := stdout.String()
		assert.Contains(t, out, "[p.1] **Tax** evasion was alleged.")
		assert.Contains(t, out, "[p.2] The **taxation** authority and the **tax** office agreed.")
		assert.Contains(t, out, "Showing 1-2 of 2 excerpts")
	})

	t.Run("pages through excerpts", func(t *testing.T) {
		t.Parallel()

		doc := &penalty.Document{URL: "https://example.com/a.pdf", Text: ptr(excerptText)}
		deps, stdout, _ := newExcerptDeps(doc)

		cmd := &main.ExcerptsCmd{Query: "tax", URL: doc.URL, Mode: "exact", Offset: 1, Limit: 1}
		require.NoError(t, cmd.Run(deps))

		out := stdout.String()
		assert.NotContains(t, out, "[p.1]")
		assert.Equal(t, 1, strings.Count(out, "[p.2]"))
		assert.Contains(t, out, "Showing 2-2 of 2 excerpts")
	})

	t.Run("reports no excerpts", func(t *testing.T) {
		t.Parallel()

		doc := &penalty.Document{URL: "https://example.com/a.pdf", Text: ptr(excerptText)}
		deps, stdout, _ := newExcerptDeps(doc)

		cmd := &main.ExcerptsCmd{Query: "bank fraud", URL: doc.URL, Mode: "all", Limit: 10}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "No excerpts")
	})

	t.Run("reads a text file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "notice.txt")
		require.NoError(t, os.WriteFile(path, []byte(excerptText), 0644))
		deps, stdout, _ := newExcerptDeps(nil)

		cmd := &main.ExcerptsCmd{Query: "evasion", File: path, Limit: 10}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "[p.1] Tax **evasion** was alleged.")
	})

	t.Run("extracts a PDF file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "notice.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 binary"), 0644))
		deps, stdout, _ := newExcerptDeps(nil)

		var extracted []byte
		deps.Extractor = &mock.TextExtractor{
			ExtractTextFn: func(_ context.Context, pdf []byte) (string, error) {
				extracted = pdf
				return "Civil penalty imposed.", nil
			},
		}

		cmd := &main.ExcerptsCmd{Query: "penalty", File: path, Limit: 10}
		require.NoError(t, cmd.Run(deps))
		assert.Equal(t, []byte("%PDF-1.7 binary"), extracted)
		assert.Contains(t, stdout.String(), "[p.1] Civil **penalty** imposed.")
	})

	t.Run("document without text", func(t *testing.T) {
		t.Parallel()

		doc := &penalty.Document{URL: "https://example.com/scan.pdf"}
		deps, _, stderr := newExcerptDeps(doc)

		err := (&main.ExcerptsCmd{Query: "tax", URL: doc.URL}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, penalty.ENOTFOUND, penalty.ErrorCode(err))
		assert.Contains(t, stderr.String(), "has no text")
	})

	t.Run("unknown document", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newExcerptDeps(nil)

		err := (&main.ExcerptsCmd{Query: "tax", URL: "https://example.com/missing.pdf"}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, penalty.ENOTFOUND, penalty.ErrorCode(err))
	})

	t.Run("requires a source", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newExcerptDeps(nil)

		err := (&main.ExcerptsCmd{Query: "tax"}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, penalty.EINVALID, penalty.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--url or --file required")
	})
}
