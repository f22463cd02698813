// Package pdftotext extracts text from PDF documents with poppler's
// pdftotext command.
package pdftotext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/penalty"
)

// DefaultPath is the command looked up on PATH when none is configured.
const DefaultPath = "pdftotext"

// maxStderr bounds how much command output ends up in an error message.
const maxStderr = 512

// Ensure Extractor implements penalty.TextExtractor at compile time.
var _ penalty.TextExtractor = (*Extractor)(nil)

// Extractor converts PDF bytes to text. Pages are separated by form feeds,
// which pdftotext emits between pages.
type Extractor struct {
	path   string
	runner Runner
}

// NewExtractor returns an Extractor running the pdftotext binary at path.
func NewExtractor(path string, runner Runner) *Extractor {
	if path == "" {
		path = DefaultPath
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Extractor{path: path, runner: runner}
}

// ExtractText writes pdf to a temporary file and extracts its text.
func (e *Extractor) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(pdf, " \t\r\n"), []byte("%PDF")) {
		return "", penalty.Errorf(penalty.EINVALID, "not a PDF document")
	}

	f, err := os.CreateTemp("", "penalty-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(pdf); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.path, "-enc", "UTF-8", "-eol", "unix", f.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", e.path, err, truncate(strings.TrimSpace(string(errb)), maxStderr))
	}

	return strings.TrimRight(string(out), penalty.PageBreak+"\n"), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
