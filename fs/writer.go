// Package fs provides file-based storage: the sync marker and plain-text
// dumps of stored documents.
package fs

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/penalty"
)

// URLToPath converts a document URL to a relative file path.
// Example: https://ofac.treasury.gov/media/932136/download → media/932136/download.txt
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", penalty.Errorf(penalty.EINVALID, "invalid URL %q", rawURL)
	}

	path := u.Path

	// Handle root or trailing slash → index.txt
	if path == "" || path == "/" {
		return "index.txt", nil
	}

	path = strings.TrimPrefix(path, "/")

	if strings.HasSuffix(path, "/") {
		return path + "index.txt", nil
	}

	// Published documents usually end in .pdf; the dump replaces it.
	return strings.TrimSuffix(path, ".pdf") + ".txt", nil
}

// FormatDocument formats a document with YAML frontmatter.
func FormatDocument(doc *penalty.Document) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(doc.URL)
	b.WriteString("\nrecords: ")
	b.WriteString(doc.RecordIDs.String())
	b.WriteString("\nfetched: ")
	b.WriteString(doc.CreatedAt.Format("2006-01-02"))
	if !doc.HasText() {
		b.WriteString("\ntext: missing")
	}
	b.WriteString("\n---\n\n")
	b.WriteString(doc.TextOrEmpty())
	return b.String()
}

// Writer writes documents as text files below a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteDocument writes doc to disk and returns the path written.
func (w *Writer) WriteDocument(doc *penalty.Document) (string, error) {
	relPath, err := URLToPath(doc.URL)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	if err := os.WriteFile(fullPath, []byte(FormatDocument(doc)), 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}
