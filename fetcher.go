package penalty

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch returns the HTML at url.
	// Returns ENOTFOUND when the server reports the page does not exist.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// Downloader retrieves raw bytes, such as PDF documents, from URLs.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// TextExtractor converts a PDF into plain text with pages separated by
// PageBreak. Errors mean the content could not be extracted; callers store
// such documents without text instead of failing.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
