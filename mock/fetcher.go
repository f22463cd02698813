package mock

import (
	"context"

	"github.com/fwojciec/penalty"
)

var _ penalty.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of penalty.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ penalty.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of penalty.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url string) ([]byte, error)
}

func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	return d.DownloadFn(ctx, url)
}

var _ penalty.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of penalty.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(ctx context.Context, pdf []byte) (string, error)
}

func (e *TextExtractor) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	return e.ExtractTextFn(ctx, pdf)
}

var _ penalty.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of penalty.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
