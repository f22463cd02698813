// Package rod fetches the enforcement pages with a headless Chrome browser,
// for when the site only serves its tables to JavaScript-capable clients.
package rod

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/penalty"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements penalty.Fetcher at compile time.
var _ penalty.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	timeout   time.Duration
	userAgent string

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the time allowed for one page load.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the browser's User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}

	// Launch browser using rod's launcher (finds or downloads Chrome)
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser = browser
	f.launcher = l
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
// Returns ENOTFOUND when the document response is a 404.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(ctx)

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return "", err
		}
	}

	var resp proto.NetworkResponseReceived
	waitResponse := page.WaitEvent(&resp)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	waitResponse()

	if resp.Response != nil {
		switch status := resp.Response.Status; {
		case status == http.StatusNotFound:
			return "", penalty.Errorf(penalty.ENOTFOUND, "HTTP 404 for %s", url)
		case status >= http.StatusBadRequest:
			return "", penalty.Errorf(penalty.EFETCH, "HTTP %d for %s", status, url)
		}
	}

	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	return page.HTML()
}

// Close releases browser resources. It is safe to call more than once.
func (f *Fetcher) Close() error {
	f.closeOnce.Do(func() {
		f.closeErr = f.browser.Close()
		if f.launcher != nil {
			f.launcher.Kill()
		}
	})
	return f.closeErr
}
