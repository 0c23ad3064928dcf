// Package scraper fetches web pages and extracts their title, description
// and visible text.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (compatible; Pagescribe/1.0)"

const maxRedirects = 5

// ErrBodyTooLarge is returned when a page exceeds the configured size cap.
var ErrBodyTooLarge = errors.New("response body too large")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Page is a fetched HTTP response body.
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves pages over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewFetcher creates a Fetcher with a fixed timeout, user agent and body cap.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, opts ...FetcherOption) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var o fetcherOptions
	for _, opt := range opts {
		opt(&o)
	}

	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	proxy := http.ProxyFromEnvironment
	if o.blockPrivate {
		dialer.Control = guardControl
		// A proxy would make the guard check the proxy address instead.
		proxy = nil
	}

	transport := &http.Transport{
		Proxy:                 proxy,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (max %d)", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Fetch performs a GET and returns the body.
// Non-2xx statuses return a *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrBodyTooLarge, f.maxBytes)
	}

	return &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
