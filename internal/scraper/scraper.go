package scraper

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/pagescribe/pagescribe/internal/model"
)

// URL validation errors.
var (
	ErrURLRequired = errors.New("url is required")
	ErrInvalidURL  = errors.New("url must be an absolute http(s) URL")
)

// ValidateURL checks that raw is non-empty, starts with "http" and has a host.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrURLRequired
	}
	if !strings.HasPrefix(raw, "http") {
		return ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}

	return nil
}

// Scraper fetches a page and extracts it.
type Scraper struct {
	fetcher   *Fetcher
	extractor *Extractor
}

// New creates a Scraper.
func New(fetcher *Fetcher, extractor *Extractor) *Scraper {
	return &Scraper{fetcher: fetcher, extractor: extractor}
}

// Scrape never returns an error value. On fetch failure the result has empty
// Content and Metadata["error"] set.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) *Result {
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return &Result{
			URL: rawURL,
			Metadata: model.Metadata{
				model.MetaURL:   rawURL,
				model.MetaError: err.Error(),
			},
		}
	}

	return s.extractor.Extract(rawURL, page.ContentType, page.Body)
}
