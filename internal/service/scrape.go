package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pagescribe/pagescribe/internal/metrics"
	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/repository"
	"github.com/pagescribe/pagescribe/internal/scraper"
)

// ScrapeService handles scraping and scraped record management.
type ScrapeService struct {
	store   ScrapedStore
	scraper PageScraper
	metrics metrics.Recorder
}

// NewScrapeService creates a new ScrapeService.
func NewScrapeService(store ScrapedStore, s PageScraper, recorder metrics.Recorder) *ScrapeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ScrapeService{
		store:   store,
		scraper: s,
		metrics: recorder,
	}
}

// UpdateScrapedInput defines the editable fields of a scraped record.
type UpdateScrapedInput struct {
	URL         string
	Content     string
	Title       string
	Description string
}

// Scrape fetches rawURL and stores exactly one record for userID.
// Nothing is stored when the URL is invalid or the page yields no content.
func (s *ScrapeService) Scrape(ctx context.Context, userID, rawURL string) (*model.ScrapedRecord, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := validateURL(rawURL); err != nil {
		s.metrics.IncScrape(metrics.StatusInvalid)
		return nil, err
	}

	start := time.Now()
	result := s.scraper.Scrape(ctx, rawURL)
	s.metrics.ObserveFetchDuration(time.Since(start))

	if result.Failed() {
		s.metrics.IncScrape(metrics.StatusFailed)
		if reason := result.Metadata.Error(); reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyContent, reason)
		}
		return nil, ErrEmptyContent
	}

	rec := &model.ScrapedRecord{
		ID:        generateULID(),
		URL:       rawURL,
		Content:   result.Content,
		Metadata:  result.Metadata,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateScrapedRecord(ctx, rec); err != nil {
		s.metrics.IncScrape(metrics.StatusFailed)
		return nil, fmt.Errorf("failed to store scraped record: %w", err)
	}

	s.metrics.IncScrape(metrics.StatusSuccess)
	return rec, nil
}

// List returns the user's records, newest first.
func (s *ScrapeService) List(ctx context.Context, userID string) ([]*model.ScrapedRecord, error) {
	records, err := s.store.ListScrapedRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scraped records: %w", err)
	}
	return records, nil
}

// Get returns one of the user's records.
func (s *ScrapeService) Get(ctx context.Context, userID, id string) (*model.ScrapedRecord, error) {
	rec, err := s.store.GetScrapedRecord(ctx, id, userID)
	if err != nil {
		return nil, mapScrapedErr(err)
	}
	return rec, nil
}

// Update edits one of the user's records.
func (s *ScrapeService) Update(ctx context.Context, userID, id string, input UpdateScrapedInput) (*model.ScrapedRecord, error) {
	input.URL = strings.TrimSpace(input.URL)
	if err := validateURL(input.URL); err != nil {
		return nil, err
	}

	rec, err := s.store.GetScrapedRecord(ctx, id, userID)
	if err != nil {
		return nil, mapScrapedErr(err)
	}

	meta := model.Metadata{}
	for k, v := range rec.Metadata {
		meta[k] = v
	}
	meta[model.MetaURL] = input.URL
	meta[model.MetaTitle] = orDefault(input.Title, model.NoTitle)
	meta[model.MetaDescription] = orDefault(input.Description, model.NoDescription)

	rec.URL = input.URL
	rec.Content = input.Content
	rec.Metadata = meta

	if err := s.store.UpdateScrapedRecord(ctx, rec); err != nil {
		return nil, mapScrapedErr(err)
	}
	return rec, nil
}

// Delete removes one of the user's records.
func (s *ScrapeService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteScrapedRecord(ctx, id, userID); err != nil {
		return mapScrapedErr(err)
	}
	return nil
}

func validateURL(raw string) error {
	switch err := scraper.ValidateURL(raw); {
	case err == nil:
		return nil
	case errors.Is(err, scraper.ErrURLRequired):
		return ErrURLRequired
	default:
		return ErrInvalidURL
	}
}

func mapScrapedErr(err error) error {
	if errors.Is(err, repository.ErrScrapedRecordNotFound) {
		return ErrScrapedRecordNotFound
	}
	return err
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
