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
	"github.com/pagescribe/pagescribe/internal/summarizer"
)

// PromptService runs summarizations and manages prompt logs.
type PromptService struct {
	store      PromptLogStore
	records    ScrapedStore
	summarizer summarizer.Summarizer
	metrics    metrics.Recorder
}

// NewPromptService creates a new PromptService.
func NewPromptService(store PromptLogStore, records ScrapedStore, sum summarizer.Summarizer, recorder metrics.Recorder) *PromptService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if sum == nil {
		sum = summarizer.Disabled{}
	}
	return &PromptService{
		store:      store,
		records:    records,
		summarizer: sum,
		metrics:    recorder,
	}
}

// UpdatePromptLogInput defines the editable fields of a prompt log.
type UpdatePromptLogInput struct {
	PromptText      string
	GeneratedOutput string
}

// Generate summarizes promptText and stores exactly one log for userID.
func (s *PromptService) Generate(ctx context.Context, userID, promptText string) (*model.PromptLog, error) {
	promptText = strings.TrimSpace(promptText)
	if promptText == "" {
		return nil, ErrPromptRequired
	}

	start := time.Now()
	output, err := s.summarizer.Summarize(ctx, promptText)
	s.metrics.ObserveSummaryDuration(time.Since(start))
	if err != nil {
		s.metrics.IncSummary(metrics.StatusFailed)
		if errors.Is(err, summarizer.ErrNotConfigured) {
			return nil, ErrSummarizerUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrSummarizerFailed, err)
	}

	output = strings.TrimSpace(output)
	if output == "" {
		s.metrics.IncSummary(metrics.StatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrSummarizerFailed, summarizer.ErrEmptyOutput)
	}

	log := &model.PromptLog{
		ID:              generateULID(),
		PromptText:      promptText,
		GeneratedOutput: output,
		UserID:          userID,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.CreatePromptLog(ctx, log); err != nil {
		s.metrics.IncSummary(metrics.StatusFailed)
		return nil, fmt.Errorf("failed to store prompt log: %w", err)
	}

	s.metrics.IncSummary(metrics.StatusSuccess)
	return log, nil
}

// SummarizeRecord summarizes the content of one of the user's scraped records.
func (s *PromptService) SummarizeRecord(ctx context.Context, userID, recordID string) (*model.PromptLog, error) {
	rec, err := s.records.GetScrapedRecord(ctx, recordID, userID)
	if err != nil {
		return nil, mapScrapedErr(err)
	}
	if strings.TrimSpace(rec.Content) == "" {
		return nil, ErrEmptyContent
	}
	return s.Generate(ctx, userID, rec.Content)
}

// List returns the user's logs, newest first.
func (s *PromptService) List(ctx context.Context, userID string) ([]*model.PromptLog, error) {
	logs, err := s.store.ListPromptLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt logs: %w", err)
	}
	return logs, nil
}

// Get returns one of the user's logs.
func (s *PromptService) Get(ctx context.Context, userID, id string) (*model.PromptLog, error) {
	log, err := s.store.GetPromptLog(ctx, id, userID)
	if err != nil {
		return nil, mapPromptLogErr(err)
	}
	return log, nil
}

// Update edits one of the user's logs. Both fields must stay non-empty.
func (s *PromptService) Update(ctx context.Context, userID, id string, input UpdatePromptLogInput) (*model.PromptLog, error) {
	input.PromptText = strings.TrimSpace(input.PromptText)
	input.GeneratedOutput = strings.TrimSpace(input.GeneratedOutput)
	if input.PromptText == "" {
		return nil, ErrPromptRequired
	}
	if input.GeneratedOutput == "" {
		return nil, ErrOutputRequired
	}

	log, err := s.store.GetPromptLog(ctx, id, userID)
	if err != nil {
		return nil, mapPromptLogErr(err)
	}

	log.PromptText = input.PromptText
	log.GeneratedOutput = input.GeneratedOutput

	if err := s.store.UpdatePromptLog(ctx, log); err != nil {
		return nil, mapPromptLogErr(err)
	}
	return log, nil
}

// Delete removes one of the user's logs.
func (s *PromptService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeletePromptLog(ctx, id, userID); err != nil {
		return mapPromptLogErr(err)
	}
	return nil
}

func mapPromptLogErr(err error) error {
	if errors.Is(err, repository.ErrPromptLogNotFound) {
		return ErrPromptLogNotFound
	}
	return err
}
