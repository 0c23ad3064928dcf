// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/scraper"
)

// Service errors.
var (
	ErrURLRequired           = errors.New("url is required")
	ErrInvalidURL            = errors.New("url must start with http and include a host")
	ErrEmptyContent          = errors.New("no content could be scraped from the url")
	ErrScrapedRecordNotFound = errors.New("scraped record not found")

	ErrPromptRequired        = errors.New("prompt_text is required")
	ErrOutputRequired        = errors.New("generated_output is required")
	ErrPromptLogNotFound     = errors.New("prompt log not found")
	ErrSummarizerFailed      = errors.New("summarizer request failed")
	ErrSummarizerUnavailable = errors.New("summarizer not configured")

	ErrInvalidIdentity     = errors.New("identity provider returned an invalid identity")
	ErrInvalidState        = errors.New("login state is missing, expired or already used")
	ErrCodeRejected        = errors.New("authorization code was rejected")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrUnauthenticated     = errors.New("not signed in")
)

// UserStore persists users.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// ScrapedStore persists scraped records scoped by owner.
type ScrapedStore interface {
	CreateScrapedRecord(ctx context.Context, rec *model.ScrapedRecord) error
	GetScrapedRecord(ctx context.Context, id, userID string) (*model.ScrapedRecord, error)
	ListScrapedRecords(ctx context.Context, userID string) ([]*model.ScrapedRecord, error)
	UpdateScrapedRecord(ctx context.Context, rec *model.ScrapedRecord) error
	DeleteScrapedRecord(ctx context.Context, id, userID string) error
}

// PromptLogStore persists prompt logs scoped by owner.
type PromptLogStore interface {
	CreatePromptLog(ctx context.Context, log *model.PromptLog) error
	GetPromptLog(ctx context.Context, id, userID string) (*model.PromptLog, error)
	ListPromptLogs(ctx context.Context, userID string) ([]*model.PromptLog, error)
	UpdatePromptLog(ctx context.Context, log *model.PromptLog) error
	DeletePromptLog(ctx context.Context, id, userID string) error
}

// PageScraper fetches and extracts one page.
type PageScraper interface {
	Scrape(ctx context.Context, rawURL string) *scraper.Result
}

// IdentityProvider runs the external OAuth flow.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*model.Identity, error)
}

// SessionStore keeps browser sessions and pending OAuth states.
type SessionStore interface {
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
	SaveOAuthState(ctx context.Context, state string) error
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
}

// generateULID creates a new ULID string.
func generateULID() string {
	return ulid.Make().String()
}
