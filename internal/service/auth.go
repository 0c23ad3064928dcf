package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pagescribe/pagescribe/internal/auth"
	"github.com/pagescribe/pagescribe/internal/cache"
	"github.com/pagescribe/pagescribe/internal/metrics"
	"github.com/pagescribe/pagescribe/internal/model"
)

// AuthService runs login, logout and session lookup.
type AuthService struct {
	provider   IdentityProvider
	sessions   SessionStore
	identities *IdentityService
	sessionTTL time.Duration
	metrics    metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(provider IdentityProvider, sessions SessionStore, identities *IdentityService, sessionTTL time.Duration, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		provider:   provider,
		sessions:   sessions,
		identities: identities,
		sessionTTL: sessionTTL,
		metrics:    recorder,
	}
}

// BeginLogin stores a fresh state and returns the provider consent URL.
func (s *AuthService) BeginLogin(ctx context.Context) (string, error) {
	state, err := auth.GenerateState()
	if err != nil {
		return "", err
	}
	if err := s.sessions.SaveOAuthState(ctx, state); err != nil {
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}
	return s.provider.AuthCodeURL(state), nil
}

// CompleteLogin verifies state, exchanges code, resolves the user and opens a
// session.
func (s *AuthService) CompleteLogin(ctx context.Context, code, state string) (*model.User, *model.Session, error) {
	if !auth.ValidStateFormat(state) {
		s.metrics.IncLogin(metrics.LoginInvalidState)
		return nil, nil, ErrInvalidState
	}
	ok, err := s.sessions.ConsumeOAuthState(ctx, state)
	if err != nil {
		s.metrics.IncLogin(metrics.LoginError)
		return nil, nil, fmt.Errorf("failed to check oauth state: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginInvalidState)
		return nil, nil, ErrInvalidState
	}

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCodeRejected):
			s.metrics.IncLogin(metrics.LoginRejected)
			return nil, nil, fmt.Errorf("%w: %v", ErrCodeRejected, err)
		default:
			s.metrics.IncLogin(metrics.LoginError)
			return nil, nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
	}

	user, err := s.identities.Resolve(ctx, *identity)
	if err != nil {
		if errors.Is(err, ErrInvalidIdentity) {
			s.metrics.IncLogin(metrics.LoginRejected)
		} else {
			s.metrics.IncLogin(metrics.LoginError)
		}
		return nil, nil, err
	}

	session, err := s.sessions.CreateSession(ctx, user.ID, s.sessionTTL)
	if err != nil {
		s.metrics.IncLogin(metrics.LoginError)
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return user, session, nil
}

// Authenticate resolves a session ID to its user.
// Returns ErrUnauthenticated for unknown sessions or deleted users.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*model.User, *model.Session, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}

	user, err := s.identities.User(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout ends a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.DeleteSession(ctx, sessionID)
}
