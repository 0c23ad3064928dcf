package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/repository"
)

const maxEmailLength = 150

// IdentityService maps provider identities to local users.
type IdentityService struct {
	users UserStore
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(users UserStore) *IdentityService {
	return &IdentityService{users: users}
}

// Resolve returns the user for identity, creating it on first sight.
// Users are keyed by email, so the provider must have verified it.
// Concurrent first logins for one email are settled by the unique index.
func (s *IdentityService) Resolve(ctx context.Context, identity model.Identity) (*model.User, error) {
	if !identity.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidIdentity)
	}

	email, err := normalizeEmail(identity.Email)
	if err != nil {
		return nil, err
	}
	identity.Email = email

	provider := identity.Provider
	if provider == "" {
		provider = model.ProviderGoogle
	}

	user := &model.User{
		ID:        generateULID(),
		Name:      identity.DisplayName(),
		Email:     email,
		Provider:  provider,
		AvatarURL: strings.TrimSpace(identity.AvatarURL),
		CreatedAt: time.Now().UTC(),
	}

	resolved, err := s.users.GetOrCreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return resolved, nil
}

// User loads a user by ID.
func (s *IdentityService) User(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > maxEmailLength {
		return "", ErrInvalidIdentity
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", ErrInvalidIdentity
	}
	return email, nil
}
