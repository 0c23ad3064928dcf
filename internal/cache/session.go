package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pagescribe/pagescribe/internal/model"
)

const (
	// sessionPrefix is the Redis key prefix for browser sessions.
	sessionPrefix = "session:"
	// oauthStatePrefix is the Redis key prefix for pending OAuth states.
	oauthStatePrefix = "oauth:state:"
	// OAuthStateTTL bounds how long a login may take between redirect and callback.
	OAuthStateTTL = 10 * time.Minute
)

// CreateSession stores a new session for userID and returns it.
func (c *Cache) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*model.Session, error) {
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	key := sessionPrefix + session.ID
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, session.ToCachedSession())
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

// GetSession loads a session by ID.
// Returns ErrSessionNotFound if it is missing or expired.
func (c *Cache) GetSession(ctx context.Context, id string) (*model.Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	res := c.client.HGetAll(ctx, sessionPrefix+id)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(res.Val()) == 0 {
		return nil, ErrSessionNotFound
	}

	var cached model.CachedSession
	if err := res.Scan(&cached); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if cached.UserID == "" {
		return nil, ErrSessionNotFound
	}

	return cached.ToSession(id), nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (c *Cache) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return c.client.Del(ctx, sessionPrefix+id).Err()
}

// SaveOAuthState records a state value issued with a login redirect.
func (c *Cache) SaveOAuthState(ctx context.Context, state string) error {
	return c.client.Set(ctx, oauthStatePrefix+state, "1", OAuthStateTTL).Err()
}

// ConsumeOAuthState reports whether state was issued and not yet used.
// A state can be consumed only once.
func (c *Cache) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}

	err := c.client.GetDel(ctx, oauthStatePrefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume oauth state: %w", err)
	}
	return true, nil
}
