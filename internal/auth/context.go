// Package auth provides login and session primitives: the Google identity
// provider, signed session cookies and the request-scoped user.
package auth

import (
	"context"

	"github.com/pagescribe/pagescribe/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userContextKey is the context key for the signed-in user.
	userContextKey contextKey = "user"
	// sessionContextKey is the context key for the active session.
	sessionContextKey contextKey = "session"
)

// ContextWithUser adds the signed-in user to the context.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the signed-in user from the context.
// Returns nil if not present.
func UserFromContext(ctx context.Context) *model.User {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// MustUserFromContext retrieves the user from the context.
// Panics if not present (use only behind RequireUser).
func MustUserFromContext(ctx context.Context) *model.User {
	user := UserFromContext(ctx)
	if user == nil {
		panic("user not found in context - ensure RequireUser middleware is applied")
	}
	return user
}

// UserIDFromContext is a convenience function to get the user ID.
// Returns empty string if not signed in.
func UserIDFromContext(ctx context.Context) string {
	user := UserFromContext(ctx)
	if user == nil {
		return ""
	}
	return user.ID
}

// ContextWithSession adds the active session to the context.
func ContextWithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the active session from the context.
func SessionFromContext(ctx context.Context) *model.Session {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return session
}
