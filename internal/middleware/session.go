package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pagescribe/pagescribe/internal/auth"
	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/service"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/google"

// Authenticator resolves a session ID to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*model.User, *model.Session, error)
}

// CookieReader reads and clears the signed session cookie.
type CookieReader interface {
	SessionIDFromRequest(r *http.Request) (string, bool)
	ClearCookie() *http.Cookie
}

// Session loads the signed-in user into the request context when the
// request carries a valid session cookie. Requests without one pass through
// anonymously; stale cookies are cleared.
func Session(cookies CookieReader, authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, ok := cookies.SessionIDFromRequest(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, session, err := authn.Authenticate(r.Context(), sessionID)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					http.SetCookie(w, cookies.ClearCookie())
				} else {
					logger.Error("session lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			ctx = auth.ContextWithSession(ctx, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests. Browsers navigating with GET are
// redirected to the login endpoint; everything else gets a 401 JSON error.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodGet && !WantsJSON(r) {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "not signed in")
	})
}
