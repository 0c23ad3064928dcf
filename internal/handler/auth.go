package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pagescribe/pagescribe/internal/auth"
	"github.com/pagescribe/pagescribe/internal/middleware"
	"github.com/pagescribe/pagescribe/internal/model"
)

// LoginFlow is the part of service.AuthService the auth handler needs.
type LoginFlow interface {
	BeginLogin(ctx context.Context) (string, error)
	CompleteLogin(ctx context.Context, code, state string) (*model.User, *model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// SessionCookies issues and clears the signed session cookie.
type SessionCookies interface {
	Cookie(sessionID string) *http.Cookie
	ClearCookie() *http.Cookie
	SessionIDFromRequest(r *http.Request) (string, bool)
}

// AuthHandler handles login and logout.
type AuthHandler struct {
	flow    LoginFlow
	cookies SessionCookies
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(flow LoginFlow, cookies SessionCookies, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		flow:    flow,
		cookies: cookies,
		logger:  logger,
	}
}

// Google handles GET /google. Without a code it starts the OAuth flow;
// with code and state it completes it and opens a session.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if reason := query.Get("error"); reason != "" {
		h.logger.Info("login_cancelled",
			"reason", reason,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusBadRequest, "LOGIN_CANCELLED", "sign-in was cancelled at the provider")
		return
	}

	code := query.Get("code")
	if code == "" {
		redirectURL, err := h.flow.BeginLogin(r.Context())
		if err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
		http.Redirect(w, r, redirectURL, http.StatusFound)
		return
	}

	user, session, err := h.flow.CompleteLogin(r.Context(), code, query.Get("state"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, h.cookies.Cookie(session.ID))

	h.logger.Info("user_logged_in",
		"user_id", user.ID,
		"provider", user.Provider,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	redirectHome(w, r)
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if session := auth.SessionFromContext(r.Context()); session != nil {
		sessionID = session.ID
	} else if id, ok := h.cookies.SessionIDFromRequest(r); ok {
		sessionID = id
	}

	if sessionID != "" {
		if err := h.flow.Logout(r.Context(), sessionID); err != nil {
			h.logger.Error("logout_failed",
				"error", err,
				"request_id", middleware.GetRequestID(r.Context()),
			)
		} else {
			h.logger.Info("user_logged_out",
				"user_id", auth.UserIDFromContext(r.Context()),
				"request_id", middleware.GetRequestID(r.Context()),
			)
		}
	}

	http.SetCookie(w, h.cookies.ClearCookie())
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
