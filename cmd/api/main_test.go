package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pagescribe/pagescribe/internal/auth"
	"github.com/pagescribe/pagescribe/internal/config"
	"github.com/pagescribe/pagescribe/internal/handler"
	"github.com/pagescribe/pagescribe/internal/metrics"
	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/service"
)

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no credentials", "redis://localhost:6379/0", "redis://localhost:6379/0"},
		{"user and password", "postgres://app:s3cret@db:5432/pagescribe", "postgres://app@db:5432/pagescribe"},
		{"password only", "redis://:s3cret@cache:6379", "redis://redacted@cache:6379"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := redactURL(tt.in); got != tt.want {
				t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	dsn := "postgres://app:s3cret@db:5432/pagescribe"
	err := errors.New("dial " + dsn + " failed; password=hunter2")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") || strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked: %q", got)
	}
	if !strings.Contains(got, "postgres://app@db:5432/pagescribe") {
		t.Errorf("redacted DSN missing: %q", got)
	}
	if sanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty")
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

type stubAuthenticator struct {
	sessionID string
	user      *model.User
}

func (s stubAuthenticator) Authenticate(_ context.Context, sessionID string) (*model.User, *model.Session, error) {
	if sessionID != s.sessionID {
		return nil, nil, service.ErrUnauthenticated
	}
	return s.user, &model.Session{ID: sessionID, UserID: s.user.ID}, nil
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

func testRouter(t *testing.T) (http.Handler, *auth.CookieSigner) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cookies, err := auth.NewCookieSigner("0123456789abcdef0123456789abcdef", time.Hour, false)
	if err != nil {
		t.Fatalf("NewCookieSigner: %v", err)
	}
	pages, err := handler.NewPages()
	if err != nil {
		t.Fatalf("NewPages: %v", err)
	}

	cfg := &config.Config{
		AppEnv:             "development",
		MaxRequestBodySize: 1 << 20,
		RateLimitEnabled:   false,
	}
	h := routes{
		base:      handler.New(logger),
		health:    handler.NewHealthHandler(stubPinger{}, stubPinger{}, false, logger),
		metrics:   handler.NewMetricsHandler(metrics.NewPrometheus().Handler()),
		auth:      handler.NewAuthHandler(nil, cookies, logger),
		dashboard: handler.NewDashboardHandler(nil, nil, pages, logger),
		scrape:    handler.NewScrapeHandler(nil, nil, pages, logger),
		prompts:   handler.NewPromptLogHandler(nil, pages, logger),
	}
	authn := stubAuthenticator{
		sessionID: "sess-1",
		user:      &model.User{ID: "01HZX3M5N0ACCT000000000000", Email: "ada@example.com"},
	}
	return setupRouter(h, authn, cookies, nil, cfg, logger), cookies
}

func TestRouter(t *testing.T) {
	t.Parallel()

	router, cookies := testRouter(t)

	tests := []struct {
		name         string
		method       string
		path         string
		signedIn     bool
		accept       string
		wantStatus   int
		wantLocation string
	}{
		{"healthz", http.MethodGet, "/healthz", false, "", http.StatusOK, ""},
		{"readyz", http.MethodGet, "/readyz", false, "", http.StatusOK, ""},
		{"dashboard redirects to login", http.MethodGet, "/", false, "", http.StatusSeeOther, "/google"},
		{"dashboard json unauthenticated", http.MethodGet, "/", false, "application/json", http.StatusUnauthorized, ""},
		{"scrape unauthenticated", http.MethodPost, "/scrape", false, "", http.StatusUnauthorized, ""},
		{"malformed record id", http.MethodGet, "/scraped_data/edit/not-an-id", true, "", http.StatusNotFound, ""},
		{"malformed prompt log id", http.MethodGet, "/prompt_log/delete/123", true, "", http.StatusNotFound, ""},
		{"unknown route", http.MethodGet, "/nope", false, "", http.StatusNotFound, ""},
		{"wrong method", http.MethodPost, "/healthz", false, "", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.signedIn {
				req.AddCookie(cookies.Cookie("sess-1"))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && rec.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.wantLocation)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("X-Request-ID not set")
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers not applied")
			}
		})
	}
}

func TestRouter_DeleteRefusesCrossSite(t *testing.T) {
	t.Parallel()

	router, cookies := testRouter(t)
	const id = "01HZX3M5N0REC0000000000000"

	tests := []struct {
		name    string
		path    string
		headers map[string]string
	}{
		{"scraped data via cross-site link", "/scraped_data/delete/" + id, map[string]string{"Sec-Fetch-Site": "cross-site"}},
		{"prompt log via cross-site link", "/prompt_log/delete/" + id, map[string]string{"Sec-Fetch-Site": "cross-site"}},
		{"scraped data via foreign referer", "/scraped_data/delete/" + id, map[string]string{"Referer": "https://evil.example.net/"}},
		{"prompt log without any origin signal", "/prompt_log/delete/" + id, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.AddCookie(cookies.Cookie("sess-1"))
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", rec.Code)
			}
		})
	}
}
