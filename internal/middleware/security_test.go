package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		isDev       bool
		checkHeader string
		wantPresent bool
		wantValue   string
	}{
		{
			name:        "X-Content-Type-Options is set",
			checkHeader: "X-Content-Type-Options",
			wantPresent: true,
			wantValue:   "nosniff",
		},
		{
			name:        "X-Frame-Options is set",
			checkHeader: "X-Frame-Options",
			wantPresent: true,
			wantValue:   "DENY",
		},
		{
			name:        "Referrer-Policy is set",
			checkHeader: "Referrer-Policy",
			wantPresent: true,
			wantValue:   "strict-origin-when-cross-origin",
		},
		{
			name:        "HSTS is set in production",
			checkHeader: "Strict-Transport-Security",
			wantPresent: true,
			wantValue:   "max-age=31536000; includeSubDomains",
		},
		{
			name:        "HSTS is NOT set in development",
			isDev:       true,
			checkHeader: "Strict-Transport-Security",
			wantPresent: false,
		},
		{
			name:        "Cache-Control is set",
			checkHeader: "Cache-Control",
			wantPresent: true,
			wantValue:   "no-store",
		},
		{
			name:        "Cross-Origin-Opener-Policy is set",
			checkHeader: "Cross-Origin-Opener-Policy",
			wantPresent: true,
			wantValue:   "same-origin",
		},
		{
			name:        "Cross-Origin-Resource-Policy is set",
			checkHeader: "Cross-Origin-Resource-Policy",
			wantPresent: true,
			wantValue:   "same-origin",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultSecurityConfig()
			cfg.IsDevelopment = tt.isDev

			handler := Security(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(tt.checkHeader)
			if tt.wantPresent {
				if got != tt.wantValue {
					t.Errorf("header %s = %q, want %q", tt.checkHeader, got, tt.wantValue)
				}
			} else if got != "" {
				t.Errorf("header %s = %q, want empty", tt.checkHeader, got)
			}
		})
	}
}

func TestSecurity_ContentSecurityPolicy(t *testing.T) {
	t.Parallel()

	csp := DefaultSecurityConfig().ContentSecurityPolicy()

	for _, directive := range []string{
		"default-src 'self'",
		"img-src 'self' data: https://lh3.googleusercontent.com",
		"script-src 'none'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	} {
		if !strings.Contains(csp, directive) {
			t.Errorf("CSP %q missing %q", csp, directive)
		}
	}
}

func TestMaxBodySize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		maxBytes      int64
		contentLength int64
		body          string
		wantStatus    int
	}{
		{
			name:          "small body allowed",
			maxBytes:      1024,
			contentLength: 10,
			body:          "small body",
			wantStatus:    http.StatusOK,
		},
		{
			name:          "content-length exceeds limit",
			maxBytes:      10,
			contentLength: 100,
			body:          "this is a much longer body that exceeds the limit",
			wantStatus:    http.StatusRequestEntityTooLarge,
		},
		{
			name:          "unknown length exceeding limit fails on read",
			maxBytes:      10,
			contentLength: -1,
			body:          "this is a much longer body that exceeds the limit",
			wantStatus:    http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := MaxBodySize(tt.maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, err := io.Copy(io.Discard, r.Body); err != nil {
					var maxErr *http.MaxBytesError
					if errors.As(err, &maxErr) {
						w.WriteHeader(http.StatusRequestEntityTooLarge)
						return
					}
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMaxBodySize_JSONError(t *testing.T) {
	t.Parallel()

	handler := MaxBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader("url=http://example.com"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "PAYLOAD_TOO_LARGE" {
		t.Errorf("code = %q, want PAYLOAD_TOO_LARGE", body.Code)
	}
}
