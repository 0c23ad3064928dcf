package middleware

import (
	"net/http"
)

// SecurityConfig holds configuration for security headers.
type SecurityConfig struct {
	// IsDevelopment disables HSTS in dev environments.
	IsDevelopment bool
	// ImageSources are extra CSP img-src entries, e.g. avatar hosts.
	ImageSources []string
}

// DefaultSecurityConfig returns sensible defaults for production.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		IsDevelopment: false,
		ImageSources:  []string{"https://lh3.googleusercontent.com"},
	}
}

// ContentSecurityPolicy builds the CSP for the server-rendered pages.
// Pages load nothing cross-origin except avatar images.
func (c SecurityConfig) ContentSecurityPolicy() string {
	img := "img-src 'self' data:"
	for _, src := range c.ImageSources {
		img += " " + src
	}
	return "default-src 'self'; " +
		img + "; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'none'; " +
		"form-action 'self'; " +
		"base-uri 'none'; " +
		"frame-ancestors 'none'"
}

// Security returns a middleware that applies security headers to all responses.
//
// Headers applied:
//   - Strict-Transport-Security (HSTS), only outside development
//   - X-Content-Type-Options: nosniff
//   - X-Frame-Options: DENY
//   - Referrer-Policy: strict-origin-when-cross-origin
//   - Content-Security-Policy: same-origin policy for HTML pages
//   - Permissions-Policy: restrictive policy
//   - Cross-Origin-Opener-Policy and Cross-Origin-Resource-Policy: same-origin
//   - Cache-Control: no-store, since every page is per-user
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	csp := cfg.ContentSecurityPolicy()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "0")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=()")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")

			// max-age=31536000 = 1 year
			if !cfg.IsDevelopment {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			h.Set("Cache-Control", "no-store")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize returns a middleware that limits request body size.
// Bodies that declare a larger Content-Length are rejected up front; others
// fail on read once the limit is crossed.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
