package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

// SessionCookieName is the browser cookie carrying the signed session ID.
const SessionCookieName = "pagescribe_session"

const (
	cookieKeyInfo = "pagescribe session cookie v1"
	cookieKeyLen  = 32
)

// ErrSecretTooShort is returned for secrets too weak to derive a key from.
var ErrSecretTooShort = errors.New("secret key must be at least 16 bytes")

// CookieSigner signs and verifies session cookie values.
type CookieSigner struct {
	key    []byte
	secure bool
	ttl    time.Duration
}

// NewCookieSigner derives the cookie MAC key from secret with HKDF-SHA256.
func NewCookieSigner(secret string, ttl time.Duration, secure bool) (*CookieSigner, error) {
	if len(secret) < 16 {
		return nil, ErrSecretTooShort
	}

	key := make([]byte, cookieKeyLen)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(cookieKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive cookie key: %w", err)
	}

	return &CookieSigner{key: key, secure: secure, ttl: ttl}, nil
}

// Sign returns "<id>.<mac>".
func (s *CookieSigner) Sign(id string) string {
	return id + "." + s.mac(id)
}

// Verify returns the session ID from a signed value.
// A tampered or malformed value yields ok=false.
func (s *CookieSigner) Verify(value string) (string, bool) {
	id, sig, found := strings.Cut(value, ".")
	if !found || id == "" || sig == "" {
		return "", false
	}

	if !hmac.Equal([]byte(sig), []byte(s.mac(id))) {
		return "", false
	}
	return id, true
}

func (s *CookieSigner) mac(id string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Cookie builds the session cookie for sessionID.
func (s *CookieSigner) Cookie(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.Sign(sessionID),
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds a cookie that removes the session cookie.
func (s *CookieSigner) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionIDFromRequest returns the verified session ID carried by r.
func (s *CookieSigner) SessionIDFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	return s.Verify(c.Value)
}
