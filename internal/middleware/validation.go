package middleware

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
)

// Form field limits.
const (
	// MaxURLLength is the maximum length of a submitted URL.
	MaxURLLength = 2048

	// MaxTitleLength bounds edited titles and descriptions.
	MaxTitleLength = 512

	// MaxTextLength bounds prompt text, generated output and edited content.
	MaxTextLength = 200_000
)

// Validation errors.
var (
	ErrURLTooLong   = errors.New("url exceeds maximum length")
	ErrTitleTooLong = errors.New("title or description exceeds maximum length")
	ErrTextTooLong  = errors.New("text exceeds maximum length")
	ErrInvalidID    = errors.New("id is not a valid record id")
)

// ValidateURLLength checks a submitted URL against MaxURLLength.
func ValidateURLLength(url string) error {
	if len(url) > MaxURLLength {
		return ErrURLTooLong
	}
	return nil
}

// ValidateTitleLength checks titles and descriptions against MaxTitleLength
// in characters.
func ValidateTitleLength(s string) error {
	if utf8.RuneCountInString(s) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// ValidateTextLength checks free text against MaxTextLength in characters.
func ValidateTextLength(s string) error {
	if utf8.RuneCountInString(s) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// ValidateRecordID checks that id is a canonical ULID.
func ValidateRecordID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// RequireRecordID rejects requests whose chi URL parameter name is not a
// record ID with a 404, before any lookup happens.
func RequireRecordID(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ValidateRecordID(chi.URLParam(r, name)); err != nil {
				writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
