package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pagescribe/pagescribe/internal/middleware"
	"github.com/pagescribe/pagescribe/internal/service"
)

// handleServiceError maps service and validation errors to HTTP responses.
// Unknown errors are logged and returned as 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytes):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")

	case errors.Is(err, service.ErrURLRequired):
		writeError(w, http.StatusBadRequest, "URL_REQUIRED", "url is required")
	case errors.Is(err, service.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "INVALID_URL", "url must start with http and include a host")
	case errors.Is(err, middleware.ErrURLTooLong):
		writeError(w, http.StatusBadRequest, "URL_TOO_LONG", "url exceeds maximum length")
	case errors.Is(err, middleware.ErrTitleTooLong):
		writeError(w, http.StatusBadRequest, "TITLE_TOO_LONG", "title or description exceeds maximum length")
	case errors.Is(err, middleware.ErrTextTooLong):
		writeError(w, http.StatusBadRequest, "TEXT_TOO_LONG", "text exceeds maximum length")
	case errors.Is(err, service.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "SCRAPE_FAILED", err.Error())
	case errors.Is(err, service.ErrPromptRequired):
		writeError(w, http.StatusBadRequest, "PROMPT_REQUIRED", "prompt_text is required")
	case errors.Is(err, service.ErrOutputRequired):
		writeError(w, http.StatusBadRequest, "OUTPUT_REQUIRED", "generated_output is required")
	case errors.Is(err, service.ErrInvalidIdentity):
		writeError(w, http.StatusBadRequest, "INVALID_IDENTITY", "identity provider did not return a usable email")
	case errors.Is(err, service.ErrInvalidState):
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "login state is missing, expired or already used")
	case errors.Is(err, service.ErrCodeRejected):
		writeError(w, http.StatusBadRequest, "INVALID_CODE", "authorization code was rejected")

	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "not signed in")

	case errors.Is(err, service.ErrScrapedRecordNotFound):
		writeError(w, http.StatusNotFound, "SCRAPED_DATA_NOT_FOUND", "scraped data not found")
	case errors.Is(err, service.ErrPromptLogNotFound):
		writeError(w, http.StatusNotFound, "PROMPT_LOG_NOT_FOUND", "prompt log not found")

	case errors.Is(err, service.ErrSummarizerFailed):
		logger.Warn("summarizer_failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusBadGateway, "SUMMARIZER_FAILED", "summarizer request failed")
	case errors.Is(err, service.ErrProviderUnavailable):
		logger.Warn("provider_unavailable",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusBadGateway, "PROVIDER_UNAVAILABLE", "identity provider unavailable")
	case errors.Is(err, service.ErrSummarizerUnavailable):
		writeError(w, http.StatusServiceUnavailable, "SUMMARIZER_UNAVAILABLE", "summarizer not configured")

	default:
		logger.Error("internal_error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}
