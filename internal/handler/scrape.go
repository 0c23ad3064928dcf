package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/pagescribe/pagescribe/internal/auth"
	"github.com/pagescribe/pagescribe/internal/handler/dto"
	"github.com/pagescribe/pagescribe/internal/middleware"
	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/service"
)

// ScrapeUseCase is the part of service.ScrapeService the handlers need.
type ScrapeUseCase interface {
	Scrape(ctx context.Context, userID, rawURL string) (*model.ScrapedRecord, error)
	List(ctx context.Context, userID string) ([]*model.ScrapedRecord, error)
	Get(ctx context.Context, userID, id string) (*model.ScrapedRecord, error)
	Update(ctx context.Context, userID, id string, input service.UpdateScrapedInput) (*model.ScrapedRecord, error)
	Delete(ctx context.Context, userID, id string) error
}

// RecordSummarizer summarizes a stored record.
type RecordSummarizer interface {
	SummarizeRecord(ctx context.Context, userID, recordID string) (*model.PromptLog, error)
}

// ScrapeHandler handles scraping and scraped data management.
type ScrapeHandler struct {
	svc        ScrapeUseCase
	summarizer RecordSummarizer
	pages      *Pages
	logger     *slog.Logger
}

// NewScrapeHandler creates a new ScrapeHandler.
func NewScrapeHandler(svc ScrapeUseCase, summarizer RecordSummarizer, pages *Pages, logger *slog.Logger) *ScrapeHandler {
	return &ScrapeHandler{
		svc:        svc,
		summarizer: summarizer,
		pages:      pages,
		logger:     logger,
	}
}

// Scrape handles POST /scrape.
// Form fields: url, and optional summarize=true to chain a summary.
func (h *ScrapeHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	rawURL := strings.TrimSpace(r.PostFormValue("url"))
	if err := middleware.ValidateURLLength(rawURL); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	user := auth.MustUserFromContext(r.Context())

	rec, err := h.svc.Scrape(r.Context(), user.ID, rawURL)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("page_scraped",
		"user_id", user.ID,
		"record_id", rec.ID,
		"host", hostOf(rec.URL),
		"content_chars", utf8.RuneCountInString(rec.Content),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	resp := dto.ScrapeResponse{
		Message: "Data scraped successfully",
		ID:      rec.ID,
	}

	if formBool(r.PostFormValue("summarize")) {
		log, err := h.summarizer.SummarizeRecord(r.Context(), user.ID, rec.ID)
		if err != nil {
			// The record is already stored; report the summary failure alongside it.
			h.logger.Warn("chained_summary_failed",
				"user_id", user.ID,
				"record_id", rec.ID,
				"error", err,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			resp.SummaryError = err.Error()
		} else {
			h.logger.Info("prompt_generated",
				"user_id", user.ID,
				"prompt_log_id", log.ID,
				"record_id", rec.ID,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			resp.PromptLogID = log.ID
			resp.GeneratedOutput = log.GeneratedOutput
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Edit handles GET /scraped_data/edit/{id}.
func (h *ScrapeHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	rec, err := h.svc.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, dto.ToScrapedRecordResponse(rec))
		return
	}

	if err := h.pages.render(w, pageScrapedEdit, scrapedEditPage{User: user, Record: rec}); err != nil {
		handleServiceError(w, r, h.logger, err)
	}
}

// Update handles POST /scraped_data/edit/{id}.
// Form fields: url, content, title, description.
func (h *ScrapeHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	input := service.UpdateScrapedInput{
		URL:         strings.TrimSpace(r.PostFormValue("url")),
		Content:     r.PostFormValue("content"),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
	}
	if err := validateScrapedInput(input); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	user := auth.MustUserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if _, err := h.svc.Update(r.Context(), user.ID, id, input); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("scraped_data_updated",
		"user_id", user.ID,
		"record_id", id,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	redirectHome(w, r)
}

// Delete handles GET /scraped_data/delete/{id}.
func (h *ScrapeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), user.ID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("scraped_data_deleted",
		"user_id", user.ID,
		"record_id", id,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	redirectHome(w, r)
}

func validateScrapedInput(input service.UpdateScrapedInput) error {
	if err := middleware.ValidateURLLength(input.URL); err != nil {
		return err
	}
	if err := middleware.ValidateTitleLength(input.Title); err != nil {
		return err
	}
	if err := middleware.ValidateTitleLength(input.Description); err != nil {
		return err
	}
	return middleware.ValidateTextLength(input.Content)
}

// hostOf returns the host of rawURL for logging, never the full URL.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
