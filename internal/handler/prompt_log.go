package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pagescribe/pagescribe/internal/auth"
	"github.com/pagescribe/pagescribe/internal/handler/dto"
	"github.com/pagescribe/pagescribe/internal/middleware"
	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/service"
)

// PromptUseCase is the part of service.PromptService the handlers need.
type PromptUseCase interface {
	Generate(ctx context.Context, userID, promptText string) (*model.PromptLog, error)
	SummarizeRecord(ctx context.Context, userID, recordID string) (*model.PromptLog, error)
	List(ctx context.Context, userID string) ([]*model.PromptLog, error)
	Get(ctx context.Context, userID, id string) (*model.PromptLog, error)
	Update(ctx context.Context, userID, id string, input service.UpdatePromptLogInput) (*model.PromptLog, error)
	Delete(ctx context.Context, userID, id string) error
}

// PromptLogHandler handles summarization and prompt log management.
type PromptLogHandler struct {
	svc    PromptUseCase
	pages  *Pages
	logger *slog.Logger
}

// NewPromptLogHandler creates a new PromptLogHandler.
func NewPromptLogHandler(svc PromptUseCase, pages *Pages, logger *slog.Logger) *PromptLogHandler {
	return &PromptLogHandler{
		svc:    svc,
		pages:  pages,
		logger: logger,
	}
}

// Generate handles POST /generate_prompt_response.
// Form fields: prompt_text, or scraped_data_id to summarize a stored page.
func (h *PromptLogHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	user := auth.MustUserFromContext(r.Context())

	var (
		log      *model.PromptLog
		err      error
		recordID = strings.TrimSpace(r.PostFormValue("scraped_data_id"))
	)

	if recordID != "" {
		if middleware.ValidateRecordID(recordID) != nil {
			handleServiceError(w, r, h.logger, service.ErrScrapedRecordNotFound)
			return
		}
		log, err = h.svc.SummarizeRecord(r.Context(), user.ID, recordID)
	} else {
		promptText := r.PostFormValue("prompt_text")
		if err := middleware.ValidateTextLength(promptText); err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
		log, err = h.svc.Generate(r.Context(), user.ID, promptText)
	}
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	attrs := []any{
		"user_id", user.ID,
		"prompt_log_id", log.ID,
		"output_chars", len([]rune(log.GeneratedOutput)),
		"request_id", middleware.GetRequestID(r.Context()),
	}
	if recordID != "" {
		attrs = append(attrs, "record_id", recordID)
	}
	h.logger.Info("prompt_generated", attrs...)

	writeJSON(w, http.StatusOK, dto.GenerateResponse{
		Message:         "Prompt response generated successfully",
		ID:              log.ID,
		GeneratedOutput: log.GeneratedOutput,
	})
}

// Edit handles GET /prompt_log/edit/{id}.
func (h *PromptLogHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	log, err := h.svc.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, dto.ToPromptLogResponse(log))
		return
	}

	if err := h.pages.render(w, pagePromptLogEdit, promptLogEditPage{User: user, Log: log}); err != nil {
		handleServiceError(w, r, h.logger, err)
	}
}

// Update handles POST /prompt_log/edit/{id}.
// Form fields: prompt_text, generated_output.
func (h *PromptLogHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	input := service.UpdatePromptLogInput{
		PromptText:      r.PostFormValue("prompt_text"),
		GeneratedOutput: r.PostFormValue("generated_output"),
	}
	for _, text := range []string{input.PromptText, input.GeneratedOutput} {
		if err := middleware.ValidateTextLength(text); err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
	}

	user := auth.MustUserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if _, err := h.svc.Update(r.Context(), user.ID, id, input); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("prompt_log_updated",
		"user_id", user.ID,
		"prompt_log_id", id,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	redirectHome(w, r)
}

// Delete handles GET /prompt_log/delete/{id}.
func (h *PromptLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), user.ID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("prompt_log_deleted",
		"user_id", user.ID,
		"prompt_log_id", id,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	redirectHome(w, r)
}
