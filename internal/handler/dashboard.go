package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pagescribe/pagescribe/internal/auth"
	"github.com/pagescribe/pagescribe/internal/handler/dto"
	"github.com/pagescribe/pagescribe/internal/model"
)

// RecordLister lists a user's scraped records.
type RecordLister interface {
	List(ctx context.Context, userID string) ([]*model.ScrapedRecord, error)
}

// PromptLogLister lists a user's prompt logs.
type PromptLogLister interface {
	List(ctx context.Context, userID string) ([]*model.PromptLog, error)
}

// DashboardHandler renders the signed-in user's dashboard.
type DashboardHandler struct {
	records RecordLister
	logs    PromptLogLister
	pages   *Pages
	logger  *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(records RecordLister, logs PromptLogLister, pages *Pages, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		records: records,
		logs:    logs,
		pages:   pages,
		logger:  logger,
	}
}

// Index handles GET /.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	records, err := h.records.List(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	logs, err := h.logs.List(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, dto.ToDashboardResponse(user, records, logs))
		return
	}

	page := dashboardPage{User: user, ScrapedData: records, PromptLogs: logs}
	if err := h.pages.render(w, pageDashboard, page); err != nil {
		handleServiceError(w, r, h.logger, err)
	}
}
