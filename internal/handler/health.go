package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 5 * time.Second

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db                HealthChecker
	cache             HealthChecker
	summarizerEnabled bool
	logger            *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for db or cache if they are not configured.
func NewHealthHandler(db, cache HealthChecker, summarizerEnabled bool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:                db,
		cache:             cache,
		summarizerEnabled: summarizerEnabled,
		logger:            logger,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe. It returns 200 while the process serves
// requests and checks no dependencies.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe. It returns 200 only when Postgres and Redis
// answer. The summarizer is reported but never fails readiness, since the
// app runs without it.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	for _, dep := range []struct {
		name    string
		checker HealthChecker
	}{
		{"postgres", h.db},
		{"redis", h.cache},
	} {
		if dep.checker == nil {
			checks[dep.name] = "not configured"
			continue
		}
		if err := dep.checker.Ping(ctx); err != nil {
			// Error details stay in the logs; probes are unauthenticated.
			h.logger.Error("readiness_check_failed",
				"dependency", dep.name,
				"error", err,
			)
			checks[dep.name] = "unavailable"
			healthy = false
			continue
		}
		checks[dep.name] = "ok"
	}

	if h.summarizerEnabled {
		checks["summarizer"] = "configured"
	} else {
		checks["summarizer"] = "disabled"
	}

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status: status,
		Checks: checks,
	})
}
