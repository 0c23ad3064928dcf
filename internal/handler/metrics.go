package handler

import "net/http"

// MetricsHandler serves GET /metrics from a Prometheus exporter.
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler creates a new MetricsHandler. A nil exporter answers 503.
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	h.exporter.ServeHTTP(w, r)
}
