// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pagescribe/pagescribe/internal/handler/dto"
	"github.com/pagescribe/pagescribe/internal/middleware"
)

// Handler serves the router-level fallbacks.
type Handler struct {
	logger *slog.Logger
}

// New creates a new Handler instance.
func New(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// redirectHome sends the browser back to the dashboard after a form action.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// wantsJSON reports whether the client asked for JSON.
func wantsJSON(r *http.Request) bool {
	return middleware.WantsJSON(r)
}

// formBool parses checkbox-style values ("true", "on", "1").
func formBool(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
