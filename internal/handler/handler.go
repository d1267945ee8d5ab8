// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/metrichub/metrichub/internal/handler/dto"
)

// List window defaults shared by the list endpoints.
const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// Handler wraps application dependencies for HTTP handlers.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello is a simple root endpoint for testing.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Hello from MetricHub!",
		"version": "1.0.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "resource not found",
	}
	writeJSON(w, http.StatusNotFound, response)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "method not allowed",
	}
	writeJSON(w, http.StatusMethodNotAllowed, response)
}

// parseListWindow reads limit/offset query parameters, writing a 400
// response and returning ok=false when either is malformed or out of
// bounds.
func parseListWindow(w http.ResponseWriter, r *http.Request, defaultLimit, maxLimit int) (limit, offset int, ok bool) {
	query := r.URL.Query()

	limit = defaultLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLimit {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and "+strconv.Itoa(maxLimit))
			return 0, 0, false
		}
		limit = parsed
	}

	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_OFFSET", "offset must be zero or positive")
			return 0, 0, false
		}
		offset = parsed
	}

	return limit, offset, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; nothing useful left to do
		_ = err
	}
}

// writeError writes an error response in the standard shape.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
