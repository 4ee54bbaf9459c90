package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/investbadge/internal/models"
	"github.com/bobmcallan/investbadge/internal/services/leaderboard"
	"github.com/bobmcallan/investbadge/internal/services/reputation"
	"github.com/bobmcallan/investbadge/internal/services/session"
	"github.com/bobmcallan/investbadge/internal/wallet"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// WritePNG writes an image/png response.
func WritePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// PathParam extracts a path parameter from the URL path.
// For /api/leaderboard/{id}/follow, PathParam(r, "/api/leaderboard/", "/follow")
// returns {id}.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wallet.ErrInvalidAddress):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_address")
	case errors.Is(err, models.ErrInvalidAllocation):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_allocation")
	case errors.Is(err, leaderboard.ErrInvalidFilter):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_filter")
	case errors.Is(err, session.ErrSelfFollow):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "self_follow")
	case errors.Is(err, session.ErrSessionNotFound):
		WriteErrorWithCode(w, http.StatusUnauthorized, err.Error(), "session_not_found")
	case errors.Is(err, models.ErrNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "not_found")
	case errors.Is(err, reputation.ErrRateLimited):
		w.Header().Set("Retry-After", "2")
		WriteErrorWithCode(w, http.StatusTooManyRequests, err.Error(), "rate_limited")
	case errors.Is(err, reputation.ErrRefreshConflict):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), "refresh_conflict")
	case errors.Is(err, reputation.ErrRefreshFailed):
		WriteErrorWithCode(w, http.StatusBadGateway, err.Error(), "refresh_failed")
	case errors.Is(err, reputation.ErrClosed):
		WriteErrorWithCode(w, http.StatusServiceUnavailable, err.Error(), "shutting_down")
	default:
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
