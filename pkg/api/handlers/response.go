package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marmos91/kioskd/internal/logger"
)

// WriteJSON writes payload as JSON with the given status code. Responses
// carry no-store cache headers: clients poll these endpoints and a cached
// status would defeat reconciliation.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Client went away mid-write; nothing to recover.
		logger.Debug("response write failed", "error", err)
	}
}

// errorResponse is the body for not-found and internal-error replies.
type errorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteNotFound writes the 404 body for unknown paths.
func WriteNotFound(w http.ResponseWriter, path string) {
	WriteJSON(w, http.StatusNotFound, errorResponse{
		OK:    false,
		Error: "not_found",
		Path:  path,
	})
}

// WriteInternalError writes the generic 500 body for recovered panics.
func WriteInternalError(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusInternalServerError, errorResponse{
		OK:      false,
		Error:   "exception",
		Message: msg,
	})
}
