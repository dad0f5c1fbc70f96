package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/apperrors"
)

type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondServiceError maps a service error to its HTTP status. Unclassified
// errors become opaque 500s; everything else carries its message through.
func (h *BaseHandler) respondServiceError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("internal error", zap.Error(err))
		h.respondError(w, status, "internal server error")
		return
	}
	h.respondError(w, status, err.Error())
}
