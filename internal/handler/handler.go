package handler

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	apperrors "flowboard/internal/errors"
)

// MaxBodyBytes bounds request bodies; generated images arrive base64-encoded
const MaxBodyBytes = 32 << 20

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// responder holds the JSON helpers shared by every handler
type responder struct {
	logger *log.Logger
}

func (h responder) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", "err", err)
	}
}

func (h responder) writeError(w http.ResponseWriter, message, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: message, Details: details}, statusCode)
}

// writeAppError maps an error's code to a status. Server-side failures are
// logged; the message is the action that failed.
func (h responder) writeAppError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, "err", err, "path", r.URL.Path)
		h.writeError(w, message, err.Error(), status)
		return
	}
	h.writeError(w, message, apperrors.UserMessage(err), status)
}

// decodeJSON decodes a bounded request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
