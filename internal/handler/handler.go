package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"warehouse-receiving/internal/middleware"
	"warehouse-receiving/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	requestID := middleware.RequestIDFromContext(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).
		Str("code", code).
		Int("status", status).
		Str("request_id", requestID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: requestID,
	})
}

// writeDomainError maps a fulfillment failure onto an HTTP status. Store
// diagnostics are logged but never sent to the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Msg("unclassified fulfillment error")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	switch de.Kind {
	case model.KindInvalidInput:
		writeError(w, r, http.StatusBadRequest, de.Code, de.Message, logger)
	case model.KindNotFound:
		writeError(w, r, http.StatusNotFound, de.Code, de.Message, logger)
	case model.KindConflict:
		writeError(w, r, http.StatusConflict, de.Code, de.Message, logger)
	case model.KindTransient:
		logger.Error().Err(de.Err).Msg("transient store failure")
		w.Header().Set("Retry-After", "1")
		writeError(w, r, http.StatusServiceUnavailable, de.Code, "store temporarily unavailable, retry later", logger)
	default:
		logger.Error().Err(de.Err).Msg("fatal store failure")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
	}
}
