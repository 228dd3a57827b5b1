// Package shared holds transport helpers used by every feature handler so the
// JSON envelopes stay consistent across the API.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "amdesk/pkg/domain-errors"
	"amdesk/pkg/platform/sentinel"
)

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError centralizes domain error translation to HTTP responses. Sentinel
// errors that escaped a service layer degrade to their obvious statuses.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if errors.As(err, &de) {
		WriteJSON(w, dErrors.ToHTTPStatus(de.Code), map[string]string{"error": de.Message})
		return
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	case errors.Is(err, sentinel.ErrConflict):
		WriteJSON(w, http.StatusConflict, map[string]string{"error": "Conflict"})
	case errors.Is(err, sentinel.ErrInvalidState):
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
	}
}
