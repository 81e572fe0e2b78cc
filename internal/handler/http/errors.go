package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
)

// errorResponse is the uniform JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps a service or store error to an HTTP status and writes the
// JSON error body. Internal errors are logged and masked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDataProvided):
		utils.WriteJSON(w, errorResponse{Error: err.Error()}, http.StatusBadRequest)
	case errors.Is(err, service.ErrTokenIsExpired),
		errors.Is(err, service.ErrTokenIsInvalid),
		errors.Is(err, service.ErrInternalAuthDisabled),
		errors.Is(err, service.ErrInternalAuthRejected):
		utils.WriteJSON(w, errorResponse{Error: "unauthorized"}, http.StatusUnauthorized)
	case errors.Is(err, store.ErrConflictNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrRecordNotFound):
		utils.WriteJSON(w, errorResponse{Error: err.Error()}, http.StatusNotFound)
	default:
		logger.FromRequest(r).Err(err).Msg("internal error")
		utils.WriteJSON(w, errorResponse{Error: "internal server error"}, http.StatusInternalServerError)
	}
}
