package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"gaznger/service"

	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to status codes. Anything unrecognized is a
// 500 with a generic body; the real error goes to the log only.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidChange),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrOrderNotDelivered):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrBadCredentials),
		errors.Is(err, service.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrStationNotFound),
		errors.Is(err, service.ErrFuelTypeNotFound),
		errors.Is(err, service.ErrAddressNotFound),
		errors.Is(err, service.ErrNotificationNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrFuelTypeExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		log.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
