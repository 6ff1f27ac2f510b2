package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON")
		}
	}
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrSnapshotNotFound),
		errors.Is(err, apperrors.ErrRefreshLogNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrInvalidSortColumn),
		errors.Is(err, apperrors.ErrInvalidSortOrder),
		errors.Is(err, apperrors.ErrInvalidDimension),
		errors.Is(err, apperrors.ErrInvalidPeriod),
		errors.Is(err, apperrors.ErrInvalidUUID),
		errors.Is(err, apperrors.ErrMissingFile),
		errors.Is(err, apperrors.ErrEmptyFileName),
		errors.Is(err, apperrors.ErrInvalidFileType),
		errors.Is(err, apperrors.ErrMissingPassword),
		errors.Is(err, apperrors.ErrMissingRequiredField):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrUpstreamRejected),
		errors.Is(err, apperrors.ErrSnapshotMalformed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondServiceError writes err with the status statusFor picks. message is used for 500s; other
// statuses report the matched sentinel so clients see a stable error string.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(message)
	}
	response.RespondError(w, status, errorLabel(err, message), err.Error())
}

func errorLabel(err error, fallback string) string {
	for _, sentinel := range []error{
		apperrors.ErrSnapshotNotFound,
		apperrors.ErrRefreshLogNotFound,
		apperrors.ErrUpstreamUnavailable,
		apperrors.ErrUpstreamRejected,
		apperrors.ErrSnapshotMalformed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if statusFor(err) == http.StatusBadRequest {
		return "invalid request"
	}
	return fallback
}
