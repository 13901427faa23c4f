package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"travel_guide/internal/domain"
)

const (
	msgTryAgain       = "Something went wrong, try again"
	msgWrongRequest   = "Wrong request data"
	msgCountryMissing = "Country not found"
	msgRatingTarget   = "Country or sight not found"
	msgConflict       = "Ratings were changed concurrently, try again"
)

type errorBody struct {
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string, fields []fieldError) {
	writeJSON(w, status, errorBody{Message: msg, Errors: fields})
}

// statusFor maps a service error to a status and client message. notFound is
// the status used for missing entities, which differs per endpoint.
func statusFor(err error, notFound int, notFoundMsg string) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, msgWrongRequest
	case errors.Is(err, domain.ErrNotFound):
		return notFound, notFoundMsg
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, msgConflict
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "Too many failed attempts, try again later"
	}
	return http.StatusInternalServerError, msgTryAgain
}

func fail(w http.ResponseWriter, r *http.Request, err error, notFound int, notFoundMsg string) {
	status, msg := statusFor(err, notFound, notFoundMsg)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	var fields []fieldError
	if status == http.StatusBadRequest && domain.IsValidation(err) {
		fields = []fieldError{{Message: err.Error()}}
	}
	writeError(w, status, msg, fields)
}
