package httpapi

import (
	"encoding/json"
	"net/http"

	"hoopsync/internal/models"

	"github.com/rs/zerolog/log"
)

// errorBody is the API error shape spec.md §6 mandates for every failure
// response: {status_code, detail}.
type errorBody struct {
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

// writeError maps err to a status code per the taxonomy in spec.md §6/§7
// and writes the {status_code, detail} body.
func writeError(w http.ResponseWriter, err error) {
	status, detail := mapError(err)
	log.Error().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorBody{StatusCode: status, Detail: detail})
}

// writeErrorDetail writes a structured error response for a caller-detected
// condition (unknown/disabled source) that has no corresponding Go error
// value yet.
func writeErrorDetail(w http.ResponseWriter, status int, detail string) {
	log.Warn().Int("status", status).Str("detail", detail).Msg("request rejected")
	writeJSON(w, status, errorBody{StatusCode: status, Detail: detail})
}

func mapError(err error) (int, string) {
	switch {
	case models.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case models.IsValidation(err):
		return http.StatusUnprocessableEntity, err.Error()
	case models.IsIdentityConflict(err):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
