package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError writes {"error": message} plus any extra fields the error carries.
// Errors that are not AppErrors become a generic 500.
func respondWithAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	body := make(map[string]interface{}, len(appErr.Fields)+1)
	for key, value := range appErr.Fields {
		body[key] = value
	}
	body["error"] = appErr.Message
	respondWithJSON(w, appErr.HTTPStatus(), body)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
