// Helper functions for sending standardized JSON responses.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vrsandeep/truphotos-go/internal/credstore"
	"github.com/vrsandeep/truphotos-go/internal/jellyfin"
)

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithTypedError maps the core error taxonomy onto HTTP status codes
// so the presentation layer can distinguish retryable failures.
func respondWithTypedError(w http.ResponseWriter, err error) {
	var authErr *jellyfin.AuthError
	var timeoutErr *jellyfin.TimeoutError
	var netErr *jellyfin.NetworkError
	var persistErr *credstore.PersistenceError
	switch {
	case errors.As(err, &authErr):
		RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &timeoutErr):
		RespondWithError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &netErr):
		RespondWithError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &persistErr):
		RespondWithError(w, http.StatusInternalServerError, err.Error())
	default:
		RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
