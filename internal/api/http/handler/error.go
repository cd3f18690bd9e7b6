package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/peroxide-labs/peroxide/internal/model"
)

// errorResponse is the JSON body returned for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// handleError maps domain errors to HTTP statuses and writes a JSON
// error body. Authentication failures collapse to one generic message.
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidToken),
		errors.Is(err, model.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "authentication failed")
	case errors.Is(err, model.ErrInsufficientRank):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, model.ErrDuplicate):
		writeError(w, http.StatusConflict, model.ErrDuplicate.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
