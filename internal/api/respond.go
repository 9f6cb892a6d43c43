package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/crimewatch-io/crimewatch/internal/auth"
	"github.com/crimewatch-io/crimewatch/internal/crime"
	"github.com/crimewatch-io/crimewatch/internal/person"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

// writeError maps service errors onto HTTP responses. Business failures carry
// their own status and message; anything unexpected is logged and hidden
// behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var business *auth.BusinessError
	if errors.As(err, &business) {
		writeJSON(w, business.Status, errorResponse{Error: business.Message})
		return
	}

	var validation crime.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Error()})
		return
	}

	if errors.Is(err, person.ErrNotFound) || errors.Is(err, crime.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
		return
	}

	log.Printf("%s %s: internal error: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}
