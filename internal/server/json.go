package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/playperu/geohunt/internal/hunt"
)

// ErrorResponse is returned for all error responses. Reason is a stable
// code for rejected tour events.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// bodyError turns a decoding failure into a message for the client. Enum and
// position errors are specific enough to pass through.
func bodyError(err error) string {
	var cfgErr *hunt.ConfigurationError
	if errors.As(err, &cfgErr) || errors.Is(err, hunt.ErrInvalidPosition) {
		return err.Error()
	}
	return "invalid request body"
}

// wantsRepresentation reports whether the client sent
// "Prefer: return=representation".
func wantsRepresentation(r *http.Request) bool {
	for _, v := range r.Header.Values("Prefer") {
		for _, pref := range strings.Split(v, ",") {
			if strings.TrimSpace(pref) == "return=representation" {
				return true
			}
		}
	}
	return false
}

// writeRows answers a write the way filter-style REST APIs do: the affected
// rows when asked for them, otherwise no body.
func writeRows[T any](w http.ResponseWriter, r *http.Request, status int, rows []T) {
	if !wantsRepresentation(r) {
		w.WriteHeader(status)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	writeJSON(w, status, rows)
}
