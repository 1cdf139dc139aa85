package server

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Author is the single authoring identity. Requests prove it with a bearer
// token whose bcrypt hash is configured.
type Author struct {
	Name      string
	TokenHash []byte
}

type ctxKey int

const ctxKeyAuthor ctxKey = iota

// fromRequest returns the author name when r carries a valid bearer token.
func (a Author) fromRequest(r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" || len(a.TokenHash) == 0 {
		return "", false
	}
	if bcrypt.CompareHashAndPassword(a.TokenHash, []byte(token)) != nil {
		return "", false
	}
	return a.Name, true
}

func authorMiddleware(a Author) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, ok := a.fromRequest(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyAuthor, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authorFrom(r *http.Request) string {
	name, _ := r.Context().Value(ctxKeyAuthor).(string)
	return name
}
