// Package auth implements bearer token authentication for the ops API.
// The relay has a single operator credential; there are no scopes or
// token sets to manage.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ExtractBearerToken pulls the bearer token out of an Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", errors.New("missing Authorization header")
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", errors.New("invalid Authorization header format")
	}

	token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	if token == "" {
		return "", errors.New("missing API key")
	}
	return token, nil
}

// ConstantTimeEqual compares two credentials without leaking timing
// information. Empty strings never match anything.
func ConstantTimeEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
