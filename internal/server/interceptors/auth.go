// Package interceptors holds the HTTP middleware shared by guarded routes:
// credential authentication, request tracing and client address lookup.
package interceptors

import (
	"errors"
	"net/http"
	"strings"

	"auth-session-service/internal/platform/httpjson"
	"auth-session-service/internal/security"
)

const bearerPrefix = "bearer "

// Authenticate returns middleware that decodes the access credential from the
// Authorization header and stores its claims in the request context. The
// header carries either the raw credential or "Bearer <credential>". A missing
// or malformed credential fails with 401 "invalid token format"; an expired
// one with 401 "token expired". Nothing downstream runs on failure.
func Authenticate(codec *security.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := codec.Decode(extractToken(r))
			if err != nil {
				msg := security.ErrMalformedToken.Error()
				if errors.Is(err, security.ErrExpiredToken) {
					msg = security.ErrExpiredToken.Error()
				}
				httpjson.Unauthorized(w, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// extractToken returns the credential from the Authorization header, or "" if absent.
func extractToken(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) >= len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(v[len(bearerPrefix):])
	}
	return v
}
