package interceptors

import (
	"context"

	"auth-session-service/internal/security"
)

type contextKey struct{ name string }

var claimsKey = contextKey{"claims"}

// WithClaims returns a context carrying the decoded access credential claims.
func WithClaims(ctx context.Context, claims security.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims set by Authenticate and true, or nil, false.
func ClaimsFromContext(ctx context.Context) (security.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(security.Claims)
	return c, ok && c != nil
}

// GetUserID returns the user_id claim from ctx and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.UserID() == "" {
		return "", false
	}
	return c.UserID(), true
}
