package rbac

import (
	"fmt"
	"log/slog"
	"net/http"

	"auth-session-service/internal/platform/httpjson"
	"auth-session-service/internal/server/interceptors"
)

// RequireRole returns middleware that lets a request through only when its
// authenticated claims list role. Requests without claims fail with 401; a
// missing role fails with 403.
func RequireRole(evaluator RoleEvaluator, role string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := interceptors.ClaimsFromContext(r.Context())
			if !ok {
				httpjson.Unauthorized(w, "authentication required")
				return
			}
			allowed, err := evaluator.Allowed(r.Context(), claims.Roles(), role)
			if err != nil {
				logger.ErrorContext(r.Context(), "role evaluation failed", "role", role, "error", err)
				httpjson.InternalError(w, "authorization failed")
				return
			}
			if !allowed {
				httpjson.Forbidden(w, fmt.Sprintf("role %s is not assigned to user", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
