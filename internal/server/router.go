// Package server assembles the HTTP router and the gRPC server.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	healthhandler "auth-session-service/internal/health/handler"
	identityhandler "auth-session-service/internal/identity/handler"
	"auth-session-service/internal/platform/rbac"
	rolehandler "auth-session-service/internal/role/handler"
	"auth-session-service/internal/security"
	"auth-session-service/internal/server/interceptors"
	userhandler "auth-session-service/internal/user/handler"
)

// Deps holds everything the router mounts. All fields are required.
type Deps struct {
	Logger    *slog.Logger
	Codec     *security.TokenCodec
	Evaluator rbac.RoleEvaluator
	// AdminRole is the role required by /permissions routes.
	AdminRole string
	Auth      *identityhandler.AuthHandler
	Users     *userhandler.UserHandler
	Roles     *rolehandler.RoleHandler
	Health    *healthhandler.Checker
}

var probePaths = map[string]bool{"/healthz": true, "/readyz": true}

// NewRouter returns the HTTP handler for the whole API.
//
// Route → guard mapping:
//   - /healthz, /readyz, /auth/*  → none
//   - /users/*                    → Authenticate
//   - /permissions/roles/*        → Authenticate, RequireRole(AdminRole)
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(d.Logger, probePaths))
	r.Use(recoverer(d.Logger))
	r.Use(interceptors.Trace(probePaths))

	r.Get("/healthz", healthhandler.Live)
	r.Get("/readyz", healthhandler.Ready(d.Health))

	r.Mount("/auth", d.Auth.Routes())

	r.Group(func(r chi.Router) {
		r.Use(interceptors.Authenticate(d.Codec))
		r.Mount("/users", d.Users.Routes())

		r.Group(func(r chi.Router) {
			r.Use(rbac.RequireRole(d.Evaluator, d.AdminRole, d.Logger))
			r.Mount("/permissions/roles", d.Roles.Routes())
		})
	})
	return r
}
