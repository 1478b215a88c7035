// Package handler exposes the register, login and refresh flows over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"auth-session-service/internal/identity/service"
	"auth-session-service/internal/platform/httpjson"
	sessiondomain "auth-session-service/internal/session/domain"
)

// Device header names.
const (
	HeaderFingerprint = "Fingerprint"
	HeaderUserAgent   = "User-Agent"
)

const refreshFailedMessage = "refresh token expired or does not exist"

// AuthFlows is the subset of the auth service used by the handler.
type AuthFlows interface {
	Register(ctx context.Context, device sessiondomain.Device, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, device sessiondomain.Device, username, password string) (*service.AuthResult, error)
	Refresh(ctx context.Context, device sessiondomain.Device, refreshToken string) (*service.AuthResult, error)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthHandler serves /auth routes.
type AuthHandler struct {
	auth   AuthFlows
	logger *slog.Logger
}

// NewAuthHandler returns an AuthHandler. A nil logger uses slog.Default.
func NewAuthHandler(auth AuthFlows, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{auth: auth, logger: logger}
}

// Routes returns the /auth sub-router. None of its routes require a credential.
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
	return r
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	device, ok := h.device(w, r)
	if !ok {
		return
	}
	var req service.RegisterInput
	if err := httpjson.Decode(r, &req); err != nil {
		h.writeError(w, r, service.ErrInvalidInput)
		return
	}
	res, err := h.auth.Register(r.Context(), device, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, res.Status, res)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	device, ok := h.device(w, r)
	if !ok {
		return
	}
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.writeError(w, r, service.ErrInvalidInput)
		return
	}
	res, err := h.auth.Login(r.Context(), device, req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, res.Status, res)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	device, ok := h.device(w, r)
	if !ok {
		return
	}
	var req refreshRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.writeError(w, r, service.ErrInvalidInput)
		return
	}
	res, err := h.auth.Refresh(r.Context(), device, req.RefreshToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpjson.Write(w, res.Status, res)
}

// device reads the device headers. It writes 400 and returns false when either
// is missing, before the body is read.
func (h *AuthHandler) device(w http.ResponseWriter, r *http.Request) (sessiondomain.Device, bool) {
	d := sessiondomain.Device{
		Fingerprint: r.Header.Get(HeaderFingerprint),
		UserAgent:   r.Header.Get(HeaderUserAgent),
	}
	if !d.Complete() {
		h.writeError(w, r, service.ErrMissingDeviceHeaders)
		return d, false
	}
	return d, true
}

// writeError maps auth service errors to HTTP responses.
func (h *AuthHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingDeviceHeaders):
		httpjson.BadRequest(w, service.ErrMissingDeviceHeaders.Error())
	case errors.Is(err, service.ErrInvalidInput):
		httpjson.WriteError(w, http.StatusBadRequest, httpjson.CodeValidation, service.ErrInvalidInput.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		httpjson.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		httpjson.NotFound(w, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken), errors.Is(err, service.ErrSessionNotFound):
		httpjson.BadRequest(w, refreshFailedMessage)
	default:
		h.logger.ErrorContext(r.Context(), "auth request failed", "path", r.URL.Path, "error", err)
		httpjson.InternalError(w, "internal server error")
	}
}
