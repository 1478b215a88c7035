// Package handler serves user lookups, login history and password changes over HTTP.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	historydomain "auth-session-service/internal/history/domain"
	"auth-session-service/internal/identity/service"
	"auth-session-service/internal/platform/httpjson"
	"auth-session-service/internal/server/interceptors"
	"auth-session-service/internal/user/domain"
)

// UserReader loads users by id.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// HistoryLister lists a user's login history.
type HistoryLister interface {
	ListByUser(ctx context.Context, userID string) ([]*historydomain.Entry, error)
}

// PasswordChanger changes a user's password after checking the old one.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID string, change domain.PasswordChange) (*domain.User, error)
}

// UserHandler serves /users routes. Every route expects interceptors.Authenticate to have run.
type UserHandler struct {
	users     UserReader
	history   HistoryLister
	passwords PasswordChanger
	logger    *slog.Logger
}

// NewUserHandler returns a UserHandler. A nil logger uses slog.Default.
func NewUserHandler(users UserReader, history HistoryLister, passwords PasswordChanger, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{users: users, history: history, passwords: passwords, logger: logger}
}

// Routes returns the /users sub-router.
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/{user_id}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Get("/history", h.handleHistory)
		r.Patch("/change_password", h.handleChangePassword)
	})
	return r
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	u, ok := h.load(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, domain.NewView(u))
}

func (h *UserHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	u, ok := h.load(w, r)
	if !ok {
		return
	}
	entries, err := h.history.ListByUser(r.Context(), u.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list history failed", "user_id", u.ID, "error", err)
		httpjson.InternalError(w, "failed to list history")
		return
	}
	if entries == nil {
		entries = []*historydomain.Entry{}
	}
	httpjson.Write(w, http.StatusOK, entries)
}

func (h *UserHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	claims, ok := interceptors.ClaimsFromContext(r.Context())
	if !ok {
		httpjson.Unauthorized(w, "authentication required")
		return
	}
	if claims.UserID() != userID && !claims.IsSuper() {
		httpjson.Forbidden(w, "cannot change another user's password")
		return
	}
	var change domain.PasswordChange
	if err := httpjson.Decode(r, &change); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, httpjson.CodeValidation, service.ErrInvalidInput.Error())
		return
	}
	u, err := h.passwords.ChangePassword(r.Context(), userID, change)
	switch {
	case err == nil:
		httpjson.Write(w, http.StatusCreated, domain.NewView(u))
	case errors.Is(err, service.ErrInvalidInput):
		httpjson.WriteError(w, http.StatusBadRequest, httpjson.CodeValidation, service.ErrInvalidInput.Error())
	case errors.Is(err, service.ErrUserNotFound):
		httpjson.NotFound(w, notFoundMessage(userID))
	case errors.Is(err, service.ErrInvalidCredentials):
		httpjson.NotFound(w, "invalid password")
	default:
		h.logger.ErrorContext(r.Context(), "change password failed", "user_id", userID, "error", err)
		httpjson.InternalError(w, "failed to change password")
	}
}

// load fetches the user named by the path. It writes 404 or 500 and returns false on failure.
func (h *UserHandler) load(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	userID := chi.URLParam(r, "user_id")
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get user failed", "user_id", userID, "error", err)
		httpjson.InternalError(w, "failed to load user")
		return nil, false
	}
	if u == nil {
		httpjson.NotFound(w, notFoundMessage(userID))
		return nil, false
	}
	return u, true
}

func notFoundMessage(userID string) string {
	return fmt.Sprintf("user %s does not exist", userID)
}
