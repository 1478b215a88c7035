// Package handler serves role management over HTTP. Every route expects the
// caller to be authenticated and to hold the admin role.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"auth-session-service/internal/platform/httpjson"
	"auth-session-service/internal/role/domain"
	"auth-session-service/internal/role/repository"
	userdomain "auth-session-service/internal/user/domain"
)

// UserLister resolves role members between ids and usernames.
type UserLister interface {
	ListByIDs(ctx context.Context, ids []string) ([]*userdomain.User, error)
	ListByUsernames(ctx context.Context, names []string) ([]*userdomain.User, error)
}

// View is the public representation of a role with its members.
type View struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Users     []userdomain.View `json:"users"`
	CreatedAt time.Time         `json:"created"`
	UpdatedAt time.Time         `json:"updated"`
}

// RoleHandler serves /permissions/roles routes.
type RoleHandler struct {
	roles  repository.Repository
	users  UserLister
	logger *slog.Logger
	now    func() time.Time
}

// NewRoleHandler returns a RoleHandler. A nil logger uses slog.Default.
func NewRoleHandler(roles repository.Repository, users UserLister, logger *slog.Logger) *RoleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleHandler{roles: roles, users: users, logger: logger, now: time.Now}
}

// Routes returns the /roles sub-router.
func (h *RoleHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Route("/{role_id}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Patch("/", h.handleRename)
		r.Patch("/users", h.handleMembers)
	})
	return r
}

func (h *RoleHandler) handleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.List(r.Context())
	if err != nil {
		h.internal(w, r, "list roles", err)
		return
	}
	views := make([]View, 0, len(roles))
	for _, role := range roles {
		v, err := h.view(r.Context(), role)
		if err != nil {
			h.internal(w, r, "list roles", err)
			return
		}
		views = append(views, v)
	}
	httpjson.Write(w, http.StatusOK, views)
}

func (h *RoleHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.Update
	if err := httpjson.Decode(r, &req); err != nil || req.Validate() != nil {
		httpjson.WriteError(w, http.StatusBadRequest, httpjson.CodeValidation, "input payload validation failed")
		return
	}
	name := strings.TrimSpace(*req.Name)
	now := h.now().UTC()
	err := h.roles.Create(r.Context(), &domain.Role{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, repository.ErrNameExists) {
		httpjson.BadRequest(w, fmt.Sprintf("role %s already exists", name))
		return
	}
	if err != nil {
		h.internal(w, r, "create role", err)
		return
	}
	h.logger.InfoContext(r.Context(), "role created", "role", name)
	httpjson.Write(w, http.StatusCreated, httpjson.Message{Message: fmt.Sprintf("role %s added", name)})
}

func (h *RoleHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	role, ok := h.load(w, r)
	if !ok {
		return
	}
	v, err := h.view(r.Context(), role)
	if err != nil {
		h.internal(w, r, "get role", err)
		return
	}
	httpjson.Write(w, http.StatusOK, v)
}

func (h *RoleHandler) handleRename(w http.ResponseWriter, r *http.Request) {
	var req domain.Update
	if err := httpjson.Decode(r, &req); err != nil || req.Validate() != nil {
		httpjson.WriteError(w, http.StatusBadRequest, httpjson.CodeValidation, "input payload validation failed")
		return
	}
	role, ok := h.load(w, r)
	if !ok {
		return
	}
	name := strings.TrimSpace(*req.Name)
	err := h.roles.Rename(r.Context(), role.ID, name, h.now().UTC())
	if errors.Is(err, repository.ErrNameExists) {
		httpjson.BadRequest(w, fmt.Sprintf("role %s already exists", name))
		return
	}
	if err != nil {
		h.internal(w, r, "rename role", err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.Message{Message: fmt.Sprintf("role %s updated", role.ID)})
}

// handleMembers replaces the member set with current plus added minus deleted.
// Unknown usernames are ignored.
func (h *RoleHandler) handleMembers(w http.ResponseWriter, r *http.Request) {
	var req domain.MembersUpdate
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, httpjson.CodeValidation, "input payload validation failed")
		return
	}
	role, ok := h.load(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	current, err := h.users.ListByIDs(ctx, role.UserIDs)
	if err != nil {
		h.internal(w, r, "update role members", err)
		return
	}
	names := make([]string, 0, len(current))
	for _, u := range current {
		names = append(names, u.Username)
	}
	members, err := h.users.ListByUsernames(ctx, req.Apply(names))
	if err != nil {
		h.internal(w, r, "update role members", err)
		return
	}
	ids := make([]string, 0, len(members))
	for _, u := range members {
		ids = append(ids, u.ID)
	}
	if err := h.roles.SetMembers(ctx, role.ID, ids, h.now().UTC()); err != nil {
		h.internal(w, r, "update role members", err)
		return
	}
	updated, err := h.roles.GetByID(ctx, role.ID)
	if err != nil || updated == nil {
		h.internal(w, r, "update role members", err)
		return
	}
	v, err := h.view(ctx, updated)
	if err != nil {
		h.internal(w, r, "update role members", err)
		return
	}
	h.logger.InfoContext(ctx, "role members updated", "role", role.Name, "members", len(ids))
	httpjson.Write(w, http.StatusCreated, v)
}

// load fetches the role named by the path. It writes 404 or 500 and returns false on failure.
func (h *RoleHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Role, bool) {
	id := chi.URLParam(r, "role_id")
	role, err := h.roles.GetByID(r.Context(), id)
	if err != nil {
		h.internal(w, r, "get role", err)
		return nil, false
	}
	if role == nil {
		httpjson.NotFound(w, fmt.Sprintf("role %s does not exist", id))
		return nil, false
	}
	return role, true
}

func (h *RoleHandler) view(ctx context.Context, role *domain.Role) (View, error) {
	users, err := h.users.ListByIDs(ctx, role.UserIDs)
	if err != nil {
		return View{}, err
	}
	v := View{
		ID:        role.ID,
		Name:      role.Name,
		Users:     make([]userdomain.View, 0, len(users)),
		CreatedAt: role.CreatedAt,
		UpdatedAt: role.UpdatedAt,
	}
	for _, u := range users {
		v.Users = append(v.Users, userdomain.NewView(u))
	}
	return v, nil
}

func (h *RoleHandler) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), op+" failed", "error", err)
	httpjson.InternalError(w, op+" failed")
}
