package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"auth-session-service/internal/role/domain"
)

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)

// MemoryRepository is a dev-only fallback and test double for roles.
type MemoryRepository struct {
	mu    sync.Mutex
	roles map[string]*domain.Role
}

// NewMemoryRepository constructs an empty in-memory role repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{roles: make(map[string]*domain.Role)}
}

func (r *MemoryRepository) List(ctx context.Context) ([]*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, cloneRole(role))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneRole(r.roles[id]), nil
}

func (r *MemoryRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneRole(r.byName(name)), nil
}

func (r *MemoryRepository) Create(ctx context.Context, role *domain.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byName(role.Name) != nil {
		return ErrNameExists
	}
	c := cloneRole(role)
	c.UserIDs = nil
	r.roles[role.ID] = c
	return nil
}

func (r *MemoryRepository) Rename(ctx context.Context, id, name string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if other := r.byName(name); other != nil && other.ID != id {
		return ErrNameExists
	}
	if role := r.roles[id]; role != nil {
		role.Name = name
		role.UpdatedAt = at
	}
	return nil
}

func (r *MemoryRepository) SetMembers(ctx context.Context, roleID string, userIDs []string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if role := r.roles[roleID]; role != nil {
		ids := append([]string(nil), userIDs...)
		sort.Strings(ids)
		role.UserIDs = ids
		role.UpdatedAt = at
	}
	return nil
}

func (r *MemoryRepository) NamesByUser(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	names := []string{}
	for _, role := range r.roles {
		for _, id := range role.UserIDs {
			if id == userID {
				names = append(names, role.Name)
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// byName must be called with mu held.
func (r *MemoryRepository) byName(name string) *domain.Role {
	for _, role := range r.roles {
		if role.Name == name {
			return role
		}
	}
	return nil
}

func cloneRole(role *domain.Role) *domain.Role {
	if role == nil {
		return nil
	}
	c := *role
	c.UserIDs = append([]string(nil), role.UserIDs...)
	return &c
}
