package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"auth-session-service/internal/user/domain"
)

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)

// MemoryRepository is a dev-only fallback when DATABASE_URL is not configured.
// It is also the store used by unit tests across packages.
type MemoryRepository struct {
	mu         sync.Mutex
	byID       map[string]*domain.User
	byUsername map[string]string // username -> id
}

// NewMemoryRepository constructs an empty in-memory user repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*domain.User),
		byUsername: make(map[string]string),
	}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.byID[r.byUsername[username]]), nil
}

func (r *MemoryRepository) ListByUsernames(ctx context.Context, names []string) ([]*domain.User, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(names))
	for _, n := range names {
		if id, ok := r.byUsername[n]; ok {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()
	return r.ListByIDs(ctx, ids)
}

func (r *MemoryRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{}, len(ids))
	var out []*domain.User
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u := r.byID[id]; u != nil {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *MemoryRepository) Create(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[u.Username]; ok {
		return ErrUsernameExists
	}
	r.byID[u.ID] = cloneUser(u)
	r.byUsername[u.Username] = u.ID
	return nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.byID[id]; u != nil {
		u.PasswordHash = passwordHash
		u.UpdatedAt = at
	}
	return nil
}

// SetActive toggles the active flag.
func (r *MemoryRepository) SetActive(id string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.byID[id]; u != nil {
		u.IsActive = active
	}
}

// Count returns the number of stored users.
func (r *MemoryRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
