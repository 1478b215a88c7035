package repository

import (
	"context"
	"errors"
	"time"

	"auth-session-service/internal/role/domain"
)

// ErrNameExists is returned when a role name is already taken.
var ErrNameExists = errors.New("role name already exists")

// Repository defines persistence for roles and their memberships.
// Lookups return (nil, nil) when no role matches.
type Repository interface {
	List(ctx context.Context) ([]*domain.Role, error)
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
	Rename(ctx context.Context, id, name string, at time.Time) error
	// SetMembers replaces the role's member set with userIDs.
	SetMembers(ctx context.Context, roleID string, userIDs []string, at time.Time) error
	// NamesByUser returns the names of the roles the user belongs to, sorted.
	NamesByUser(ctx context.Context, userID string) ([]string, error)
}
