package repository

import (
	"context"
	"errors"
	"time"

	"auth-session-service/internal/user/domain"
)

// ErrUsernameExists is returned by Create when the username is already taken.
var ErrUsernameExists = errors.New("username already exists")

// Repository defines persistence for users. Lookups return (nil, nil) when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// ListByUsernames returns the users whose usernames are in names; unknown names are skipped.
	ListByUsernames(ctx context.Context, names []string) ([]*domain.User, error)
	// ListByIDs returns the users whose ids are in ids; unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
}
