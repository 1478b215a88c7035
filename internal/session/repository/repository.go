package repository

import (
	"context"

	"auth-session-service/internal/session/domain"
)

// Repository defines persistence for sessions. Lookups return (nil, nil) when nothing matches.
type Repository interface {
	// Create persists a new session. No uniqueness is enforced on (user, fingerprint, user agent).
	Create(ctx context.Context, s *domain.Session) error
	// FindByUserAndDevice returns the first session matching all three fields.
	FindByUserAndDevice(ctx context.Context, userID string, device domain.Device) (*domain.Session, error)
	// FindByRefreshToken returns the session whose refresh credential and device both
	// match exactly. Expiry is not checked here.
	FindByRefreshToken(ctx context.Context, refreshToken string, device domain.Device) (*domain.Session, error)
	// ListByUser returns the user's sessions, oldest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
}
