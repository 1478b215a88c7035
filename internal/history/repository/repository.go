package repository

import (
	"context"

	"auth-session-service/internal/history/domain"
)

// Repository persists history entries. There are no update or delete operations.
type Repository interface {
	Create(ctx context.Context, e *domain.Entry) error
	// ListByUser returns the user's entries oldest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Entry, error)
}
