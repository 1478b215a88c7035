package repository

import (
	"context"
	"sync"

	"auth-session-service/internal/history/domain"
)

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)

// MemoryRepository appends entries to a slice. Dev-only fallback and test double.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []domain.Entry
	// FailWith, when set, is returned by Create.
	FailWith error
}

// NewMemoryRepository constructs an empty in-memory history repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, e *domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Entry
	for i := range r.entries {
		if r.entries[i].UserID == userID {
			e := r.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

// Count returns the number of stored entries.
func (r *MemoryRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
