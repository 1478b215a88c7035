package repository

import (
	"context"
	"sync"

	"auth-session-service/internal/security"
	"auth-session-service/internal/session/domain"
)

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)

// MemoryRepository keeps sessions in insertion order. Dev-only fallback and test double.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions []domain.Session
}

// NewMemoryRepository constructs an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, s *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, *s)
	return nil
}

func (r *MemoryRepository) FindByUserAndDevice(ctx context.Context, userID string, device domain.Device) (*domain.Session, error) {
	return r.find(ctx, func(s *domain.Session) bool {
		return s.UserID == userID && matchesDevice(s, device)
	})
}

func (r *MemoryRepository) FindByRefreshToken(ctx context.Context, refreshToken string, device domain.Device) (*domain.Session, error) {
	return r.find(ctx, func(s *domain.Session) bool {
		return matchesDevice(s, device) && security.DigestMatches(refreshToken, s.RefreshTokenHash)
	})
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	for i := range r.sessions {
		if r.sessions[i].UserID == userID {
			s := r.sessions[i]
			out = append(out, &s)
		}
	}
	return out, nil
}

// Count returns the number of stored sessions.
func (r *MemoryRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *MemoryRepository) find(ctx context.Context, match func(*domain.Session) bool) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sessions {
		if match(&r.sessions[i]) {
			s := r.sessions[i]
			return &s, nil
		}
	}
	return nil, nil
}

func matchesDevice(s *domain.Session, d domain.Device) bool {
	return s.Fingerprint == d.Fingerprint && s.UserAgent == d.UserAgent
}
