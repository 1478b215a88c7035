package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auth-session-service/internal/security"
	"auth-session-service/internal/session/domain"
)

const selectSession = `SELECT id, user_id, fingerprint, user_agent, refresh_token_hash, created_at, updated_at FROM sessions`

// PostgresRepository is the Postgres-backed session repository.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the session to the database. The session must have ID and RefreshTokenHash set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, fingerprint, user_agent, refresh_token_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.Fingerprint, s.UserAgent, s.RefreshTokenHash, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// FindByUserAndDevice returns the oldest session for the user on the device, or nil if none.
func (r *PostgresRepository) FindByUserAndDevice(ctx context.Context, userID string, device domain.Device) (*domain.Session, error) {
	return r.getOne(ctx, selectSession+` WHERE user_id = $1 AND fingerprint = $2 AND user_agent = $3
		ORDER BY created_at LIMIT 1`, userID, device.Fingerprint, device.UserAgent)
}

// FindByRefreshToken hashes refreshToken and returns the session matching the digest and device, or nil.
func (r *PostgresRepository) FindByRefreshToken(ctx context.Context, refreshToken string, device domain.Device) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, nil
	}
	return r.getOne(ctx, selectSession+` WHERE refresh_token_hash = $1 AND fingerprint = $2 AND user_agent = $3
		ORDER BY created_at LIMIT 1`, security.TokenDigest(refreshToken), device.Fingerprint, device.UserAgent)
}

// ListByUser returns all sessions of the user ordered by creation time.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, selectSession+` WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (*domain.Session, error) {
	var s domain.Session
	if err := sc.Scan(&s.ID, &s.UserID, &s.Fingerprint, &s.UserAgent, &s.RefreshTokenHash, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
