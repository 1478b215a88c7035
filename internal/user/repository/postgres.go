package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"auth-session-service/internal/user/domain"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, username, email, password_hash, is_active, is_super, created_at, updated_at FROM users`

// PostgresRepository is the Postgres-backed user repository.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

// GetByUsername returns the user with the given username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, selectUser+` WHERE username = $1`, username)
}

// ListByUsernames returns the users named in names, ordered by username.
func (r *PostgresRepository) ListByUsernames(ctx context.Context, names []string) ([]*domain.User, error) {
	return r.list(ctx, selectUser+` WHERE username = ANY($1) ORDER BY username`, names)
}

// ListByIDs returns the users whose ids are in ids, ordered by username.
func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	return r.list(ctx, selectUser+` WHERE id = ANY($1) ORDER BY username`, ids)
}

func (r *PostgresRepository) list(ctx context.Context, query string, keys []string) ([]*domain.User, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()
	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Create persists the user. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_active, is_super, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.IsSuper, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrUsernameExists
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash. Updating an unknown id is a no-op.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, passwordHash, at)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsSuper,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
