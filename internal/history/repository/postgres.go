package repository

import (
	"context"
	"database/sql"
	"fmt"

	"auth-session-service/internal/history/domain"
)

// PostgresRepository is the Postgres-backed login-history repository.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a history repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the entry. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO history (id, user_id, fingerprint, user_agent, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.UserID, e.Fingerprint, e.UserAgent, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating history entry: %w", err)
	}
	return nil
}

// ListByUser returns all entries for the user ordered by creation time.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, fingerprint, user_agent, created_at FROM history
		 WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()
	var out []*domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Fingerprint, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
