package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"auth-session-service/internal/role/domain"
)

const uniqueViolation = "23505"

const selectRole = `SELECT id, name, created_at, updated_at FROM roles`

// PostgresRepository is the Postgres-backed role repository.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a role repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all roles ordered by name, with members.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, selectRole+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	var out []*domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		out = append(out, &role)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, role := range out {
		if role.UserIDs, err = r.memberIDs(ctx, role.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetByID returns the role for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getOne(ctx, selectRole+` WHERE id = $1`, id)
}

// GetByName returns the role with the given name, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getOne(ctx, selectRole+` WHERE name = $1`, name)
}

// Create persists the role. Members are not written; use SetMembers.
func (r *PostgresRepository) Create(ctx context.Context, role *domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		role.ID, role.Name, role.CreatedAt, role.UpdatedAt)
	return mapWriteErr("creating role", err)
}

// Rename changes the role's name.
func (r *PostgresRepository) Rename(ctx context.Context, id, name string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE roles SET name = $2, updated_at = $3 WHERE id = $1`, id, name, at)
	return mapWriteErr("renaming role", err)
}

// SetMembers replaces the membership rows of the role in one transaction.
func (r *PostgresRepository) SetMembers(ctx context.Context, roleID string, userIDs []string, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users_roles WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("clearing members: %w", err)
	}
	for _, uid := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, uid, roleID); err != nil {
			return fmt.Errorf("adding member: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE roles SET updated_at = $2 WHERE id = $1`, roleID, at); err != nil {
		return fmt.Errorf("touching role: %w", err)
	}
	return tx.Commit()
}

// NamesByUser returns the sorted role names of the user.
func (r *PostgresRepository) NamesByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.name FROM roles r JOIN users_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1 ORDER BY r.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("loading role names: %w", err)
	}
	return collectStrings(rows)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, arg string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting role: %w", err)
	}
	if role.UserIDs, err = r.memberIDs(ctx, role.ID); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *PostgresRepository) memberIDs(ctx context.Context, roleID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM users_roles WHERE role_id = $1 ORDER BY user_id`, roleID)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	return collectStrings(rows)
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func mapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrNameExists
	}
	return fmt.Errorf("%s: %w", op, err)
}
