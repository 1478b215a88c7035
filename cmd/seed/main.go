// seed creates the admin role and an admin super user. Idempotent: skips when
// the admin user already exists. The password comes from SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"auth-session-service/internal/config"
	"auth-session-service/internal/db"
	"auth-session-service/internal/platform/logging"
	roledomain "auth-session-service/internal/role/domain"
	rolerepo "auth-session-service/internal/role/repository"
	"auth-session-service/internal/security"
	userdomain "auth-session-service/internal/user/domain"
	userrepo "auth-session-service/internal/user/repository"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@localhost"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is not set; create a .env or export DATABASE_URL")
		os.Exit(1)
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		logger.Error("SEED_ADMIN_PASSWORD is not set")
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	created, err := seed(ctx,
		userrepo.NewPostgresRepository(conn), rolerepo.NewPostgresRepository(conn),
		security.NewHasher(cfg.BcryptCost), cfg.AdminRole, password, time.Now().UTC())
	if err != nil {
		logger.Error("seed", "error", err)
		os.Exit(1)
	}
	if !created {
		logger.Info("seed already applied; skipping", "username", adminUsername)
		return
	}
	logger.Info("seed completed", "username", adminUsername, "role", cfg.AdminRole)
}

// seed ensures role roleName exists and creates the admin super user as its
// member. It returns false when the admin user already exists.
func seed(ctx context.Context, users userrepo.Repository, roles rolerepo.Repository, hasher *security.Hasher, roleName, password string, now time.Time) (bool, error) {
	existing, err := users.GetByUsername(ctx, adminUsername)
	if err != nil {
		return false, fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	role, err := roles.GetByName(ctx, roleName)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	if role == nil {
		role = &roledomain.Role{ID: uuid.NewString(), Name: roleName, CreatedAt: now, UpdatedAt: now}
		if err := roles.Create(ctx, role); err != nil && !errors.Is(err, rolerepo.ErrNameExists) {
			return false, fmt.Errorf("create role: %w", err)
		}
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := &userdomain.User{
		ID:           uuid.NewString(),
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: hash,
		IsActive:     true,
		IsSuper:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin user: %w", err)
	}
	if err := roles.SetMembers(ctx, role.ID, append(role.UserIDs, admin.ID), now); err != nil {
		return false, fmt.Errorf("assign role: %w", err)
	}
	return true, nil
}
