package main

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	rolerepo "auth-session-service/internal/role/repository"
	"auth-session-service/internal/security"
	userrepo "auth-session-service/internal/user/repository"
)

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	users := userrepo.NewMemoryRepository()
	roles := rolerepo.NewMemoryRepository()
	hasher := security.NewHasher(bcrypt.MinCost)
	now := time.Unix(1_700_000_000, 0).UTC()

	created, err := seed(ctx, users, roles, hasher, "admin", "s3cret", now)
	if err != nil || !created {
		t.Fatalf("first seed = %v, %v", created, err)
	}
	admin, _ := users.GetByUsername(ctx, adminUsername)
	if admin == nil || !admin.IsSuper || !hasher.Verify(admin.PasswordHash, "s3cret") {
		t.Fatalf("admin = %+v", admin)
	}
	names, _ := roles.NamesByUser(ctx, admin.ID)
	if len(names) != 1 || names[0] != "admin" {
		t.Errorf("admin roles = %v", names)
	}

	created, err = seed(ctx, users, roles, hasher, "admin", "other", now)
	if err != nil || created {
		t.Fatalf("second seed = %v, %v; want skip", created, err)
	}
	if users.Count() != 1 {
		t.Errorf("users = %d, want 1", users.Count())
	}
}
