package interceptors

import (
	"context"
	"testing"

	"auth-session-service/internal/security"
)

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := ClaimsFromContext(ctx); ok {
		t.Fatal("ClaimsFromContext on empty context: want false")
	}
	if _, ok := GetUserID(ctx); ok {
		t.Fatal("GetUserID on empty context: want false")
	}

	ctx = WithClaims(ctx, security.IdentityClaims("u1", []string{"admin"}, false))
	c, ok := ClaimsFromContext(ctx)
	if !ok || !c.HasRole("admin") {
		t.Fatalf("ClaimsFromContext = %v, %v", c, ok)
	}
	if id, ok := GetUserID(ctx); !ok || id != "u1" {
		t.Errorf("GetUserID = %q, %v", id, ok)
	}
}

func TestGetUserID_NoUserClaim(t *testing.T) {
	ctx := WithClaims(context.Background(), security.Claims{"custom": "x"})
	if _, ok := GetUserID(ctx); ok {
		t.Error("GetUserID without user_id claim: want false")
	}
}
