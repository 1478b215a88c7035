package rbac

import (
	"context"
	"testing"
)

func TestOPAEvaluator_Allowed(t *testing.T) {
	ctx := context.Background()
	e, err := NewOPAEvaluator(ctx)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	testCases := []struct {
		name     string
		roles    []string
		required string
		want     bool
	}{
		{"held", []string{"editor", "admin"}, "admin", true},
		{"not held", []string{"editor"}, "admin", false},
		{"no roles", nil, "admin", false},
		{"case sensitive", []string{"Admin"}, "admin", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Allowed(ctx, tc.roles, tc.required)
			if err != nil {
				t.Fatalf("Allowed: %v", err)
			}
			if got != tc.want {
				t.Errorf("Allowed(%v, %q) = %v, want %v", tc.roles, tc.required, got, tc.want)
			}
		})
	}
	if err := e.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}
