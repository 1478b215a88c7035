// Package rbac authorizes authenticated requests by role. It runs after
// interceptors.Authenticate and reads only the claims that step stored.
package rbac

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// RoleEvaluator decides whether a set of held roles satisfies a required role.
type RoleEvaluator interface {
	Allowed(ctx context.Context, roles []string, required string) (bool, error)
}

const rolePolicy = `package authsvc.rbac

default allow := false

allow if {
	input.required_role in input.roles
}
`

const allowQuery = "data.authsvc.rbac.allow"

// OPAEvaluator evaluates role membership with a prepared Rego query.
// It is safe for concurrent use.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the role policy. It fails only if the embedded policy does not compile.
func NewOPAEvaluator(ctx context.Context) (*OPAEvaluator, error) {
	pq, err := rego.New(
		rego.Query(allowQuery),
		rego.Module("rbac.rego", rolePolicy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare role policy: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// Allowed reports whether required is among roles.
func (e *OPAEvaluator) Allowed(ctx context.Context, roles []string, required string) (bool, error) {
	held := make([]any, len(roles))
	for i, r := range roles {
		held[i] = r
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]any{
		"roles":         held,
		"required_role": required,
	}))
	if err != nil {
		return false, fmt.Errorf("eval role policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, _ := rs[0].Expressions[0].Value.(bool)
	return allowed, nil
}

// HealthCheck evaluates the policy once against a fixed input.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	ok, err := e.Allowed(ctx, []string{"probe"}, "probe")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("role policy denied probe input")
	}
	return nil
}
