// Package handler reports liveness and readiness over HTTP and the standard
// grpc.health.v1 service.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const checkTimeout = 2 * time.Second

// Pinger checks the database connection (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the role policy engine evaluates (e.g. *rbac.OPAEvaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Checker runs the readiness checks. Nil dependencies are skipped.
type Checker struct {
	pinger Pinger
	policy PolicyChecker
	logger *slog.Logger
}

// NewChecker returns a Checker. pinger is nil when running on in-memory stores.
func NewChecker(pinger Pinger, policy PolicyChecker, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{pinger: pinger, policy: policy, logger: logger}
}

// Ready returns nil when every configured dependency responds.
func (c *Checker) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if c.pinger != nil {
		if err := c.pinger.PingContext(ctx); err != nil {
			c.logger.WarnContext(ctx, "readiness: database ping failed", "error", err)
			return fmt.Errorf("database: %w", err)
		}
	}
	if c.policy != nil {
		if err := c.policy.HealthCheck(ctx); err != nil {
			c.logger.WarnContext(ctx, "readiness: policy check failed", "error", err)
			return fmt.Errorf("policy: %w", err)
		}
	}
	return nil
}

// GRPCServer implements grpc.health.v1.Health using the Checker. Only the
// overall service ("") is known.
type GRPCServer struct {
	healthpb.UnimplementedHealthServer
	checker *Checker
}

// NewGRPCServer returns a health server backed by checker.
func NewGRPCServer(checker *Checker) *GRPCServer {
	return &GRPCServer{checker: checker}
}

// Check reports SERVING when the checker is ready and NOT_SERVING otherwise.
func (s *GRPCServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if req.GetService() != "" {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	if err := s.checker.Ready(ctx); err != nil {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
