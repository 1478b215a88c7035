package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	healthhandler "auth-session-service/internal/health/handler"
)

// NewGRPCServer returns a gRPC server exposing grpc.health.v1.Health backed by
// checker. RPCs are traced through the global otel providers.
func NewGRPCServer(checker *healthhandler.Checker) *grpc.Server {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	RegisterServices(s, checker)
	return s
}

// RegisterServices registers the gRPC services with s.
func RegisterServices(s grpc.ServiceRegistrar, checker *healthhandler.Checker) {
	healthpb.RegisterHealthServer(s, healthhandler.NewGRPCServer(checker))
}
