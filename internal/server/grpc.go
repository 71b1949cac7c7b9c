package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthhandler "github.com/jaehkim-quant/research-platform/internal/health/handler"
)

// NewGRPCServer returns a gRPC server exposing grpc.health.v1.Health for orchestrator probes.
// Content and auth are served over HTTP only.
func NewGRPCServer(checker *healthhandler.Checker, logger *zap.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(checker, logger))
	reflection.Register(s)
	return s
}
