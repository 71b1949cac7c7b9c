package handler

import (
	"context"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server implements grpc.health.v1.Health for orchestrator probes.
type Server struct {
	healthpb.UnimplementedHealthServer
	checker *Checker
	logger  *zap.Logger
}

// NewServer returns a health server backed by checker.
func NewServer(checker *Checker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{checker: checker, logger: logger}
}

// Check reports SERVING when every dependency check passes, NOT_SERVING otherwise.
// The service name is ignored: the process has a single readiness state.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if err := s.checker.Check(ctx); err != nil {
		s.logger.Warn("health: not serving", zap.Error(err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
