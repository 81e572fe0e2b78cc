package server

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

// GRPCServer exposes the standard gRPC health service for orchestrators
// that probe over gRPC instead of HTTP.
type GRPCServer struct {
	address string
	server  *grpc.Server
	health  *health.Server
	logger  *logger.Logger
}

func NewGRPCServer(address string, log *logger.Logger) *GRPCServer {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return &GRPCServer{
		address: address,
		server:  grpcServer,
		health:  healthServer,
		logger:  log,
	}
}

func (s *GRPCServer) Run() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", s.address, err)
	}

	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.logger.Info().Str("func", "*GRPCServer.Run").Str("addr", s.address).Msg("grpc health server listening")

	return s.server.Serve(listener)
}

func (s *GRPCServer) Shutdown() {
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	s.server.GracefulStop()
}
