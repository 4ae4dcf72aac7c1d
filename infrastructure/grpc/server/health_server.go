package server

import (
	"errors"
	"log/slog"
	"net"
	"time"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CoordinatorService is the name probes can ask for besides the empty one.
const CoordinatorService = "sourcesync.RoomCoordinator"

// HealthServer exposes grpc.health.v1 so orchestrators can probe the process.
type HealthServer struct {
	log    *slog.Logger
	server *grpc.Server
	health *health.Server
}

func NewHealthServer(log *slog.Logger) *HealthServer {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(log),
		))
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	return &HealthServer{log: log, server: s, health: h}
}

// Serve reports SERVING and blocks until Stop.
func (s *HealthServer) Serve(listener net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(CoordinatorService, healthpb.HealthCheckResponse_SERVING)

	s.log.Info("Starting gRPC health server", "address", listener.Addr().String(), "at", time.Now().UTC())
	for serviceName := range s.server.GetServiceInfo() {
		s.log.Debug("gRPC exposed services", "name", serviceName)
	}
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Drain flips every service to NOT_SERVING. Later updates are ignored.
func (s *HealthServer) Drain() {
	s.health.Shutdown()
}

func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
