package server

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/matcha-app/matcha-core/internal/config"
)

// StartGRPCServer boots a gRPC server and registers all provided services.
// The core itself only contributes health and reflection; the transport
// layer attaches its endpoint services through Registrars.
func StartGRPCServer(cfg *config.Config, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	// liveness probing for deployments
	healthpb.RegisterHealthServer(grpcServer, health.NewServer())

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return grpcServer.Serve(lis)
}
