package server

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the name probes ask about; the empty name covers the
// whole server.
const HealthService = "storefront"

// RunGRPC starts a gRPC server exposing the standard health service. Status
// starts as NOT_SERVING; callers flip it once state is loaded.
func RunGRPC(log *slog.Logger, addr string) (*grpc.Server, *health.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	go func() {
		log.Info("grpc listening", "addr", addr)
		if err := gs.Serve(lis); err != nil {
			log.Error("grpc server error", "err", err)
		}
	}()
	return gs, hs, nil
}

func SetServing(hs *health.Server, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(HealthService, status)
}
