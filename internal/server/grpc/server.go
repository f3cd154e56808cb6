// Package grpc serves the standard grpc.health.v1 service on its own
// listener so orchestrators can probe the process without HTTP.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/filevault/internal/logging"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "filevault"

const defaultCheckInterval = 10 * time.Second

// Check probes one dependency. A non-nil error marks the service as not
// serving until the next successful round.
type Check func(ctx context.Context) error

type HealthServer struct {
	address  string
	logger   logging.Logger
	health   *health.Server
	checks   map[string]Check
	interval time.Duration
}

func NewHealthServer(address string, l logging.Logger, checks map[string]Check) *HealthServer {
	return &HealthServer{
		address:  address,
		logger:   l.With("module", "grpc_health"),
		health:   health.NewServer(),
		checks:   checks,
		interval: defaultCheckInterval,
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve runs the health service on lis until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC health server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-ticker.C:
				s.probe(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

// probe runs every check and publishes the combined status.
func (s *HealthServer) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range s.checks {
		cctx, cancel := context.WithTimeout(ctx, s.interval)
		err := check(cctx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn(ctx, "health check failed", "check", name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
