// Package grpc runs the gRPC side of the backend: the standard health service
// the CLI probes to decide between online and offline mode.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/minutes/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall "" status.
const ServiceName = "minutes"

type GRPCServer struct {
	address       string
	logger        logging.Logger
	health        *health.Server
	ping          func(context.Context) error
	checkInterval time.Duration
}

// NewGRPCServer creates a server for address. ping reports database health
// and may be nil, in which case the server is always SERVING.
func NewGRPCServer(a string, l logging.Logger, ping func(context.Context) error, checkInterval time.Duration) *GRPCServer {
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		health:        health.NewServer(),
		ping:          ping,
		checkInterval: checkInterval,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.updateStatus(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) watch(ctx context.Context) {
	if s.ping == nil || s.checkInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.updateStatus(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// updateStatus mirrors database reachability into the health service.
func (s *GRPCServer) updateStatus(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.ping != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.ping(pctx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn(ctx, "database unreachable", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
