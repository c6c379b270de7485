// Package health checks whether the Minutes backend is reachable through the
// standard gRPC health service.
package health

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var ErrNotServing = errors.New("server not serving")

type Prober struct {
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
	service string
}

// NewProber creates a lazily connecting prober for addr. service is the
// health service name; "" asks about the server as a whole.
func NewProber(addr, service string) (*Prober, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Prober{conn: conn, client: healthpb.NewHealthClient(conn), service: service}, nil
}

// Ping returns nil when the server reports SERVING.
func (p *Prober) Ping(ctx context.Context) error {
	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{Service: p.service})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", ErrNotServing, resp.GetStatus())
	}
	return nil
}

func (p *Prober) Close() error {
	return p.conn.Close()
}
