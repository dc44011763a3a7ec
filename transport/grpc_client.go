package transport

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServingStatus is the health status reported for a service.
type ServingStatus = healthpb.HealthCheckResponse_ServingStatus

// StatusClient reads a monitor's StatusServer.
type StatusClient struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// NewStatusClient creates a client for target. The connection is established lazily.
func NewStatusClient(target string) (*StatusClient, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("status client for %s: %w", target, err)
	}
	return &StatusClient{conn: conn, health: healthpb.NewHealthClient(conn)}, nil
}

// Check returns the current status of service.
func (c *StatusClient) Check(ctx context.Context, service string) (ServingStatus, error) {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("check %s: %w", service, err)
	}
	return resp.GetStatus(), nil
}

// Watch calls fn with every status update for service until ctx is cancelled
// or the stream fails.
func (c *StatusClient) Watch(ctx context.Context, service string, fn func(ServingStatus)) error {
	stream, err := c.health.Watch(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return fmt.Errorf("watch %s: %w", service, err)
	}
	for {
		resp, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("watch %s: %w", service, err)
		}
		fn(resp.GetStatus())
	}
}

// Close closes the connection.
func (c *StatusClient) Close() error {
	return c.conn.Close()
}
