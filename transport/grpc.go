package transport

import (
	"fmt"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/adamgarcia4/goLearning/standby/failover"
)

// Health service names published by the monitor.
const (
	// LivenessService is SERVING while the monitor is HEALTHY and NOT_SERVING while ARMED.
	LivenessService = "failover.liveness"
	// StandbyService turns SERVING once the standby has been promoted.
	StandbyService = "failover.standby"
)

// StatusServer publishes the monitor's state over the standard gRPC health
// protocol. It implements failover.Observer.
type StatusServer struct {
	addr   string
	srv    *grpc.Server
	lis    net.Listener
	health *health.Server
	logger failover.Logger
}

var _ failover.Observer = (*StatusServer)(nil)

// NewStatusServer creates a status server for addr ("host:port").
func NewStatusServer(addr string, opts ...Option) (*StatusServer, error) {
	if addr == "" || !strings.Contains(addr, ":") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	o := buildOptions(opts)

	hs := health.NewServer()
	hs.SetServingStatus(LivenessService, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(StandbyService, healthpb.HealthCheckResponse_NOT_SERVING)

	return &StatusServer{
		addr:   addr,
		srv:    grpc.NewServer(),
		health: hs,
		logger: o.logger,
	}, nil
}

func (g *StatusServer) setupTcp() (net.Listener, error) {
	lis, err := net.Listen("tcp", g.addr)
	if err != nil {
		return nil, fmt.Errorf("%w to status address %s: %v", ErrBind, g.addr, err)
	}
	return lis, nil
}

func (g *StatusServer) setupServices() {
	healthpb.RegisterHealthServer(g.srv, g.health)
	// reflection lets grpcurl and grpc-health-probe discover the services
	reflection.Register(g.srv)
}

// Start binds synchronously and serves in a background goroutine.
func (g *StatusServer) Start() error {
	lis, err := g.setupTcp()
	if err != nil {
		return err
	}
	g.lis = lis
	g.setupServices()

	g.logger.Infof("status server listening on %s", lis.Addr())
	go func() {
		if err := g.srv.Serve(lis); err != nil {
			g.logger.Errorf("status server stopped: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (g *StatusServer) Addr() string {
	if g.lis != nil {
		return g.lis.Addr().String()
	}
	return g.addr
}

// stopTimeout bounds GracefulStop; open Watch streams would otherwise hold it.
const stopTimeout = 2 * time.Second

// Stop marks every service NOT_SERVING and drains in-flight RPCs, closing
// whatever is still open after stopTimeout.
func (g *StatusServer) Stop() error {
	g.health.Shutdown()

	done := make(chan struct{})
	go func() {
		g.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		g.logger.Warnf("status server did not drain in %v, closing", stopTimeout)
		g.srv.Stop()
		<-done
	}
	return nil
}

// StateChanged mirrors the monitor state onto LivenessService.
func (g *StatusServer) StateChanged(state failover.State) {
	status := healthpb.HealthCheckResponse_SERVING
	if state == failover.StateArmed {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus(LivenessService, status)
}

// Promoted marks StandbyService SERVING.
func (g *StatusServer) Promoted(start uint64, reason failover.PromotionReason) {
	g.logger.Debugf("publishing promotion from count %d (%s)", start, reason)
	g.health.SetServingStatus(StandbyService, healthpb.HealthCheckResponse_SERVING)
}
