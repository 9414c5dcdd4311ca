// Package streaming exposes the pipeline over gRPC using the standard
// grpc_health_v1 health-checking service (spec.md §6 "Streaming surface").
// A bespoke frame-streaming RPC would need protoc-generated stubs, which the
// toolchain here cannot produce; google.golang.org/grpc/health is a real
// third-party service already shipped by the grpc-go module the teacher
// depends on (see internal/lidar/visualiser/grpc_server.go's use of
// google.golang.org/grpc), so the gRPC surface is grounded on that same
// dependency without inventing generated code. Serving status is refreshed
// periodically from the orchestrator's Status query.
package streaming

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/shridharbhandiwad/radix-go/internal/pipeline"
)

// serviceName is the health-checked service identity clients query for.
const serviceName = "radix.pipeline"

// Server wraps a *grpc.Server exposing grpc_health_v1, with serving status
// polled from an Orchestrator.
type Server struct {
	grpcServer  *grpc.Server
	healthSrv   *health.Server
	orch        *pipeline.Orchestrator
	pollEvery   time.Duration
	stopPolling chan struct{}
}

// NewServer builds a streaming.Server bound to orch. Health starts
// NOT_SERVING until the first poll observes a running orchestrator.
func NewServer(orch *pipeline.Orchestrator) *Server {
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)

	return &Server{
		grpcServer: grpcServer,
		healthSrv:  healthSrv,
		orch:       orch,
		pollEvery:  1 * time.Second,
	}
}

// SetPollInterval overrides the health-poll cadence; tests use a short one.
func (s *Server) SetPollInterval(d time.Duration) {
	s.pollEvery = d
}

// Serve blocks, accepting connections on lis and polling orchestrator health
// until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.stopPolling = make(chan struct{})
	go s.pollHealth(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	select {
	case <-ctx.Done():
		close(s.stopPolling)
		s.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		close(s.stopPolling)
		return err
	}
}

func (s *Server) pollHealth(ctx context.Context) {
	ticker := time.NewTicker(s.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopPolling:
			return
		case <-ticker.C:
			s.refreshStatus()
		}
	}
}

// refreshStatus sets SERVING whenever the orchestrator has processed at
// least one tick, matching spec.md's "healthy once the pipeline is live"
// semantics. Tests in this package call it directly to poll synchronously.
func (s *Server) refreshStatus() {
	status := s.orch.Status()
	if status.ActiveRadars > 0 || status.TotalDetections > 0 {
		s.healthSrv.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	} else {
		s.healthSrv.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
}

// GRPCServer exposes the underlying *grpc.Server for registration of
// additional services by callers (e.g. reflection in dev builds).
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// Stop gracefully shuts the gRPC server down outside of Serve's ctx-driven
// path (used by callers that manage their own lifecycle, e.g. tests).
func (s *Server) Stop() {
	s.grpcServer.Stop()
}
