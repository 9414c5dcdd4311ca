package streaming

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/shridharbhandiwad/radix-go/internal/frontends"
	"github.com/shridharbhandiwad/radix-go/internal/pipeline"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

type stubFrontend struct {
	info frontends.SensorInfo
}

func (s *stubFrontend) Info() frontends.SensorInfo { return s.info }
func (s *stubFrontend) Tick(now time.Time, dt float64) []schema.RawDetection {
	return nil
}

func TestServer_HealthNotServingBeforeFirstTick(t *testing.T) {
	front := &stubFrontend{info: frontends.SensorInfo{ID: "RADAR_A"}}
	orch := pipeline.New(pipeline.DefaultConfig(), []frontends.Frontend{front})

	srv := NewServer(orch)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx, lis)
	defer srv.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := grpc_health_v1.NewHealthClient(conn)

	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)

	srv.refreshStatus()

	resp, err = client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status, "no ticks processed yet")
}

func TestServer_HealthServingAfterOrchestratorActivity(t *testing.T) {
	front := &stubFrontend{info: frontends.SensorInfo{ID: "RADAR_A"}}
	orch := pipeline.New(pipeline.DefaultConfig(), []frontends.Frontend{front})
	orch.Tick()

	srv := NewServer(orch)
	srv.refreshStatus()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx, lis)
	defer srv.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := grpc_health_v1.NewHealthClient(conn)

	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}
