// Command radix runs the radar detection-normalization-and-tracking
// pipeline: synthetic or serial sensor frontends feed the orchestrator,
// which is queryable over both the httpapi pull surface and a
// grpc_health_v1 health check. Flag layout and signal-driven shutdown are
// grounded on cmd/tools/visualiser-server/main.go.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shridharbhandiwad/radix-go/internal/config"
	"github.com/shridharbhandiwad/radix-go/internal/coords"
	"github.com/shridharbhandiwad/radix-go/internal/extractor"
	"github.com/shridharbhandiwad/radix-go/internal/frontends"
	"github.com/shridharbhandiwad/radix-go/internal/httpapi"
	"github.com/shridharbhandiwad/radix-go/internal/pipeline"
	"github.com/shridharbhandiwad/radix-go/internal/streaming"
)

func main() {
	httpAddr := flag.String("http-addr", "localhost:8080", "HTTP pull-surface listen address")
	grpcAddr := flag.String("grpc-addr", "localhost:50051", "gRPC health-check listen address")
	configPath := flag.String("config", config.DefaultConfigPath, "Pipeline tuning config (JSON)")
	serialPort := flag.String("serial-port", "", "Serial port device for a live radar (optional)")
	fmcwSeed := flag.Int64("fmcw-seed", 1, "RNG seed for the synthetic FMCW sensor")
	aesaSeed := flag.Int64("aesa-seed", 2, "RNG seed for the synthetic AESA sensor")
	pdSeed := flag.Int64("pd-seed", 3, "RNG seed for the synthetic pulse-Doppler sensor")
	flag.Parse()

	cfg := config.EmptyPipelineConfig()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.LoadPipelineConfig(*configPath)
		if err != nil {
			log.Fatalf("radix: failed to load config %s: %v", *configPath, err)
		}
		cfg = loaded
	} else {
		log.Printf("radix: no config file at %s, using spec defaults", *configPath)
	}

	fronts := buildFrontends(*serialPort, *fmcwSeed, *aesaSeed, *pdSeed)

	orchCfg := pipeline.Config{
		TickInterval:    time.Duration(cfg.GetTickIntervalSeconds() * float64(time.Second)),
		RingCapacity:    cfg.GetHistoryRingCapacity(),
		AssociationDist: cfg.GetMaxAssociationDistance(),
		CoastTimeout:    time.Duration(cfg.GetMaxCoastTimeSeconds() * float64(time.Second)),
		ConfirmCount:    cfg.GetConfirmationThreshold(),
	}
	orch := pipeline.New(orchCfg, fronts)

	datasets := extractor.NewRegistry()
	api := httpapi.NewServer(orch, datasets)
	healthSrv := streaming.NewServer(orch)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, f := range fronts {
		if sf, ok := f.(*frontends.SerialFrontend); ok {
			go func() {
				if err := sf.Run(ctx); err != nil {
					log.Printf("radix: serial frontend stopped: %v", err)
				}
			}()
		}
	}

	go func() {
		if err := orch.Run(ctx); err != nil {
			log.Printf("radix: orchestrator stopped: %v", err)
		}
	}()

	httpServer := &http.Server{Addr: *httpAddr, Handler: api.Handler()}
	go func() {
		log.Printf("radix: HTTP pull surface listening on %s", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("radix: HTTP server error: %v", err)
		}
	}()

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		log.Fatalf("radix: failed to bind gRPC listener: %v", err)
	}
	go func() {
		log.Printf("radix: gRPC health surface listening on %s", *grpcAddr)
		if err := healthSrv.Serve(ctx, lis); err != nil {
			log.Printf("radix: gRPC server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("radix: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("radix: HTTP shutdown error: %v", err)
	}
	orch.Stop()
}

// buildFrontends wires the three synthetic radar simulators plus, if
// serialPort is non-empty, a real serial sensor (spec.md §1's "any
// implementation may substitute a real driver" clause).
func buildFrontends(serialPort string, fmcwSeed, aesaSeed, pdSeed int64) []frontends.Frontend {
	fmcw := frontends.NewFMCWSimulator("RADAR_FMCW", fmcwSeed)
	aesa := frontends.NewAESASimulator("RADAR_AESA", aesaSeed)
	pd := frontends.NewPulseDopplerSimulator("RADAR_PD", pdSeed)

	startPos := coords.ENU{X: 2000, Y: 2000, Z: 200}
	startVel := coords.ENU{X: -20, Y: -15, Z: 0}
	for _, sim := range []interface {
		AddTarget(*frontends.SimTarget)
	}{fmcw, aesa, pd} {
		sim.AddTarget(&frontends.SimTarget{
			TargetID: 1,
			Position: startPos,
			Velocity: startVel,
			RCSDbsm:  10,
		})
	}

	fronts := []frontends.Frontend{fmcw, aesa, pd}

	if serialPort != "" {
		serial, err := frontends.NewSerialFrontend("RADAR_SERIAL", serialPort)
		if err != nil {
			log.Printf("radix: failed to open serial port %s: %v (continuing without it)", serialPort, err)
			return fronts
		}
		fronts = append(fronts, serial)
	}

	return fronts
}
