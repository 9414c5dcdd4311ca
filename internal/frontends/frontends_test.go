package frontends

import (
	"bufio"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shridharbhandiwad/radix-go/internal/coords"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

func TestFMCWSimulator_TickProducesFMCWDetections(t *testing.T) {
	sim := NewFMCWSimulator("RADAR_A", 42)
	sim.AddTarget(&SimTarget{
		TargetID: 1,
		Position: coords.ENU{X: 500, Y: 500, Z: 50},
		Velocity: coords.ENU{X: -5, Y: -5, Z: 0},
		RCSDbsm:  15,
	})

	now := time.Now()
	var dets []schema.RawDetection
	for i := 0; i < 50; i++ {
		dets = append(dets, sim.Tick(now, 0.1)...)
	}
	var real int
	for _, d := range dets {
		if !d.IsFalseAlarm {
			real++
			assert.Equal(t, schema.FormatFMCW, d.FormatTag)
			_, ok := d.Field("beat_frequency_khz")
			assert.True(t, ok)
		}
	}
	assert.Greater(t, real, 0, "expected at least one real detection across 50 ticks at 95% Pd")
}

func TestAESASimulator_BeamSteps(t *testing.T) {
	sim := NewAESASimulator("RADAR_B", 7)
	sim.AddTarget(&SimTarget{
		TargetID: 1,
		Position: coords.ENU{X: 200, Y: 200, Z: 20},
		Velocity: coords.ENU{X: 1, Y: 1, Z: 0},
		RCSDbsm:  10,
	})
	now := time.Now()
	sim.Tick(now, 0.1)
	assert.NotEqual(t, 0.0, sim.beamAzimuth)
}

func TestPulseDopplerSimulator_Info(t *testing.T) {
	sim := NewPulseDopplerSimulator("RADAR_C", 3)
	info := sim.Info()
	assert.Equal(t, "RADAR_C", info.ID)
	assert.Equal(t, "PULSE_DOPPLER", info.Type)
}

type mockSerialPort struct {
	data   *strings.Reader
	events chan string
}

func (m *mockSerialPort) Events() <-chan string { return m.events }
func (m *mockSerialPort) Close() error          { return nil }
func (m *mockSerialPort) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(m.data)
	for scan.Scan() {
		select {
		case m.events <- scan.Text():
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

func TestSerialFrontend_ParsesLineProtocol(t *testing.T) {
	lines := `{"format_tag":"FMCW","fields":{"range_m":100,"azimuth_deg":10,"elevation_deg":0,"doppler_mps":1,"snr_db":20}}
garbage-not-json
{"format_tag":"AESA","fields":{"range_m":200,"azimuth_deg":20,"elevation_deg":5,"doppler_mps":-2,"snr_db":25}}`

	port := &mockSerialPort{data: strings.NewReader(lines), events: make(chan string)}
	f := NewSerialFrontendWithPort("RADAR_SERIAL", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	dets := f.Tick(time.Now(), 0)
	assert.Len(t, dets, 2)
}
