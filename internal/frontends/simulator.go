// Package frontends supplies sensor-frontend implementations: synthetic
// per-vendor target simulators and a real serial-port driver. Both satisfy
// the Frontend interface the core pipeline consumes; spec.md §1 treats
// sensor frontends as an external collaborator and only requires that a
// synthetic generator exist for testing — this package is that generator,
// ported from original_source/radix/simulators/{base,fmcw,aesa,
// pulse_doppler}_simulator.py.
package frontends

import (
	"math"
	"math/rand"
	"time"

	"github.com/shridharbhandiwad/radix-go/internal/coords"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

// SensorInfo describes a frontend for the list_sensors query (spec.md §6).
type SensorInfo struct {
	ID       string
	Type     string
	Location [3]float64
	Enabled  bool
}

// Frontend produces raw detections once per orchestrator tick.
type Frontend interface {
	Info() SensorInfo
	Tick(now time.Time, dt float64) []schema.RawDetection
}

// SimTarget is a simulated moving target, ported from simulators/base.py's
// Target class. Position/velocity are sensor-local ENU.
type SimTarget struct {
	TargetID int
	Position coords.ENU
	Velocity coords.ENU
	RCSDbsm  float64
}

// Advance moves the target by dt seconds, bouncing off a ±10km bounding box
// the way the Python simulator's Target.update does.
func (tgt *SimTarget) Advance(dt float64) {
	tgt.Position.X += tgt.Velocity.X * dt
	tgt.Position.Y += tgt.Velocity.Y * dt
	tgt.Position.Z += tgt.Velocity.Z * dt

	bounce := func(pos, vel *float64) {
		if math.Abs(*pos) > 10000 {
			*vel = -*vel
			if *pos > 10000 {
				*pos = 10000
			} else if *pos < -10000 {
				*pos = -10000
			}
		}
	}
	bounce(&tgt.Position.X, &tgt.Velocity.X)
	bounce(&tgt.Position.Y, &tgt.Velocity.Y)
	bounce(&tgt.Position.Z, &tgt.Velocity.Z)
}

// rangeAzimuthElevation reports the target's spherical coordinates relative
// to a sensor at the ENU origin.
func (tgt *SimTarget) rangeAzimuthElevation() (rangeM, azimuthDeg, elevationDeg float64) {
	return coords.FromENU(tgt.Position)
}

// doppler reports the radial (line-of-sight) velocity relative to a sensor
// at the ENU origin.
func (tgt *SimTarget) doppler() float64 {
	rangeM := tgt.Position.Norm()
	if rangeM < 1e-9 {
		return 0
	}
	return (tgt.Velocity.X*tgt.Position.X + tgt.Velocity.Y*tgt.Position.Y + tgt.Velocity.Z*tgt.Position.Z) / rangeM
}

// baseSimulator holds the noise/detection parameters and target list shared
// by every vendor-specific simulator (simulators/base.py's RadarSimulator).
type baseSimulator struct {
	sensorID             string
	targets              []*SimTarget
	detectionProbability float64
	falseAlarmRate       float64
	rangeNoiseStd        float64
	angleNoiseStd        float64
	dopplerNoiseStd      float64
	rng                  *rand.Rand
}

func newBaseSimulator(sensorID string, seed int64) baseSimulator {
	return baseSimulator{
		sensorID:             sensorID,
		detectionProbability: 0.95,
		falseAlarmRate:       0.01,
		rangeNoiseStd:        5.0,
		angleNoiseStd:        0.5,
		dopplerNoiseStd:      0.5,
		rng:                  rand.New(rand.NewSource(seed)),
	}
}

// AddTarget registers a target with this simulator.
func (s *baseSimulator) AddTarget(t *SimTarget) {
	s.targets = append(s.targets, t)
}

func (s *baseSimulator) advanceTargets(dt float64) {
	for _, t := range s.targets {
		t.Advance(dt)
	}
}

// calculateSNR mirrors the Python simplified radar-equation SNR model.
func (s *baseSimulator) calculateSNR(rangeM, rcs float64) float64 {
	const baseSNR = 30.0
	rangeLoss := 40 * math.Log10(rangeM/1000.0)
	snr := baseSNR - rangeLoss + rcs + s.rng.NormFloat64()*2.0
	if snr < -10.0 {
		return -10.0
	}
	return snr
}

func (s *baseSimulator) shouldDetect(snrDb float64) bool {
	var prob float64
	switch {
	case snrDb > 13:
		prob = s.detectionProbability
	case snrDb > 5:
		prob = 0.7
	case snrDb > 0:
		prob = 0.3
	default:
		prob = 0.1
	}
	return s.rng.Float64() < prob
}

func (s *baseSimulator) noise(std float64) float64 {
	return s.rng.NormFloat64() * std
}

func (s *baseSimulator) falseAlarm(now time.Time, formatTag schema.FormatTag) schema.RawDetection {
	return schema.RawDetection{
		Timestamp: now,
		SensorID:  s.sensorID,
		FormatTag: formatTag,
		Fields: map[string]float64{
			"range_m":      100 + s.rng.Float64()*9900,
			"azimuth_deg":  s.rng.Float64() * 360,
			"elevation_deg": -10 + s.rng.Float64()*55,
			"doppler_mps":  -50 + s.rng.Float64()*100,
			"snr_db":       s.rng.Float64() * 8,
		},
		IsFalseAlarm: true,
	}
}

func (s *baseSimulator) poissonFalseAlarms(now time.Time, formatTag schema.FormatTag) []schema.RawDetection {
	lambda := s.falseAlarmRate * 100
	n := poisson(s.rng, lambda)
	out := make([]schema.RawDetection, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.falseAlarm(now, formatTag))
	}
	return out
}

// poisson draws from a Poisson(lambda) distribution via Knuth's algorithm.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			return k - 1
		}
	}
}

// inCoverage reports whether a target at rangeM is within this sensor's
// detection envelope (50m-10km, matching the Python simulator).
func inCoverage(rangeM float64) bool {
	return rangeM > 50 && rangeM < 10000
}
