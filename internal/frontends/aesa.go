package frontends

import (
	"math"
	"time"

	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

// AESASimulator generates AESA-format detections, ported from
// simulators/aesa_simulator.py, including electronic beam steering and a
// Gaussian beam-gain model.
type AESASimulator struct {
	baseSimulator
	Elements             int
	BeamWidthDeg         float64
	scanAzimuthMin       float64
	scanAzimuthMax       float64
	scanElevationMin     float64
	scanElevationMax     float64
	beamAzimuth          float64
	beamElevation        float64
}

// NewAESASimulator builds an AESA frontend with the Python defaults
// (1024 elements, 2 deg beamwidth, ±60 az / ±45 el scan limits).
func NewAESASimulator(sensorID string, seed int64) *AESASimulator {
	return &AESASimulator{
		baseSimulator:    newBaseSimulator(sensorID, seed),
		Elements:         1024,
		BeamWidthDeg:     2.0,
		scanAzimuthMin:   -60,
		scanAzimuthMax:   60,
		scanElevationMin: -45,
		scanElevationMax: 45,
	}
}

func (s *AESASimulator) Info() SensorInfo {
	return SensorInfo{ID: s.sensorID, Type: "AESA", Location: [3]float64{0, 0, 0}, Enabled: true}
}

func (s *AESASimulator) beamGain(targetAz, targetEl float64) float64 {
	azDiff := math.Abs(targetAz - s.beamAzimuth)
	elDiff := math.Abs(targetEl - s.beamElevation)
	gain := -12 * (math.Pow(azDiff/s.BeamWidthDeg, 2) + math.Pow(elDiff/s.BeamWidthDeg, 2))
	if gain < -40 {
		return -40
	}
	return gain
}

func (s *AESASimulator) Tick(now time.Time, dt float64) []schema.RawDetection {
	s.advanceTargets(dt)
	out := s.poissonFalseAlarms(now, schema.FormatAESA)

	for _, tgt := range s.targets {
		rangeM, azDeg, elDeg := tgt.rangeAzimuthElevation()
		if !inCoverage(rangeM) {
			continue
		}
		beamGainDb := s.beamGain(azDeg, elDeg)
		snr := s.calculateSNR(rangeM, tgt.RCSDbsm) + beamGainDb
		if !s.shouldDetect(snr) {
			s.stepBeam()
			continue
		}
		rangeM += s.noise(s.rangeNoiseStd * 0.5)
		azDeg += s.noise(s.angleNoiseStd * 0.3)
		elDeg += s.noise(s.angleNoiseStd * 0.3)
		doppler := tgt.doppler() + s.noise(s.dopplerNoiseStd*0.5)
		if rangeM < 0 {
			rangeM = 0
		}

		id := tgt.TargetID
		out = append(out, schema.RawDetection{
			Timestamp: now,
			SensorID:  s.sensorID,
			FormatTag: schema.FormatAESA,
			TargetID:  &id,
			Fields: map[string]float64{
				"range_m":            rangeM,
				"azimuth_deg":        azDeg,
				"elevation_deg":      elDeg,
				"doppler_mps":        doppler,
				"snr_db":             snr,
				"rcs_dbsm":           tgt.RCSDbsm,
				"beam_azimuth_deg":   s.beamAzimuth,
				"beam_elevation_deg": s.beamElevation,
				"beam_gain_db":       beamGainDb,
				"num_elements":       float64(s.Elements),
				"angle_accuracy_deg": s.angleNoiseStd * 0.3,
			},
		})
		s.stepBeam()
	}
	return out
}

// stepBeam advances the beam through a simple repeating azimuth scan.
func (s *AESASimulator) stepBeam() {
	s.beamAzimuth += 5
	if s.beamAzimuth > s.scanAzimuthMax {
		s.beamAzimuth = s.scanAzimuthMin
	}
}
