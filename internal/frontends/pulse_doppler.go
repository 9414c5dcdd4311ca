package frontends

import (
	"math"
	"time"

	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

// PulseDopplerSimulator generates PULSE_DOPPLER-format detections, ported
// from simulators/pulse_doppler_simulator.py.
type PulseDopplerSimulator struct {
	baseSimulator
	FrequencyGHz           float64
	PRFHz                  float64
	wavelengthM            float64
	maxUnambiguousRange    float64
	maxUnambiguousVelocity float64
}

// NewPulseDopplerSimulator builds a pulse-Doppler frontend with the Python
// defaults (10 GHz, 10 kHz PRF).
func NewPulseDopplerSimulator(sensorID string, seed int64) *PulseDopplerSimulator {
	s := &PulseDopplerSimulator{
		baseSimulator: newBaseSimulator(sensorID, seed),
		FrequencyGHz:  10,
		PRFHz:         10000,
	}
	s.wavelengthM = 3e8 / (s.FrequencyGHz * 1e9)
	s.maxUnambiguousRange = 3e8 / (2 * s.PRFHz)
	s.maxUnambiguousVelocity = (s.wavelengthM * s.PRFHz) / 4
	return s
}

func (s *PulseDopplerSimulator) Info() SensorInfo {
	return SensorInfo{ID: s.sensorID, Type: "PULSE_DOPPLER", Location: [3]float64{0, 0, 0}, Enabled: true}
}

func (s *PulseDopplerSimulator) Tick(now time.Time, dt float64) []schema.RawDetection {
	s.advanceTargets(dt)
	out := s.poissonFalseAlarms(now, schema.FormatPulseDoppler)

	for _, tgt := range s.targets {
		rangeM, azDeg, elDeg := tgt.rangeAzimuthElevation()
		if !inCoverage(rangeM) {
			continue
		}
		snr := s.calculateSNR(rangeM, tgt.RCSDbsm)
		if !s.shouldDetect(snr) {
			continue
		}
		rangeM += s.noise(s.rangeNoiseStd)
		azDeg += s.noise(s.angleNoiseStd)
		elDeg += s.noise(s.angleNoiseStd * 1.5)
		doppler := tgt.doppler() + s.noise(s.dopplerNoiseStd)
		if rangeM < 0 {
			rangeM = 0
		}

		dopplerFreqHz := 2 * doppler / s.wavelengthM
		rangeAmbiguity := math.Trunc(rangeM / s.maxUnambiguousRange)
		velocityFolded := math.Mod(doppler, 2*s.maxUnambiguousVelocity) - s.maxUnambiguousVelocity

		id := tgt.TargetID
		out = append(out, schema.RawDetection{
			Timestamp: now,
			SensorID:  s.sensorID,
			FormatTag: schema.FormatPulseDoppler,
			TargetID:  &id,
			Fields: map[string]float64{
				"range_m":          rangeM,
				"azimuth_deg":      azDeg,
				"elevation_deg":    elDeg,
				"doppler_mps":      doppler,
				"doppler_freq_hz":  dopplerFreqHz,
				"velocity_folded":  velocityFolded,
				"snr_db":           snr,
				"rcs_dbsm":         tgt.RCSDbsm,
				"prf_hz":           s.PRFHz,
				"range_ambiguity":  rangeAmbiguity,
			},
		})
	}
	return out
}
