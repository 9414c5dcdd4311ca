package frontends

import (
	"time"

	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

// FMCWSimulator generates FMCW-format detections, ported from
// simulators/fmcw_simulator.py.
type FMCWSimulator struct {
	baseSimulator
	BandwidthMHz float64
	ChirpTimeUs  float64
	rangeResM    float64
}

// NewFMCWSimulator builds an FMCW frontend with the Python defaults
// (4000 MHz bandwidth, 50 us chirp).
func NewFMCWSimulator(sensorID string, seed int64) *FMCWSimulator {
	s := &FMCWSimulator{
		baseSimulator: newBaseSimulator(sensorID, seed),
		BandwidthMHz:  4000,
		ChirpTimeUs:   50,
	}
	s.rangeResM = 3e8 / (2 * s.BandwidthMHz * 1e6)
	return s
}

func (s *FMCWSimulator) Info() SensorInfo {
	return SensorInfo{ID: s.sensorID, Type: "FMCW", Location: [3]float64{0, 0, 0}, Enabled: true}
}

func (s *FMCWSimulator) Tick(now time.Time, dt float64) []schema.RawDetection {
	s.advanceTargets(dt)
	out := s.poissonFalseAlarms(now, schema.FormatFMCW)

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
		elDeg += s.noise(s.angleNoiseStd)
		doppler := tgt.doppler() + s.noise(s.dopplerNoiseStd)
		if rangeM < 0 {
			rangeM = 0
		}

		beatFreqKHz := (2 * s.BandwidthMHz * 1e6 * rangeM) / (3e8 * s.ChirpTimeUs * 1e-6) / 1000

		id := tgt.TargetID
		out = append(out, schema.RawDetection{
			Timestamp: now,
			SensorID:  s.sensorID,
			FormatTag: schema.FormatFMCW,
			TargetID:  &id,
			Fields: map[string]float64{
				"range_m":              rangeM,
				"azimuth_deg":          azDeg,
				"elevation_deg":        elDeg,
				"doppler_mps":          doppler,
				"snr_db":               snr,
				"rcs_dbsm":             tgt.RCSDbsm,
				"beat_frequency_khz":   beatFreqKHz,
				"range_resolution_m":   s.rangeResM,
			},
		})
	}
	return out
}
