package schema

import "time"

// TrackState is the tracker's lifecycle state for an association
// hypothesis (spec.md §4.3).
type TrackState string

const (
	TrackTentative TrackState = "TENTATIVE"
	TrackConfirmed TrackState = "CONFIRMED"
	TrackCoasting  TrackState = "COASTING"
	TrackLost      TrackState = "LOST"
)

// MaxTrackDetections bounds the retained per-track detection history
// (spec.md §3/§4.3 — a ring, not a lifetime count).
const MaxTrackDetections = 50

// Track is a single nearest-neighbor association hypothesis over time.
// TrackID is a monotone positive integer, unique within one tracker
// instance (spec.md §3 — this is an explicit departure from UUID-keyed
// tracks, see SPEC_FULL.md §3).
type Track struct {
	TrackID     int64
	SensorID    string
	FirstSeen   time.Time
	LastUpdated time.Time

	// StateVector is [x, y, z, vx, vy, vz] in the sensor-local ENU frame.
	StateVector [6]float64
	TrackState  TrackState

	// Detections is the bounded ring of the last ≤ MaxTrackDetections
	// NormalizedDetections (spec.md §3).
	Detections []NormalizedDetection

	// DetectionCount is the cumulative lifetime detection count, which
	// governs the CONFIRMED threshold independently of how many detections
	// the ring above still retains (spec.md §9 Open Questions).
	DetectionCount int
}

// PositionENU returns the track's current position as an ENU triple.
func (t *Track) PositionENU() [3]float64 {
	return [3]float64{t.StateVector[0], t.StateVector[1], t.StateVector[2]}
}

// VelocityENU returns the track's current velocity as an ENU triple.
func (t *Track) VelocityENU() [3]float64 {
	return [3]float64{t.StateVector[3], t.StateVector[4], t.StateVector[5]}
}

// AppendDetection pushes a new detection onto the track's bounded ring,
// dropping the oldest entry once the ring exceeds MaxTrackDetections.
func (t *Track) AppendDetection(d NormalizedDetection) {
	t.Detections = append(t.Detections, d)
	if len(t.Detections) > MaxTrackDetections {
		t.Detections = t.Detections[len(t.Detections)-MaxTrackDetections:]
	}
	t.DetectionCount++
}

// Validate enforces the spec.md §3 track invariants.
func (t *Track) Validate() error {
	if t.FirstSeen.After(t.LastUpdated) {
		return errTrackInvariant("first_seen must be <= last_updated")
	}
	if len(t.Detections) < 1 {
		return errTrackInvariant("a track must retain at least one detection")
	}
	if t.TrackState == TrackConfirmed && t.DetectionCount < 3 {
		return errTrackInvariant("CONFIRMED requires cumulative detection count >= 3")
	}
	return nil
}

type trackInvariantError string

func (e trackInvariantError) Error() string { return string(e) }

func errTrackInvariant(msg string) error { return trackInvariantError(msg) }
