package schema

import (
	"fmt"
	"math"
	"time"

	"github.com/shridharbhandiwad/radix-go/internal/coords"
)

// TrackStateHint is the normalizer's advisory guess at track lifecycle
// state. It is never read by the tracker's own FSM (spec.md §9 Open
// Questions resolves this explicitly) — it exists only for downstream
// consumers that want a cheap heuristic before association runs.
type TrackStateHint string

const (
	HintNone      TrackStateHint = ""
	HintTentative TrackStateHint = "TENTATIVE"
	HintConfirmed TrackStateHint = "CONFIRMED"
)

// positionToleranceFactor bounds how far ‖position_enu‖ may drift from
// range_m, scaled by range_m itself (spec.md §3).
const positionToleranceFactor = 1e-3

// NormalizedDetection is the unified measurement schema every radar format
// is converted into.
type NormalizedDetection struct {
	Timestamp  time.Time
	SensorID   string
	RangeM     float64
	AzimuthDeg float64
	DopplerMps float64
	SnrDb      float64

	// Optional fields. nil/zero-value means "not known" per spec.md §3.
	TargetID       *int
	ElevationDeg   *float64
	RcsDbsm        *float64
	TrackStateHint TrackStateHint
	PositionENU    *coords.ENU
	VelocityENU    *coords.ENU
	VendorMetadata map[string]string
}

// Validate enforces the spec.md §3 invariants on an already-built
// NormalizedDetection. It is the constructor-time post-condition the design
// notes call for; the normalizer calls it on every record it builds and
// drops (returns None-equivalent) any record that fails.
func (d *NormalizedDetection) Validate() error {
	if d.RangeM < 0 {
		return fmt.Errorf("range_m must be >= 0, got %v", d.RangeM)
	}
	if d.AzimuthDeg < 0 || d.AzimuthDeg >= 360 {
		return fmt.Errorf("azimuth_deg must be in [0, 360), got %v", d.AzimuthDeg)
	}
	if d.ElevationDeg != nil && (*d.ElevationDeg < -90 || *d.ElevationDeg > 90) {
		return fmt.Errorf("elevation_deg must be in [-90, 90], got %v", *d.ElevationDeg)
	}
	if (d.PositionENU != nil) != (d.ElevationDeg != nil) {
		return fmt.Errorf("position_enu must be present iff elevation_deg is known")
	}
	if d.PositionENU != nil {
		if !d.PositionENU.Finite() {
			return fmt.Errorf("position_enu has non-finite component")
		}
		tol := positionToleranceFactor*d.RangeM + 1e-9
		if math.Abs(d.PositionENU.Norm()-d.RangeM) > tol {
			return fmt.Errorf("‖position_enu‖=%v inconsistent with range_m=%v (tol %v)",
				d.PositionENU.Norm(), d.RangeM, tol)
		}
	}
	if d.VelocityENU != nil {
		if !d.VelocityENU.Finite() {
			return fmt.Errorf("velocity_enu has non-finite component")
		}
		if d.PositionENU != nil && d.PositionENU.Norm() > 1e-9 && d.VelocityENU.Norm() > 1e-9 {
			// Collinearity: cross product magnitude relative to the product
			// of norms must be near zero.
			cross := crossNorm(*d.PositionENU, *d.VelocityENU)
			denom := d.PositionENU.Norm() * d.VelocityENU.Norm()
			if denom > 1e-9 && cross/denom > 1e-3 {
				return fmt.Errorf("velocity_enu not collinear with position_enu")
			}
		}
	}
	return nil
}

func crossNorm(a, b coords.ENU) float64 {
	cx := a.Y*b.Z - a.Z*b.Y
	cy := a.Z*b.X - a.X*b.Z
	cz := a.X*b.Y - a.Y*b.X
	return math.Sqrt(cx*cx + cy*cy + cz*cz)
}
