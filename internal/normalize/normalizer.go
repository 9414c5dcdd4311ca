// Package normalize converts vendor-shaped RawDetections into the unified
// NormalizedDetection schema (spec.md §4.2), dispatching on format tag.
package normalize

import (
	"strconv"

	"github.com/shridharbhandiwad/radix-go/internal/coords"
	"github.com/shridharbhandiwad/radix-go/internal/monitoring"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

// handlerFunc converts one RawDetection into a NormalizedDetection. It
// returns an error describing why the record cannot be built (a missing
// required field or a non-finite projection); Normalize logs the error and
// drops the record rather than propagating it, matching spec.md §4.2/§7.
type handlerFunc func(schema.RawDetection) (*schema.NormalizedDetection, error)

var dispatch = map[schema.FormatTag]handlerFunc{
	schema.FormatFMCW:         normalizeFMCW,
	schema.FormatPulseDoppler: normalizePulseDoppler,
	schema.FormatAESA:         normalizeAESA,
}

// Normalize converts a single raw detection to the unified schema. It
// returns (nil, false) iff a catastrophic error occurs (a required field is
// absent for a strict format, or projection produces a non-finite value);
// the reason is logged via monitoring.Logf, never propagated as an error to
// the caller (spec.md §4.2's "logs but does not throw").
func Normalize(raw schema.RawDetection) (*schema.NormalizedDetection, bool) {
	handler, ok := dispatch[raw.FormatTag]
	if !ok {
		handler = normalizeGeneric
	}
	det, err := handler(raw)
	if err != nil {
		monitoring.Logf("normalize: dropping detection from %s (%s): %v", raw.SensorID, raw.FormatTag, err)
		return nil, false
	}
	return det, true
}

// BatchNormalize normalizes a slice of raw detections, filtering out any
// that fail to normalize (spec.md §4.2 "batch_normalize... filters Nones").
func BatchNormalize(raws []schema.RawDetection) []schema.NormalizedDetection {
	out := make([]schema.NormalizedDetection, 0, len(raws))
	for _, raw := range raws {
		if det, ok := Normalize(raw); ok {
			out = append(out, *det)
		}
	}
	return out
}

// project builds the position/velocity ENU pair and the validated core
// measurement for the three strict formats (FMCW, PULSE_DOPPLER, AESA),
// which all share the same spherical→ENU conversion (spec.md §4.1).
func project(raw schema.RawDetection) (*schema.NormalizedDetection, error) {
	rangeM, hasRange := raw.Field("range_m")
	azDeg, hasAz := raw.Field("azimuth_deg")
	elDeg, hasEl := raw.Field("elevation_deg")
	doppler, hasDoppler := raw.Field("doppler_mps")
	snr, hasSNR := raw.Field("snr_db")
	if !hasRange || !hasAz || !hasEl || !hasDoppler || !hasSNR {
		return nil, errMissingField
	}

	rangeM = coords.ClampRange(rangeM)
	elDeg = coords.ClampElevation(elDeg)

	pos := coords.ToENU(rangeM, azDeg, elDeg)
	vel := coords.RadialVelocityENU(doppler, azDeg, elDeg)
	if !pos.Finite() || !vel.Finite() {
		return nil, errNonFinite
	}

	det := &schema.NormalizedDetection{
		Timestamp:    raw.Timestamp,
		SensorID:     raw.SensorID,
		TargetID:     raw.TargetID,
		RangeM:       rangeM,
		AzimuthDeg:   coords.WrapAzimuth(azDeg),
		ElevationDeg: ptr(elDeg),
		DopplerMps:   doppler,
		SnrDb:        snr,
		PositionENU:  &pos,
		VelocityENU:  &vel,
	}
	if rcs, ok := raw.Field("rcs_dbsm"); ok {
		det.RcsDbsm = ptr(rcs)
	}
	return det, nil
}

func normalizeFMCW(raw schema.RawDetection) (*schema.NormalizedDetection, error) {
	det, err := project(raw)
	if err != nil {
		return nil, err
	}
	if !raw.IsFalseAlarm {
		det.TrackStateHint = schema.HintTentative
	}
	det.VendorMetadata = vendorMeta(raw, "FMCW", "beat_frequency_khz", "range_resolution_m")
	return validated(det)
}

func normalizePulseDoppler(raw schema.RawDetection) (*schema.NormalizedDetection, error) {
	det, err := project(raw)
	if err != nil {
		return nil, err
	}
	if !raw.IsFalseAlarm {
		det.TrackStateHint = schema.HintTentative
	}
	det.VendorMetadata = vendorMeta(raw, "PULSE_DOPPLER",
		"doppler_freq_hz", "prf_hz", "velocity_folded", "range_ambiguity")
	return validated(det)
}

func normalizeAESA(raw schema.RawDetection) (*schema.NormalizedDetection, error) {
	det, err := project(raw)
	if err != nil {
		return nil, err
	}
	if det.SnrDb > 15 {
		det.TrackStateHint = schema.HintConfirmed
	} else {
		det.TrackStateHint = schema.HintTentative
	}
	det.VendorMetadata = vendorMeta(raw, "AESA",
		"beam_azimuth_deg", "beam_elevation_deg", "beam_gain_db", "num_elements", "angle_accuracy_deg")
	return validated(det)
}

// normalizeGeneric is the fallback handler for any unknown or unrecognized
// format_tag: missing fields default to zero rather than failing the
// record (spec.md §4.2's generic-handler row).
func normalizeGeneric(raw schema.RawDetection) (*schema.NormalizedDetection, error) {
	rangeM := coords.ClampRange(raw.FieldOr("range_m", 0))
	azDeg := coords.WrapAzimuth(raw.FieldOr("azimuth_deg", 0))
	snr := raw.FieldOr("snr_db", 0)
	doppler := raw.FieldOr("doppler_mps", 0)

	det := &schema.NormalizedDetection{
		Timestamp:      raw.Timestamp,
		SensorID:       raw.SensorID,
		TargetID:       raw.TargetID,
		RangeM:         rangeM,
		AzimuthDeg:     azDeg,
		DopplerMps:     doppler,
		SnrDb:          snr,
		VendorMetadata: map[string]string{"radar_type": "UNKNOWN"},
	}
	if rcs, ok := raw.Field("rcs_dbsm"); ok {
		det.RcsDbsm = ptr(rcs)
	}
	return validated(det)
}

func validated(det *schema.NormalizedDetection) (*schema.NormalizedDetection, error) {
	if err := det.Validate(); err != nil {
		return nil, err
	}
	return det, nil
}

func vendorMeta(raw schema.RawDetection, radarType string, keys ...string) map[string]string {
	meta := map[string]string{"radar_type": radarType}
	for _, k := range keys {
		if v, ok := raw.Field(k); ok {
			meta[k] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	return meta
}

func ptr(v float64) *float64 { return &v }

type normalizeError string

func (e normalizeError) Error() string { return string(e) }

const (
	errMissingField = normalizeError("required field missing")
	errNonFinite    = normalizeError("projection produced a non-finite value")
)
