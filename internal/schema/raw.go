// Package schema defines the unified data model shared across the
// normalizer, tracker, and extractor: RawDetection (inbound, vendor-shaped),
// NormalizedDetection (unified measurement), Track (association hypothesis),
// and DatasetDescriptor (ML dataset metadata handle).
//
// RawDetection re-expresses the source's duck-typed payload as a flat
// numeric map read through two generic accessors, Field and FieldOr. There
// are no per-format typed accessors and no separate variant for
// unrecognized vendors; every format uses the same map.
package schema

import "time"

// FormatTag identifies the vendor/waveform family a RawDetection came from.
type FormatTag string

const (
	FormatFMCW          FormatTag = "FMCW"
	FormatPulseDoppler  FormatTag = "PULSE_DOPPLER"
	FormatAESA          FormatTag = "AESA"
	FormatISAR          FormatTag = "ISAR"
	FormatCW            FormatTag = "CW"
	FormatUnknown       FormatTag = "unknown"
)

// RawDetection is the inbound unit produced by a sensor frontend: a
// timestamp, an originating sensor, a format tag selecting a normalizer
// handler, and a free-form numeric field map carrying vendor-specific
// quantities. Consumed exactly once by the normalizer, then discarded.
type RawDetection struct {
	Timestamp time.Time
	SensorID  string
	FormatTag FormatTag

	// Fields carries vendor-specific numeric quantities (range_m,
	// azimuth_deg, beat_frequency_khz, num_elements, ...). Keys match the
	// columns in spec.md §4.2's per-format table.
	Fields map[string]float64

	// IsFalseAlarm, when true, suppresses the TENTATIVE track-state hint
	// for FMCW/PULSE_DOPPLER detections (spec.md §4.2).
	IsFalseAlarm bool

	// TargetID is present only for synthetic/ground-truth generators.
	TargetID *int
}

// Field returns the named numeric field, or (0, false) if absent.
func (r RawDetection) Field(name string) (float64, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// FieldOr returns the named numeric field, or def if absent — used by the
// generic fallback handler, where a missing field is reported as 0 rather
// than rejecting the record (spec.md §4.2).
func (r RawDetection) FieldOr(name string, def float64) float64 {
	if v, ok := r.Fields[name]; ok {
		return v
	}
	return def
}
