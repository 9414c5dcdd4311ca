package schema

import "time"

// DatasetFormat selects the ML projection an exported dataset carries.
type DatasetFormat string

const (
	DatasetTabular  DatasetFormat = "tabular"
	DatasetSequence DatasetFormat = "sequence"
	DatasetGraph    DatasetFormat = "graph"
)

// DatasetDescriptor is the immutable metadata handle for a registered ML
// dataset. Samples themselves are not persisted here (spec.md §1 Non-goals —
// dataset persistence to disk is explicitly out of scope; exports are
// returned in-memory by the extractor at read time).
type DatasetDescriptor struct {
	DatasetID   string
	Name        string
	Description string
	CreatedAt   time.Time
	SensorIDs   []string
	StartTime   time.Time
	EndTime     time.Time
	NumSamples  int
	Format      DatasetFormat
	Metadata    map[string]interface{}
}
