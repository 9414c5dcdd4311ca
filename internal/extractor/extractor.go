// Package extractor projects normalized detections and tracks into
// ML-ready datasets: flat tabular rows, sliding-window sequences, and
// proximity graphs (spec.md §4.4), grounded on original_source's
// radix/core/extractor.py. Per-track statistics reuse
// gonum.org/v1/gonum/stat, the same library the teacher's internal/db
// package imports for rollup statistics.
package extractor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/shridharbhandiwad/radix-go/internal/coords"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

// Defaults per spec.md §6.
const (
	DefaultWindowSize          = 10
	DefaultStride              = 1
	DefaultProximityThresholdM = 1000.0
)

// TabularRow is one flat per-detection record (spec.md §4.4 "Tabular").
// Column order is fixed by field declaration order.
type TabularRow struct {
	Timestamp    time.Time
	SensorID     string
	TargetID     int // -1 if absent
	RangeM       float64
	AzimuthDeg   float64
	ElevationDeg float64 // 0 if absent
	DopplerMps   float64
	SnrDb        float64
	RcsDbsm      float64 // 0 if absent
	X, Y, Z      float64 // 0 if ENU absent
	VX, VY, VZ   float64 // 0 if velocity absent
}

func tabularRow(d schema.NormalizedDetection) TabularRow {
	row := TabularRow{
		Timestamp:  d.Timestamp,
		SensorID:   d.SensorID,
		TargetID:   -1,
		RangeM:     d.RangeM,
		AzimuthDeg: d.AzimuthDeg,
		DopplerMps: d.DopplerMps,
		SnrDb:      d.SnrDb,
	}
	if d.TargetID != nil {
		row.TargetID = *d.TargetID
	}
	if d.ElevationDeg != nil {
		row.ElevationDeg = *d.ElevationDeg
	}
	if d.RcsDbsm != nil {
		row.RcsDbsm = *d.RcsDbsm
	}
	if d.PositionENU != nil {
		row.X, row.Y, row.Z = d.PositionENU.X, d.PositionENU.Y, d.PositionENU.Z
	}
	if d.VelocityENU != nil {
		row.VX, row.VY, row.VZ = d.VelocityENU.X, d.VelocityENU.Y, d.VelocityENU.Z
	}
	return row
}

// Tabular projects a batch of detections into one row per detection.
func Tabular(detections []schema.NormalizedDetection) []TabularRow {
	out := make([]TabularRow, 0, len(detections))
	for _, d := range detections {
		out = append(out, tabularRow(d))
	}
	return out
}

// SequenceRow is a tabular row carrying the owning track's identity and
// state at emission time (spec.md §4.4 "Sequence").
type SequenceRow struct {
	TabularRow
	TrackID    int64
	TrackState schema.TrackState
}

// Sequence emits sliding windows of size windowSize, advancing by stride,
// over every track whose detection list is at least windowSize long.
// Tracks shorter than windowSize contribute nothing.
func Sequence(tracks []schema.Track, windowSize, stride int) []SequenceRow {
	if windowSize <= 0 || stride <= 0 {
		return nil
	}
	var out []SequenceRow
	for _, tr := range tracks {
		n := len(tr.Detections)
		if n < windowSize {
			continue
		}
		for start := 0; start+windowSize <= n; start += stride {
			window := tr.Detections[start : start+windowSize]
			for _, d := range window {
				out = append(out, SequenceRow{
					TabularRow: tabularRow(d),
					TrackID:    tr.TrackID,
					TrackState: tr.TrackState,
				})
			}
		}
	}
	return out
}

// Graph is a proximity adjacency projection over a track set (spec.md §4.4
// "Graph"). Adjacency is symmetric with a zero diagonal by construction.
type Graph struct {
	TrackIDs   []int64
	Adjacency  [][]float64
	EdgeIndex  [][2]int // indices into TrackIDs, both directions included
}

// BuildGraph projects tracks with a populated state vector into a weighted
// proximity graph. w(i,j) = 1/(dist+1) iff i != j and dist < threshold.
func BuildGraph(tracks []schema.Track, proximityThreshold float64) Graph {
	ids := make([]int64, 0, len(tracks))
	positions := make([]coords.ENU, 0, len(tracks))
	for _, tr := range tracks {
		ids = append(ids, tr.TrackID)
		sv := tr.StateVector
		positions = append(positions, coords.ENU{X: sv[0], Y: sv[1], Z: sv[2]})
	}

	n := len(ids)
	adj := make([][]float64, n)
	for i := range adj {
		adj[i] = make([]float64, n)
	}
	var edges [][2]int
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dist := coords.Distance(positions[i], positions[j])
			if dist < proximityThreshold {
				w := 1.0 / (dist + 1.0)
				adj[i][j] = w
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return Graph{TrackIDs: ids, Adjacency: adj, EdgeIndex: edges}
}

// TrackFeatures holds per-track descriptive statistics (spec.md §4.4
// "Per-track statistical features").
type TrackFeatures struct {
	PosMeanX, PosMeanY, PosMeanZ float64
	PosStdX, PosStdY, PosStdZ    float64
	VelMagMean, VelMagStd        float64
	DetectionCount               int
	DurationSeconds              float64
}

// TrackStatistics computes TrackFeatures for every track with at least two
// ENU-equipped detections; tracks that don't qualify are simply absent from
// the returned map (an empty map results if none qualify).
func TrackStatistics(tracks []schema.Track) map[int64]TrackFeatures {
	out := make(map[int64]TrackFeatures)
	for _, tr := range tracks {
		var xs, ys, zs, velMags []float64
		for _, d := range tr.Detections {
			if d.PositionENU == nil {
				continue
			}
			xs = append(xs, d.PositionENU.X)
			ys = append(ys, d.PositionENU.Y)
			zs = append(zs, d.PositionENU.Z)
			if d.VelocityENU != nil {
				velMags = append(velMags, d.VelocityENU.Norm())
			}
		}
		if len(xs) < 2 {
			continue
		}
		feat := TrackFeatures{
			PosMeanX:        stat.Mean(xs, nil),
			PosMeanY:        stat.Mean(ys, nil),
			PosMeanZ:        stat.Mean(zs, nil),
			PosStdX:         stat.StdDev(xs, nil),
			PosStdY:         stat.StdDev(ys, nil),
			PosStdZ:         stat.StdDev(zs, nil),
			DetectionCount:  len(tr.Detections),
			DurationSeconds: tr.LastUpdated.Sub(tr.FirstSeen).Seconds(),
		}
		if len(velMags) > 0 {
			feat.VelMagMean = stat.Mean(velMags, nil)
			feat.VelMagStd = stat.StdDev(velMags, nil)
		}
		out[tr.TrackID] = feat
	}
	return out
}

// Registry tracks registered dataset descriptors. dataset_id is
// monotone within one Registry instance, not guaranteed unique across
// restarts (spec.md §4.4).
type Registry struct {
	mu       sync.Mutex
	datasets []schema.DatasetDescriptor
	count    int
	nowFunc  func() time.Time
}

// NewRegistry builds an empty dataset registry.
func NewRegistry() *Registry {
	return &Registry{nowFunc: time.Now}
}

// SetNowFunc overrides the clock used to stamp CreatedAt. Tests use this for
// determinism.
func (r *Registry) SetNowFunc(f func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nowFunc = f
}

// CreateDataset registers a new dataset descriptor over the given
// detections (spec.md §4.4 "Dataset registration"). It takes no tracks; every
// descriptor field is derived from the detections alone.
func (r *Registry) CreateDataset(name, description string, detections []schema.NormalizedDetection, format schema.DatasetFormat) schema.DatasetDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	sensorSet := make(map[string]struct{})
	var start, end time.Time
	for i, d := range detections {
		sensorSet[d.SensorID] = struct{}{}
		if i == 0 || d.Timestamp.Before(start) {
			start = d.Timestamp
		}
		if i == 0 || d.Timestamp.After(end) {
			end = d.Timestamp
		}
	}
	sensorIDs := make([]string, 0, len(sensorSet))
	for id := range sensorSet {
		sensorIDs = append(sensorIDs, id)
	}
	sort.Strings(sensorIDs)

	desc := schema.DatasetDescriptor{
		DatasetID:   fmt.Sprintf("dataset_%d", r.count),
		Name:        name,
		Description: description,
		CreatedAt:   r.nowFunc(),
		SensorIDs:   sensorIDs,
		StartTime:   start,
		EndTime:     end,
		NumSamples:  len(detections),
		Format:      format,
		Metadata:    map[string]interface{}{},
	}
	r.count++
	r.datasets = append(r.datasets, desc)
	return desc
}

// List returns a copy of every registered dataset descriptor.
func (r *Registry) List() []schema.DatasetDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]schema.DatasetDescriptor, len(r.datasets))
	copy(out, r.datasets)
	return out
}

// Get returns the dataset descriptor with the given ID, or false if absent.
func (r *Registry) Get(id string) (schema.DatasetDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.datasets {
		if d.DatasetID == id {
			return d, true
		}
	}
	return schema.DatasetDescriptor{}, false
}
