package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shridharbhandiwad/radix-go/internal/coords"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

func makeTrack(id int64, n int) schema.Track {
	base := time.Now()
	tr := schema.Track{TrackID: id, FirstSeen: base, LastUpdated: base}
	for i := 0; i < n; i++ {
		pos := coords.ENU{X: float64(i), Y: float64(i), Z: 0}
		vel := coords.ENU{X: 1, Y: 1, Z: 0}
		ts := base.Add(time.Duration(i) * 100 * time.Millisecond)
		tr.AppendDetection(schema.NormalizedDetection{
			Timestamp: ts, SensorID: "s", RangeM: pos.Norm(),
			PositionENU: &pos, VelocityENU: &vel,
		})
		tr.LastUpdated = ts
	}
	return tr
}

func TestSequence_WindowCount(t *testing.T) {
	// spec.md §8 scenario 6.
	tr := makeTrack(1, 20)
	rows := Sequence([]schema.Track{tr}, 10, 1)
	assert.Len(t, rows, 11*10)
	for _, r := range rows {
		assert.Equal(t, int64(1), r.TrackID)
	}
}

func TestSequence_ShortTrackContributesNothing(t *testing.T) {
	tr := makeTrack(1, 5)
	rows := Sequence([]schema.Track{tr}, 10, 1)
	assert.Empty(t, rows)
}

func TestBuildGraph_ProximityScenario(t *testing.T) {
	// spec.md §8 scenario 5.
	var tracks []schema.Track
	for i := 0; i < 5; i++ {
		tracks = append(tracks, schema.Track{
			TrackID:     int64(i + 1),
			StateVector: [6]float64{float64(i) * 100, float64(i) * 100, 100, 0, 0, 0},
		})
	}
	g := BuildGraph(tracks, 1000)
	require.Len(t, g.Adjacency, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0.0, g.Adjacency[i][i])
		for j := 0; j < 5; j++ {
			if i == j {
				continue
			}
			dist := float64(i-j) * 100 * 1.41421356
			if dist < 0 {
				dist = -dist
			}
			if dist < 1000 {
				assert.Greater(t, g.Adjacency[i][j], 0.0)
			} else {
				assert.Equal(t, 0.0, g.Adjacency[i][j])
			}
			assert.Equal(t, g.Adjacency[i][j], g.Adjacency[j][i])
		}
	}
}

func TestTrackStatistics_RequiresAtLeastTwoDetections(t *testing.T) {
	single := makeTrack(1, 1)
	feats := TrackStatistics([]schema.Track{single})
	assert.Empty(t, feats)

	multi := makeTrack(2, 5)
	feats = TrackStatistics([]schema.Track{multi})
	require.Contains(t, feats, int64(2))
	assert.Equal(t, 5, feats[2].DetectionCount)
}

func TestRegistry_CreateDatasetIDsMonotone(t *testing.T) {
	reg := NewRegistry()
	d1 := reg.CreateDataset("a", "first", nil, schema.DatasetTabular)
	d2 := reg.CreateDataset("b", "second", nil, schema.DatasetSequence)
	assert.Equal(t, "dataset_0", d1.DatasetID)
	assert.Equal(t, "dataset_1", d2.DatasetID)
	assert.Len(t, reg.List(), 2)
}

func TestRegistry_GetUnknownIDNotFound(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Get("dataset_99")
	assert.False(t, ok)
}
