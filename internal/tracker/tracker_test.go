package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shridharbhandiwad/radix-go/internal/coords"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

func detAt(ts time.Time, x, y, z, vx, vy, vz float64) schema.NormalizedDetection {
	pos := coords.ENU{X: x, Y: y, Z: z}
	vel := coords.ENU{X: vx, Y: vy, Z: vz}
	el := 0.0
	return schema.NormalizedDetection{
		Timestamp:    ts,
		SensorID:     "RADAR_A",
		RangeM:       pos.Norm(),
		AzimuthDeg:   0,
		ElevationDeg: &el,
		DopplerMps:   0,
		SnrDb:        10,
		PositionENU:  &pos,
		VelocityENU:  &vel,
	}
}

func TestTracker_SingleDetectionSeed(t *testing.T) {
	// spec.md §8 scenario 1.
	tr := New(DefaultConfig())
	now := time.Now()
	tr.Update([]schema.NormalizedDetection{detAt(now, 707, 707, 100, -7, -7, 0)})

	all := tr.AllTracks()
	require.Len(t, all, 1)
	assert.Equal(t, schema.TrackTentative, all[0].TrackState)
	assert.Equal(t, int64(1), all[0].TrackID)
}

func TestTracker_ConfirmationAtThree(t *testing.T) {
	// spec.md §8 scenario 2.
	tr := New(DefaultConfig())
	base := time.Now()
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * 100 * time.Millisecond)
		pos := float64(i)
		tr.Update([]schema.NormalizedDetection{detAt(ts, pos, pos, 10, 0, 0, 0)})
	}
	all := tr.AllTracks()
	require.Len(t, all, 1)
	assert.Equal(t, schema.TrackConfirmed, all[0].TrackState)
	assert.GreaterOrEqual(t, len(all[0].Detections), 3)
}

func TestTracker_CoastThenLose(t *testing.T) {
	// spec.md §8 scenario 3.
	tr := New(DefaultConfig())
	base := time.Now()
	tr.Update([]schema.NormalizedDetection{detAt(base, 10, 10, 10, 0, 0, 0)})

	tr.SetNowFunc(func() time.Time { return base.Add(500 * time.Millisecond) })
	tr.Update(nil)
	all := tr.AllTracks()
	require.Len(t, all, 1)
	assert.Equal(t, schema.TrackCoasting, all[0].TrackState)

	tr.SetNowFunc(func() time.Time { return base.Add(6 * time.Second) })
	tr.Update(nil)
	assert.Empty(t, tr.ActiveTracks())
	assert.Empty(t, tr.AllTracks())
}

func TestTracker_ActiveTracksOnlyConfirmedOrCoasting(t *testing.T) {
	tr := New(DefaultConfig())
	now := time.Now()
	tr.Update([]schema.NormalizedDetection{detAt(now, 1, 1, 1, 0, 0, 0)})
	active := tr.ActiveTracks()
	assert.Empty(t, active) // freshly-seeded track is TENTATIVE, not returned
}

func TestTracker_TrackIDsMonotoneAndUnique(t *testing.T) {
	tr := New(DefaultConfig())
	now := time.Now()
	tr.Update([]schema.NormalizedDetection{
		detAt(now, 0, 0, 0, 0, 0, 0),
		detAt(now, 5000, 5000, 0, 0, 0, 0),
	})
	all := tr.AllTracks()
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].TrackID)
	assert.Equal(t, int64(2), all[1].TrackID)
}

func TestTracker_AssociationWithinThreshold(t *testing.T) {
	cfg := DefaultConfig()
	tr := New(cfg)
	base := time.Now()
	tr.Update([]schema.NormalizedDetection{detAt(base, 0, 0, 0, 1, 0, 0)})

	next := base.Add(100 * time.Millisecond)
	tr.Update([]schema.NormalizedDetection{detAt(next, 50, 0, 0, 1, 0, 0)})
	all := tr.AllTracks()
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].TrackID)
	assert.InDelta(t, 50, all[0].StateVector[0], 1e-9)
}

func TestTracker_DetectionBeyondThresholdSeedsNewTrack(t *testing.T) {
	tr := New(DefaultConfig())
	base := time.Now()
	tr.Update([]schema.NormalizedDetection{detAt(base, 0, 0, 0, 1, 0, 0)})

	next := base.Add(100 * time.Millisecond)
	tr.Update([]schema.NormalizedDetection{detAt(next, 500, 0, 0, 1, 0, 0)})
	all := tr.AllTracks()
	require.Len(t, all, 2)
}

func TestTracker_MissingENUDetectionCannotAssociateOrSeed(t *testing.T) {
	tr := New(DefaultConfig())
	d := schema.NormalizedDetection{Timestamp: time.Now(), SensorID: "x", SnrDb: 1}
	tr.Update([]schema.NormalizedDetection{d})
	assert.Equal(t, 0, tr.TrackCount())
}
