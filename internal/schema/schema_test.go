package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/shridharbhandiwad/radix-go/internal/coords"
)

func elevPtr(v float64) *float64 { return &v }

func TestNormalizedDetection_ValidateOK(t *testing.T) {
	pos := coords.ToENU(1000, 45, 10)
	vel := coords.RadialVelocityENU(-15, 45, 10)
	d := &NormalizedDetection{
		Timestamp:    time.Now(),
		SensorID:     "RADAR_A",
		RangeM:       1000,
		AzimuthDeg:   45,
		DopplerMps:   -15,
		SnrDb:        20,
		ElevationDeg: elevPtr(10),
		PositionENU:  &pos,
		VelocityENU:  &vel,
	}
	assert.NoError(t, d.Validate())
}

func TestNormalizedDetection_RejectsRangeMismatch(t *testing.T) {
	bad := coords.ENU{X: 1, Y: 1, Z: 1}
	d := &NormalizedDetection{
		RangeM:       1000,
		AzimuthDeg:   45,
		ElevationDeg: elevPtr(10),
		PositionENU:  &bad,
	}
	assert.Error(t, d.Validate())
}

func TestNormalizedDetection_RejectsPositionWithoutElevation(t *testing.T) {
	pos := coords.ENU{X: 10, Y: 10, Z: 0}
	d := &NormalizedDetection{RangeM: 14.14, AzimuthDeg: 45, PositionENU: &pos}
	assert.Error(t, d.Validate())
}

func TestNormalizedDetection_RejectsOutOfRangeAzimuth(t *testing.T) {
	d := &NormalizedDetection{RangeM: 10, AzimuthDeg: 360}
	assert.Error(t, d.Validate())
}

func TestTrack_AppendDetectionRingBehavior(t *testing.T) {
	tr := &Track{TrackID: 1, FirstSeen: time.Now(), LastUpdated: time.Now()}
	for i := 0; i < 60; i++ {
		tr.AppendDetection(NormalizedDetection{SensorID: "s"})
	}
	assert.Len(t, tr.Detections, MaxTrackDetections)
	assert.Equal(t, 60, tr.DetectionCount)
}

func TestTrack_ValidateConfirmedRequiresThreeDetections(t *testing.T) {
	tr := &Track{
		FirstSeen: time.Now(), LastUpdated: time.Now(),
		TrackState:     TrackConfirmed,
		Detections:     []NormalizedDetection{{}},
		DetectionCount: 1,
	}
	assert.Error(t, tr.Validate())
	tr.DetectionCount = 3
	assert.NoError(t, tr.Validate())
}
