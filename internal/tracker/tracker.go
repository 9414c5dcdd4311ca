// Package tracker implements the greedy nearest-neighbor multi-target
// tracker and its TENTATIVE/CONFIRMED/COASTING/LOST lifecycle FSM
// (spec.md §4.3). Struct shape and copy-on-read accessors are grounded on
// the teacher's internal/lidar/l5tracks/tracking.go Tracker; the
// association algorithm itself is not — it is the original Python
// SimpleTracker's greedy nearest-neighbor, not the teacher's
// Hungarian/Kalman pipeline (see DESIGN.md).
package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/shridharbhandiwad/radix-go/internal/coords"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

// Defaults per spec.md §6's configuration table.
const (
	DefaultMaxAssociationDistance = 100.0
	DefaultMaxCoastTime           = 5 * time.Second
	DefaultConfirmationThreshold  = 3
)

// Config holds the tracker's tunable thresholds.
type Config struct {
	MaxAssociationDistance float64
	MaxCoastTime           time.Duration
	ConfirmationThreshold  int
}

// DefaultConfig returns spec.md §6's defaults.
func DefaultConfig() Config {
	return Config{
		MaxAssociationDistance: DefaultMaxAssociationDistance,
		MaxCoastTime:           DefaultMaxCoastTime,
		ConfirmationThreshold:  DefaultConfirmationThreshold,
	}
}

// Tracker holds the live track set for one sensor fusion scope. Zero value
// is not usable; construct with New.
type Tracker struct {
	mu      sync.RWMutex
	cfg     Config
	tracks  map[int64]*schema.Track
	nextID  int64
	nowFunc func() time.Time
}

// New builds a Tracker with the given configuration.
func New(cfg Config) *Tracker {
	return &Tracker{
		cfg:     cfg,
		tracks:  make(map[int64]*schema.Track),
		nextID:  1,
		nowFunc: time.Now,
	}
}

// SetNowFunc overrides the wall-clock source used to age tracks when a tick
// carries an empty detection batch (spec.md §4.3's "wall-clock now is used
// for aging"). Tests inject a deterministic clock here.
func (t *Tracker) SetNowFunc(f func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nowFunc = f
}

// UpdateConfig swaps the tracker's thresholds under lock.
func (t *Tracker) UpdateConfig(cfg Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg = cfg
}

// Update runs one association tick: existing tracks are matched against
// detections in ascending track_id order, unmatched detections with a full
// ENU pair seed new TENTATIVE tracks, and tracks left unassociated are
// coasted or evicted (spec.md §4.3 steps 1–6).
func (t *Tracker) Update(detections []schema.NormalizedDetection) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.nowFunc()
	if len(detections) > 0 {
		now = detections[0].Timestamp
	}

	ids := t.sortedIDsLocked()
	used := make([]bool, len(detections))
	associated := make(map[int64]bool, len(ids))

	for _, id := range ids {
		tr := t.tracks[id]
		trackPos := coords.ENU{X: tr.StateVector[0], Y: tr.StateVector[1], Z: tr.StateVector[2]}
		best := -1
		bestDist := t.cfg.MaxAssociationDistance
		for i, d := range detections {
			if used[i] || d.PositionENU == nil {
				continue
			}
			dist := coords.Distance(trackPos, *d.PositionENU)
			if dist < bestDist {
				bestDist = dist
				best = i
			}
		}
		if best < 0 {
			continue
		}
		used[best] = true
		associated[id] = true
		t.applyAssociation(tr, detections[best])
	}

	for i, d := range detections {
		if used[i] || d.PositionENU == nil || d.VelocityENU == nil {
			continue
		}
		tr := &schema.Track{
			TrackID:     t.nextID,
			SensorID:    d.SensorID,
			FirstSeen:   d.Timestamp,
			LastUpdated: d.Timestamp,
			TrackState:  schema.TrackTentative,
			StateVector: stateVectorFrom(d),
		}
		tr.AppendDetection(d)
		t.nextID++
		t.tracks[tr.TrackID] = tr
	}

	for _, id := range ids {
		if associated[id] {
			continue
		}
		tr := t.tracks[id]
		if now.Sub(tr.LastUpdated) < t.cfg.MaxCoastTime {
			tr.TrackState = schema.TrackCoasting
		} else {
			delete(t.tracks, id)
		}
	}
}

func (t *Tracker) applyAssociation(tr *schema.Track, d schema.NormalizedDetection) {
	tr.StateVector = stateVectorFrom(d)
	tr.LastUpdated = d.Timestamp
	tr.AppendDetection(d)
	if tr.DetectionCount >= t.cfg.ConfirmationThreshold {
		tr.TrackState = schema.TrackConfirmed
	} else {
		tr.TrackState = schema.TrackTentative
	}
}

func stateVectorFrom(d schema.NormalizedDetection) [6]float64 {
	var sv [6]float64
	if d.PositionENU != nil {
		sv[0], sv[1], sv[2] = d.PositionENU.X, d.PositionENU.Y, d.PositionENU.Z
	}
	if d.VelocityENU != nil {
		sv[3], sv[4], sv[5] = d.VelocityENU.X, d.VelocityENU.Y, d.VelocityENU.Z
	}
	return sv
}

func (t *Tracker) sortedIDsLocked() []int64 {
	ids := make([]int64, 0, len(t.tracks))
	for id := range t.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ActiveTracks returns copies of every CONFIRMED or COASTING track, the only
// states list_tracks may ever surface (spec.md §6, §8 invariant).
func (t *Tracker) ActiveTracks() []schema.Track {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]schema.Track, 0, len(t.tracks))
	for _, tr := range t.tracks {
		if tr.TrackState == schema.TrackConfirmed || tr.TrackState == schema.TrackCoasting {
			out = append(out, copyTrack(tr))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrackID < out[j].TrackID })
	return out
}

// AllTracks returns copies of every live track regardless of state, for
// internal consumers such as the orchestrator's per-tick frame, which
// carries TENTATIVE tracks too.
func (t *Tracker) AllTracks() []schema.Track {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]schema.Track, 0, len(t.tracks))
	for _, tr := range t.tracks {
		out = append(out, copyTrack(tr))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrackID < out[j].TrackID })
	return out
}

// TrackCount reports the number of live tracks.
func (t *Tracker) TrackCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tracks)
}

func copyTrack(tr *schema.Track) schema.Track {
	cp := *tr
	cp.Detections = append([]schema.NormalizedDetection(nil), tr.Detections...)
	return cp
}
