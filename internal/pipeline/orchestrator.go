// Package pipeline drives the per-tick normalize → track → broadcast loop
// and owns the bounded detection history (spec.md §4.5, §5). Structure —
// buffered per-subscriber frame channels, a subscriber registry guarded by
// its own mutex, atomic counters, graceful Stop — is grounded on the
// teacher's internal/lidar/visualiser.Publisher. Frames are broadcast
// synchronously at the end of each tick; there is no separate broadcast
// goroutine.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/shridharbhandiwad/radix-go/internal/frontends"
	"github.com/shridharbhandiwad/radix-go/internal/monitoring"
	"github.com/shridharbhandiwad/radix-go/internal/normalize"
	"github.com/shridharbhandiwad/radix-go/internal/schema"
	"github.com/shridharbhandiwad/radix-go/internal/tracker"
)

// SystemStatus answers the get_status query (spec.md §6).
type SystemStatus struct {
	UptimeSeconds   float64
	ActiveRadars    int
	TotalDetections uint64
	ActiveTracks    int
	DataRateHz      float64
	Timestamp       time.Time
}

// Frame is the per-tick push payload delivered to subscribers (spec.md §6
// "Streaming surface").
type Frame struct {
	Type         string
	Timestamp    time.Time
	Detections   []schema.NormalizedDetection
	Tracks       []schema.Track
	SystemStatus SystemStatus
}

// subscriber is a registered push target. frameCh is bounded; a full
// channel means the subscriber is slow and gets dropped (spec.md §5's
// "Timeouts" clause — subscriber sends never block a tick).
type subscriber struct {
	id      string
	frameCh chan *Frame
}

// Orchestrator owns the detection ring, drives the tracker, and fans out
// frame snapshots (spec.md §4.5).
type Orchestrator struct {
	cfg Config

	frontends []frontends.Frontend
	tracker   *tracker.Tracker

	ringMu sync.RWMutex
	ring   []schema.NormalizedDetection

	subsMu sync.Mutex
	subs   map[string]*subscriber

	totalDetections atomic.Uint64
	tickCount       atomic.Uint64

	rateMu          sync.Mutex
	rateWindowStart time.Time
	rateWindowCount int
	dataRateHz      float64

	startedAt time.Time
	nowFunc   func() time.Time

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// Config holds the orchestrator's tunable parameters, independent of how
// they were sourced (defaults, flags, or internal/config's JSON loader).
type Config struct {
	TickInterval    time.Duration
	RingCapacity    int
	AssociationDist float64
	CoastTimeout    time.Duration
	ConfirmCount    int
}

// DefaultConfig returns spec.md §6's defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:    100 * time.Millisecond,
		RingCapacity:    1000,
		AssociationDist: tracker.DefaultMaxAssociationDistance,
		CoastTimeout:    tracker.DefaultMaxCoastTime,
		ConfirmCount:    tracker.DefaultConfirmationThreshold,
	}
}

// New builds an Orchestrator over the given sensor frontends.
func New(cfg Config, fronts []frontends.Frontend) *Orchestrator {
	trackerCfg := tracker.Config{
		MaxAssociationDistance: cfg.AssociationDist,
		MaxCoastTime:           cfg.CoastTimeout,
		ConfirmationThreshold:  cfg.ConfirmCount,
	}
	return &Orchestrator{
		cfg:       cfg,
		frontends: fronts,
		tracker:   tracker.New(trackerCfg),
		subs:      make(map[string]*subscriber),
		nowFunc:   time.Now,
		startedAt: time.Now(),
	}
}

// SetNowFunc overrides the wall clock, for deterministic tests.
func (o *Orchestrator) SetNowFunc(f func() time.Time) {
	o.nowFunc = f
	o.tracker.SetNowFunc(f)
}

// Run drives ticks until ctx is cancelled. A shutdown signal stops the
// orchestrator after the current tick completes (spec.md §5 "Cancellation").
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return fmt.Errorf("pipeline: orchestrator already running")
	}
	defer o.running.Store(false)

	o.startedAt = o.nowFunc()
	o.stopCh = make(chan struct{})
	ticker := time.NewTicker(o.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-o.stopCh:
			return nil
		case <-ticker.C:
			o.tick()
		}
	}
}

// Stop signals Run to exit after the in-flight tick.
func (o *Orchestrator) Stop() {
	if o.running.Load() {
		close(o.stopCh)
	}
}

// Tick runs exactly one iteration of the pipeline (collect → normalize →
// ring append → track → rate → broadcast). Exported so tests and
// synchronous callers can drive the pipeline without a real ticker.
func (o *Orchestrator) Tick() {
	o.tick()
}

func (o *Orchestrator) tick() {
	now := o.nowFunc()
	dt := o.cfg.TickInterval.Seconds()

	var raw []schema.RawDetection
	for _, f := range o.frontends {
		raw = append(raw, f.Tick(now, dt)...)
	}

	normalized := normalize.BatchNormalize(raw)
	o.appendRing(normalized)
	o.tracker.Update(normalized)
	o.totalDetections.Add(uint64(len(normalized)))
	o.tickCount.Add(1)

	rate := o.updateRate(now, len(normalized))
	status := o.statusLocked(now, rate)
	o.broadcast(&Frame{
		Type:         "update",
		Timestamp:    now,
		Detections:   lastN(normalized, 50),
		Tracks:       o.tracker.AllTracks(),
		SystemStatus: status,
	})
}

func (o *Orchestrator) appendRing(normalized []schema.NormalizedDetection) {
	if len(normalized) == 0 {
		return
	}
	o.ringMu.Lock()
	defer o.ringMu.Unlock()
	o.ring = append(o.ring, normalized...)
	if len(o.ring) > o.cfg.RingCapacity {
		o.ring = o.ring[len(o.ring)-o.cfg.RingCapacity:]
	}
}

// updateRate maintains a rolling data_rate_hz over the last elapsed >= 1s
// window (spec.md §4.5 step 6).
func (o *Orchestrator) updateRate(now time.Time, n int) float64 {
	o.rateMu.Lock()
	defer o.rateMu.Unlock()
	if o.rateWindowStart.IsZero() {
		o.rateWindowStart = now
	}
	o.rateWindowCount += n
	elapsed := now.Sub(o.rateWindowStart).Seconds()
	if elapsed >= 1.0 {
		o.dataRateHz = float64(o.rateWindowCount) / elapsed
		o.rateWindowStart = now
		o.rateWindowCount = 0
	}
	return o.dataRateHz
}

func (o *Orchestrator) statusLocked(now time.Time, rate float64) SystemStatus {
	return SystemStatus{
		UptimeSeconds:   now.Sub(o.startedAt).Seconds(),
		ActiveRadars:    len(o.frontends),
		TotalDetections: o.totalDetections.Load(),
		ActiveTracks:    o.tracker.TrackCount(),
		DataRateHz:      rate,
		Timestamp:       now,
	}
}

// Subscribe registers a new push subscriber and returns its frame channel
// plus an unsubscribe function. Registration is serialized with broadcast
// via subsMu (spec.md §5's shared-resource rule for the subscriber list).
func (o *Orchestrator) Subscribe() (<-chan *Frame, func()) {
	id := uuid.NewString()
	sub := &subscriber{id: id, frameCh: make(chan *Frame, 10)}

	o.subsMu.Lock()
	o.subs[id] = sub
	o.subsMu.Unlock()

	return sub.frameCh, func() { o.unsubscribe(id) }
}

func (o *Orchestrator) unsubscribe(id string) {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()
	if sub, ok := o.subs[id]; ok {
		delete(o.subs, id)
		close(sub.frameCh)
	}
}

func (o *Orchestrator) broadcast(frame *Frame) {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()
	for id, sub := range o.subs {
		select {
		case sub.frameCh <- frame:
		default:
			monitoring.Logf("pipeline: dropping slow subscriber %s", id)
			delete(o.subs, id)
			close(sub.frameCh)
		}
	}
}

// Status answers the get_status query.
func (o *Orchestrator) Status() SystemStatus {
	o.rateMu.Lock()
	rate := o.dataRateHz
	o.rateMu.Unlock()
	return o.statusLocked(o.nowFunc(), rate)
}

// Sensors answers the list_sensors query.
func (o *Orchestrator) Sensors() []frontends.SensorInfo {
	out := make([]frontends.SensorInfo, 0, len(o.frontends))
	for _, f := range o.frontends {
		out = append(out, f.Info())
	}
	return out
}

// Tracks answers the list_tracks query: CONFIRMED/COASTING tracks only.
func (o *Orchestrator) Tracks() []schema.Track {
	return o.tracker.ActiveTracks()
}

// RecentDetections answers the recent_detections query: the last limit
// normalized detections, oldest to newest.
func (o *Orchestrator) RecentDetections(limit int) []schema.NormalizedDetection {
	o.ringMu.RLock()
	defer o.ringMu.RUnlock()
	if limit <= 0 || limit > len(o.ring) {
		limit = len(o.ring)
	}
	out := make([]schema.NormalizedDetection, limit)
	copy(out, o.ring[len(o.ring)-limit:])
	return out
}

func lastN(detections []schema.NormalizedDetection, n int) []schema.NormalizedDetection {
	if len(detections) <= n {
		out := make([]schema.NormalizedDetection, len(detections))
		copy(out, detections)
		return out
	}
	out := make([]schema.NormalizedDetection, n)
	copy(out, detections[len(detections)-n:])
	return out
}
