// Package config loads the pipeline's tunable parameters from a JSON file,
// grounded on the teacher's internal/config/tuning.go: pointer-typed
// optional fields so a partial file leaves the rest at spec.md §6's
// defaults, plus path/extension/size validation on load.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the canonical defaults file for a fresh deployment.
const DefaultConfigPath = "config/pipeline.defaults.json"

// PipelineConfig mirrors spec.md §6's configuration table. All fields are
// optional; a nil field falls back to its Get* default.
type PipelineConfig struct {
	TickIntervalSeconds    *float64 `json:"tick_interval_seconds,omitempty"`
	HistoryRingCapacity    *int     `json:"history_ring_capacity,omitempty"`
	MaxAssociationDistance *float64 `json:"max_association_distance_m,omitempty"`
	MaxCoastTimeSeconds    *float64 `json:"max_coast_time_seconds,omitempty"`
	ConfirmationThreshold  *int     `json:"confirmation_threshold,omitempty"`
	MaxDetectionsPerTrack  *int     `json:"max_detections_per_track,omitempty"`
	SequenceWindowSize     *int     `json:"sequence_window_size,omitempty"`
	SequenceStride         *int     `json:"sequence_stride,omitempty"`
	GraphProximityMeters   *float64 `json:"graph_proximity_threshold_m,omitempty"`
}

// EmptyPipelineConfig returns a PipelineConfig with every field nil; use
// LoadPipelineConfig to populate it from a file.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig reads and validates a JSON tuning file. The file must
// end in .json and stay under 1MB; fields it omits retain their defaults.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every set field against spec.md §6's domain constraints.
func (c *PipelineConfig) Validate() error {
	if c.TickIntervalSeconds != nil && *c.TickIntervalSeconds <= 0 {
		return fmt.Errorf("tick_interval_seconds must be > 0, got %v", *c.TickIntervalSeconds)
	}
	if c.HistoryRingCapacity != nil && *c.HistoryRingCapacity <= 0 {
		return fmt.Errorf("history_ring_capacity must be > 0, got %v", *c.HistoryRingCapacity)
	}
	if c.MaxAssociationDistance != nil && *c.MaxAssociationDistance <= 0 {
		return fmt.Errorf("max_association_distance_m must be > 0, got %v", *c.MaxAssociationDistance)
	}
	if c.MaxCoastTimeSeconds != nil && *c.MaxCoastTimeSeconds <= 0 {
		return fmt.Errorf("max_coast_time_seconds must be > 0, got %v", *c.MaxCoastTimeSeconds)
	}
	if c.ConfirmationThreshold != nil && *c.ConfirmationThreshold < 1 {
		return fmt.Errorf("confirmation_threshold must be >= 1, got %v", *c.ConfirmationThreshold)
	}
	if c.MaxDetectionsPerTrack != nil && *c.MaxDetectionsPerTrack < 1 {
		return fmt.Errorf("max_detections_per_track must be >= 1, got %v", *c.MaxDetectionsPerTrack)
	}
	if c.SequenceWindowSize != nil && *c.SequenceWindowSize < 1 {
		return fmt.Errorf("sequence_window_size must be >= 1, got %v", *c.SequenceWindowSize)
	}
	if c.SequenceStride != nil && *c.SequenceStride < 1 {
		return fmt.Errorf("sequence_stride must be >= 1, got %v", *c.SequenceStride)
	}
	if c.GraphProximityMeters != nil && *c.GraphProximityMeters <= 0 {
		return fmt.Errorf("graph_proximity_threshold_m must be > 0, got %v", *c.GraphProximityMeters)
	}
	return nil
}

// GetTickIntervalSeconds returns the configured tick interval or its default.
func (c *PipelineConfig) GetTickIntervalSeconds() float64 {
	if c.TickIntervalSeconds == nil {
		return 0.1
	}
	return *c.TickIntervalSeconds
}

// GetHistoryRingCapacity returns the configured ring capacity or its default.
func (c *PipelineConfig) GetHistoryRingCapacity() int {
	if c.HistoryRingCapacity == nil {
		return 1000
	}
	return *c.HistoryRingCapacity
}

// GetMaxAssociationDistance returns the configured association gate or its default.
func (c *PipelineConfig) GetMaxAssociationDistance() float64 {
	if c.MaxAssociationDistance == nil {
		return 100.0
	}
	return *c.MaxAssociationDistance
}

// GetMaxCoastTimeSeconds returns the configured coast timeout or its default.
func (c *PipelineConfig) GetMaxCoastTimeSeconds() float64 {
	if c.MaxCoastTimeSeconds == nil {
		return 5.0
	}
	return *c.MaxCoastTimeSeconds
}

// GetConfirmationThreshold returns the configured confirmation count or its default.
func (c *PipelineConfig) GetConfirmationThreshold() int {
	if c.ConfirmationThreshold == nil {
		return 3
	}
	return *c.ConfirmationThreshold
}

// GetMaxDetectionsPerTrack returns the configured per-track ring cap or its default.
func (c *PipelineConfig) GetMaxDetectionsPerTrack() int {
	if c.MaxDetectionsPerTrack == nil {
		return 50
	}
	return *c.MaxDetectionsPerTrack
}

// GetSequenceWindowSize returns the configured sequence window size or its default.
func (c *PipelineConfig) GetSequenceWindowSize() int {
	if c.SequenceWindowSize == nil {
		return 10
	}
	return *c.SequenceWindowSize
}

// GetSequenceStride returns the configured sequence stride or its default.
func (c *PipelineConfig) GetSequenceStride() int {
	if c.SequenceStride == nil {
		return 1
	}
	return *c.SequenceStride
}

// GetGraphProximityMeters returns the configured graph proximity threshold or its default.
func (c *PipelineConfig) GetGraphProximityMeters() float64 {
	if c.GraphProximityMeters == nil {
		return 1000.0
	}
	return *c.GraphProximityMeters
}
