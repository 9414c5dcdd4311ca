package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadPipelineConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeTempConfig(t, `{"confirmation_threshold": 5}`)
	cfg, err := LoadPipelineConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetConfirmationThreshold() != 5 {
		t.Errorf("expected overridden confirmation_threshold=5, got %d", cfg.GetConfirmationThreshold())
	}
	if cfg.GetTickIntervalSeconds() != 0.1 {
		t.Errorf("expected default tick_interval_seconds=0.1, got %v", cfg.GetTickIntervalSeconds())
	}
	if cfg.GetMaxAssociationDistance() != 100.0 {
		t.Errorf("expected default max_association_distance_m=100, got %v", cfg.GetMaxAssociationDistance())
	}
}

func TestLoadPipelineConfig_RejectsNonJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.txt")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	if _, err := LoadPipelineConfig(path); err == nil {
		t.Fatal("expected error for non-.json extension")
	}
}

func TestLoadPipelineConfig_RejectsInvalidValues(t *testing.T) {
	path := writeTempConfig(t, `{"max_coast_time_seconds": -1}`)
	if _, err := LoadPipelineConfig(path); err == nil {
		t.Fatal("expected validation error for negative max_coast_time_seconds")
	}
}

func TestLoadPipelineConfig_MissingFile(t *testing.T) {
	if _, err := LoadPipelineConfig("/nonexistent/pipeline.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultsFile_LoadsAndValidates(t *testing.T) {
	cfg, err := LoadPipelineConfig("../../config/pipeline.defaults.json")
	if err != nil {
		t.Fatalf("failed to load canonical defaults: %v", err)
	}
	if cfg.GetSequenceWindowSize() != 10 {
		t.Errorf("expected sequence_window_size=10, got %d", cfg.GetSequenceWindowSize())
	}
	if cfg.GetGraphProximityMeters() != 1000.0 {
		t.Errorf("expected graph_proximity_threshold_m=1000, got %v", cfg.GetGraphProximityMeters())
	}
}
