package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	// Test that defaults are set via pointers
	if cfg.HistoryCapacity == nil || *cfg.HistoryCapacity != 30 {
		t.Errorf("Expected HistoryCapacity 30, got %v", cfg.HistoryCapacity)
	}
	if cfg.IsometricThresholdDeg == nil || *cfg.IsometricThresholdDeg != 2.0 {
		t.Errorf("Expected IsometricThresholdDeg 2.0, got %v", cfg.IsometricThresholdDeg)
	}
	if cfg.KneeValgusHeuristic == nil || *cfg.KneeValgusHeuristic != false {
		t.Errorf("Expected KneeValgusHeuristic false, got %v", cfg.KneeValgusHeuristic)
	}

	// Test getter methods
	if cfg.GetMinPhaseDepth() != 3 {
		t.Errorf("GetMinPhaseDepth() = %d, want 3", cfg.GetMinPhaseDepth())
	}
	if cfg.GetSquatDepthThreshold() != 0.7 {
		t.Errorf("GetSquatDepthThreshold() = %f, want 0.7", cfg.GetSquatDepthThreshold())
	}
	if cfg.GetCoreStabilityReference() != 0.9 {
		t.Errorf("GetCoreStabilityReference() = %f, want 0.9", cfg.GetCoreStabilityReference())
	}
	if cfg.GetMaxFrameRate() != 0 {
		t.Errorf("GetMaxFrameRate() = %f, want 0", cfg.GetMaxFrameRate())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "history_capacity": 12,
  "isometric_threshold_deg": 3.5,
  "torso_lean_min_spine_deg": 150,
  "knee_valgus_heuristic": true,
  "max_frame_rate": 15
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetHistoryCapacity() != 12 {
		t.Errorf("Expected HistoryCapacity 12, got %d", cfg.GetHistoryCapacity())
	}
	if cfg.GetIsometricThresholdDeg() != 3.5 {
		t.Errorf("Expected IsometricThresholdDeg 3.5, got %f", cfg.GetIsometricThresholdDeg())
	}
	if cfg.GetTorsoLeanMinSpineDeg() != 150 {
		t.Errorf("Expected TorsoLeanMinSpineDeg 150, got %f", cfg.GetTorsoLeanMinSpineDeg())
	}
	if !cfg.GetKneeValgusHeuristic() {
		t.Error("Expected KneeValgusHeuristic true")
	}
	if cfg.GetMaxFrameRate() != 15 {
		t.Errorf("Expected MaxFrameRate 15, got %f", cfg.GetMaxFrameRate())
	}

	// Omitted fields keep their defaults.
	if cfg.GetBenchAsymmetryMaxDeg() != 10 {
		t.Errorf("Expected default BenchAsymmetryMaxDeg 10, got %f", cfg.GetBenchAsymmetryMaxDeg())
	}
	if cfg.GetRunnerQueueSize() != 64 {
		t.Errorf("Expected default RunnerQueueSize 64, got %d", cfg.GetRunnerQueueSize())
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "history_capacity": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{name: "valid config", cfg: DefaultTuningConfig()},
		{name: "empty config is valid", cfg: &TuningConfig{}},
		{name: "zero history capacity", cfg: &TuningConfig{HistoryCapacity: ptrInt(0)}, wantErr: true},
		{name: "confidence above one", cfg: &TuningConfig{MinKeypointConfidence: ptrFloat64(1.5)}, wantErr: true},
		{name: "negative isometric threshold", cfg: &TuningConfig{IsometricThresholdDeg: ptrFloat64(-1)}, wantErr: true},
		{name: "phase depth below two", cfg: &TuningConfig{MinPhaseDepth: ptrInt(1)}, wantErr: true},
		{name: "squat depth above one", cfg: &TuningConfig{SquatDepthThreshold: ptrFloat64(1.2)}, wantErr: true},
		{name: "zero valgus ratio", cfg: &TuningConfig{KneeValgusRatio: ptrFloat64(0)}, wantErr: true},
		{name: "core reference negative", cfg: &TuningConfig{CoreStabilityReference: ptrFloat64(-0.1)}, wantErr: true},
		{name: "zero reference velocity", cfg: &TuningConfig{ReferenceVelocityDegPerSec: ptrFloat64(0)}, wantErr: true},
		{name: "negative expected rom", cfg: &TuningConfig{ExpectedROMDeg: ptrFloat64(-90)}, wantErr: true},
		{name: "zero queue size", cfg: &TuningConfig{RunnerQueueSize: ptrInt(0)}, wantErr: true},
		{name: "negative frame rate", cfg: &TuningConfig{MaxFrameRate: ptrFloat64(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaultConfigFile(t *testing.T) {
	cfg, err := LoadTuningConfig("../../config/tuning.defaults.json")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	// The defaults file must agree with the built-in getter defaults.
	builtin := EmptyTuningConfig()
	if cfg.GetHistoryCapacity() != builtin.GetHistoryCapacity() {
		t.Errorf("history_capacity: file %d, builtin %d", cfg.GetHistoryCapacity(), builtin.GetHistoryCapacity())
	}
	if cfg.GetIsometricThresholdDeg() != builtin.GetIsometricThresholdDeg() {
		t.Errorf("isometric_threshold_deg: file %f, builtin %f", cfg.GetIsometricThresholdDeg(), builtin.GetIsometricThresholdDeg())
	}
	if cfg.GetTorsoLeanMinSpineDeg() != builtin.GetTorsoLeanMinSpineDeg() {
		t.Errorf("torso_lean_min_spine_deg: file %f, builtin %f", cfg.GetTorsoLeanMinSpineDeg(), builtin.GetTorsoLeanMinSpineDeg())
	}
	if cfg.GetExpectedROMDeg() != builtin.GetExpectedROMDeg() {
		t.Errorf("expected_rom_deg: file %f, builtin %f", cfg.GetExpectedROMDeg(), builtin.GetExpectedROMDeg())
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetHistoryCapacity() != 30 {
		t.Errorf("Expected HistoryCapacity 30, got %d", cfg.GetHistoryCapacity())
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	_, err := LoadTuningConfig("/some/path/config.yaml")
	if err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadTuningConfigRejectsLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	largeData := make([]byte, 2*1024*1024) // 2MB
	if err := os.WriteFile(configPath, largeData, 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}

func TestLoadTuningConfigRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_values.json")

	if err := os.WriteFile(configPath, []byte(`{"history_capacity": 0}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected validation error, got nil")
	}
}
