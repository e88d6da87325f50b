package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for analysis tuning
// parameters. Every field is optional; the Get* accessors fall back to the
// built-in defaults for anything the JSON omits.
type TuningConfig struct {
	// History params
	HistoryCapacity *int `json:"history_capacity,omitempty"`

	// Geometry params
	MinKeypointConfidence *float64 `json:"min_keypoint_confidence,omitempty"`

	// Phase params
	IsometricThresholdDeg *float64 `json:"isometric_threshold_deg,omitempty"`
	MinPhaseDepth         *int     `json:"min_phase_depth,omitempty"`

	// Technique error params
	SquatDepthThreshold  *float64 `json:"squat_depth_threshold,omitempty"`
	TorsoLeanMinSpineDeg *float64 `json:"torso_lean_min_spine_deg,omitempty"`
	BenchAsymmetryMaxDeg *float64 `json:"bench_asymmetry_max_deg,omitempty"`
	KneeValgusHeuristic  *bool    `json:"knee_valgus_heuristic,omitempty"`
	KneeValgusRatio      *float64 `json:"knee_valgus_ratio,omitempty"`

	// Quality params
	CoreStabilityReference     *float64 `json:"core_stability_reference,omitempty"`
	ReferenceVelocityDegPerSec *float64 `json:"reference_velocity_deg_per_sec,omitempty"`
	StiffnessReferenceDeg      *float64 `json:"stiffness_reference_deg,omitempty"`
	ExpectedROMDeg             *float64 `json:"expected_rom_deg,omitempty"`
	LockoutAngleDeg            *float64 `json:"lockout_angle_deg,omitempty"`

	// Runner params
	RunnerQueueSize *int     `json:"runner_queue_size,omitempty"`
	MaxFrameRate    *float64 `json:"max_frame_rate,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// with its built-in default.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		HistoryCapacity:            ptrInt(e.GetHistoryCapacity()),
		MinKeypointConfidence:      ptrFloat64(e.GetMinKeypointConfidence()),
		IsometricThresholdDeg:      ptrFloat64(e.GetIsometricThresholdDeg()),
		MinPhaseDepth:              ptrInt(e.GetMinPhaseDepth()),
		SquatDepthThreshold:        ptrFloat64(e.GetSquatDepthThreshold()),
		TorsoLeanMinSpineDeg:       ptrFloat64(e.GetTorsoLeanMinSpineDeg()),
		BenchAsymmetryMaxDeg:       ptrFloat64(e.GetBenchAsymmetryMaxDeg()),
		KneeValgusHeuristic:        ptrBool(e.GetKneeValgusHeuristic()),
		KneeValgusRatio:            ptrFloat64(e.GetKneeValgusRatio()),
		CoreStabilityReference:     ptrFloat64(e.GetCoreStabilityReference()),
		ReferenceVelocityDegPerSec: ptrFloat64(e.GetReferenceVelocityDegPerSec()),
		StiffnessReferenceDeg:      ptrFloat64(e.GetStiffnessReferenceDeg()),
		ExpectedROMDeg:             ptrFloat64(e.GetExpectedROMDeg()),
		LockoutAngleDeg:            ptrFloat64(e.GetLockoutAngleDeg()),
		RunnerQueueSize:            ptrInt(e.GetRunnerQueueSize()),
		MaxFrameRate:               ptrFloat64(e.GetMaxFrameRate()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,          // from internal/config/
		"../../../" + DefaultConfigPath,       // from internal/pose/pipeline/
		"../../../../" + DefaultConfigPath,    // from internal/pose/storage/sqlite/
		"../../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.HistoryCapacity != nil && *c.HistoryCapacity < 1 {
		return fmt.Errorf("history_capacity must be at least 1, got %d", *c.HistoryCapacity)
	}
	if c.MinKeypointConfidence != nil {
		if *c.MinKeypointConfidence < 0 || *c.MinKeypointConfidence > 1 {
			return fmt.Errorf("min_keypoint_confidence must be between 0 and 1, got %f", *c.MinKeypointConfidence)
		}
	}
	if c.IsometricThresholdDeg != nil && *c.IsometricThresholdDeg < 0 {
		return fmt.Errorf("isometric_threshold_deg must be non-negative, got %f", *c.IsometricThresholdDeg)
	}
	if c.MinPhaseDepth != nil && *c.MinPhaseDepth < 2 {
		return fmt.Errorf("min_phase_depth must be at least 2, got %d", *c.MinPhaseDepth)
	}
	if c.SquatDepthThreshold != nil {
		if *c.SquatDepthThreshold < 0 || *c.SquatDepthThreshold > 1 {
			return fmt.Errorf("squat_depth_threshold must be between 0 and 1, got %f", *c.SquatDepthThreshold)
		}
	}
	if c.KneeValgusRatio != nil && *c.KneeValgusRatio <= 0 {
		return fmt.Errorf("knee_valgus_ratio must be positive, got %f", *c.KneeValgusRatio)
	}
	if c.CoreStabilityReference != nil {
		if *c.CoreStabilityReference < 0 || *c.CoreStabilityReference > 1 {
			return fmt.Errorf("core_stability_reference must be between 0 and 1, got %f", *c.CoreStabilityReference)
		}
	}
	for name, v := range map[string]*float64{
		"reference_velocity_deg_per_sec": c.ReferenceVelocityDegPerSec,
		"stiffness_reference_deg":        c.StiffnessReferenceDeg,
		"expected_rom_deg":               c.ExpectedROMDeg,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}
	if c.RunnerQueueSize != nil && *c.RunnerQueueSize < 1 {
		return fmt.Errorf("runner_queue_size must be at least 1, got %d", *c.RunnerQueueSize)
	}
	if c.MaxFrameRate != nil && *c.MaxFrameRate < 0 {
		return fmt.Errorf("max_frame_rate must be non-negative, got %f", *c.MaxFrameRate)
	}
	return nil
}

// GetHistoryCapacity returns the history_capacity value or the default.
func (c *TuningConfig) GetHistoryCapacity() int {
	if c.HistoryCapacity == nil {
		return 30
	}
	return *c.HistoryCapacity
}

// GetMinKeypointConfidence returns the min_keypoint_confidence value or the default.
// Zero disables confidence gating.
func (c *TuningConfig) GetMinKeypointConfidence() float64 {
	if c.MinKeypointConfidence == nil {
		return 0
	}
	return *c.MinKeypointConfidence
}

// GetIsometricThresholdDeg returns the isometric_threshold_deg value or the default.
func (c *TuningConfig) GetIsometricThresholdDeg() float64 {
	if c.IsometricThresholdDeg == nil {
		return 2.0
	}
	return *c.IsometricThresholdDeg
}

// GetMinPhaseDepth returns the min_phase_depth value or the default.
func (c *TuningConfig) GetMinPhaseDepth() int {
	if c.MinPhaseDepth == nil {
		return 3
	}
	return *c.MinPhaseDepth
}

// GetSquatDepthThreshold returns the squat_depth_threshold value or the default.
func (c *TuningConfig) GetSquatDepthThreshold() float64 {
	if c.SquatDepthThreshold == nil {
		return 0.7
	}
	return *c.SquatDepthThreshold
}

// GetTorsoLeanMinSpineDeg returns the torso_lean_min_spine_deg value or the default.
func (c *TuningConfig) GetTorsoLeanMinSpineDeg() float64 {
	if c.TorsoLeanMinSpineDeg == nil {
		return 160
	}
	return *c.TorsoLeanMinSpineDeg
}

// GetBenchAsymmetryMaxDeg returns the bench_asymmetry_max_deg value or the default.
func (c *TuningConfig) GetBenchAsymmetryMaxDeg() float64 {
	if c.BenchAsymmetryMaxDeg == nil {
		return 10
	}
	return *c.BenchAsymmetryMaxDeg
}

// GetKneeValgusHeuristic returns the knee_valgus_heuristic value or the default.
func (c *TuningConfig) GetKneeValgusHeuristic() bool {
	if c.KneeValgusHeuristic == nil {
		return false // default: not modeled
	}
	return *c.KneeValgusHeuristic
}

// GetKneeValgusRatio returns the knee_valgus_ratio value or the default.
func (c *TuningConfig) GetKneeValgusRatio() float64 {
	if c.KneeValgusRatio == nil {
		return 0.8
	}
	return *c.KneeValgusRatio
}

// GetCoreStabilityReference returns the core_stability_reference value or the default.
func (c *TuningConfig) GetCoreStabilityReference() float64 {
	if c.CoreStabilityReference == nil {
		return 0.9
	}
	return *c.CoreStabilityReference
}

// GetReferenceVelocityDegPerSec returns the reference_velocity_deg_per_sec value or the default.
func (c *TuningConfig) GetReferenceVelocityDegPerSec() float64 {
	if c.ReferenceVelocityDegPerSec == nil {
		return 180
	}
	return *c.ReferenceVelocityDegPerSec
}

// GetStiffnessReferenceDeg returns the stiffness_reference_deg value or the default.
func (c *TuningConfig) GetStiffnessReferenceDeg() float64 {
	if c.StiffnessReferenceDeg == nil {
		return 15
	}
	return *c.StiffnessReferenceDeg
}

// GetExpectedROMDeg returns the expected_rom_deg value or the default.
func (c *TuningConfig) GetExpectedROMDeg() float64 {
	if c.ExpectedROMDeg == nil {
		return 90
	}
	return *c.ExpectedROMDeg
}

// GetLockoutAngleDeg returns the lockout_angle_deg value or the default.
func (c *TuningConfig) GetLockoutAngleDeg() float64 {
	if c.LockoutAngleDeg == nil {
		return 160
	}
	return *c.LockoutAngleDeg
}

// GetRunnerQueueSize returns the runner_queue_size value or the default.
func (c *TuningConfig) GetRunnerQueueSize() int {
	if c.RunnerQueueSize == nil {
		return 64
	}
	return *c.RunnerQueueSize
}

// GetMaxFrameRate returns the max_frame_rate value or the default.
// Zero means every frame is processed.
func (c *TuningConfig) GetMaxFrameRate() float64 {
	if c.MaxFrameRate == nil {
		return 0
	}
	return *c.MaxFrameRate
}
