package l6assessment

import "github.com/banshee-data/form.report/internal/config"

// Config holds quality and error-detection thresholds.
type Config struct {
	// Quality
	CoreStabilityReference float64 // normalized spine angle scored as perfect
	IsometricThresholdDeg  float64 // pivot deltas below this are not movement
	ReferenceVelocity      float64 // deg/s mapping to a velocity score of 1
	StiffnessReferenceDeg  float64 // non-pivot std-dev that scores 0
	ExpectedROMDeg         float64 // pivot excursion that scores 1
	LockoutAngleDeg        float64 // pivot angles at or above this are unloaded

	// Technique errors
	SquatDepthThreshold  float64 // 1 - normalized knee angle must reach this
	TorsoLeanMinSpineDeg float64 // spine angles below this are leaning
	BenchAsymmetryMaxDeg float64 // max tolerated elbow angle difference
	KneeValgusHeuristic  bool    // enable the knee-separation valgus check
	KneeValgusRatio      float64 // knee gap below ratio*min(hip, ankle gap) is valgus
}

// DefaultConfig returns the built-in assessment configuration.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		CoreStabilityReference: cfg.GetCoreStabilityReference(),
		IsometricThresholdDeg:  cfg.GetIsometricThresholdDeg(),
		ReferenceVelocity:      cfg.GetReferenceVelocityDegPerSec(),
		StiffnessReferenceDeg:  cfg.GetStiffnessReferenceDeg(),
		ExpectedROMDeg:         cfg.GetExpectedROMDeg(),
		LockoutAngleDeg:        cfg.GetLockoutAngleDeg(),
		SquatDepthThreshold:    cfg.GetSquatDepthThreshold(),
		TorsoLeanMinSpineDeg:   cfg.GetTorsoLeanMinSpineDeg(),
		BenchAsymmetryMaxDeg:   cfg.GetBenchAsymmetryMaxDeg(),
		KneeValgusHeuristic:    cfg.GetKneeValgusHeuristic(),
		KneeValgusRatio:        cfg.GetKneeValgusRatio(),
	}
}
