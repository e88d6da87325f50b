// Package l4phase owns Layer 4 (Phase) of the pose data model: classifying
// each new pose as concentric, eccentric, isometric, or unknown from the
// change in the exercise's pivot joint angle between the two most recent
// buffered poses.
//
// Dependency rule: L4 may depend on L1-L3. The classifier is stateless; no
// phase history is kept beyond what the pose history holds.
package l4phase

import (
	"math"

	"github.com/banshee-data/form.report/internal/config"
	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l3history"
)

// Phase is the movement phase of a single pose.
type Phase string

const (
	Concentric Phase = "concentric"
	Eccentric  Phase = "eccentric"
	Isometric  Phase = "isometric"
	Unknown    Phase = "unknown"
)

// pivots maps each exercise to the joint angle whose change drives phase
// classification. For every mapped exercise an increasing angle is the
// concentric direction (squat: knee extension while standing up;
// deadlift: hip extension at lockout; bench: elbow extension on the press).
var pivots = map[exercise.Type]l2geometry.AngleID{
	exercise.Squat:      l2geometry.RightKneeAngle,
	exercise.Deadlift:   l2geometry.RightHipAngle,
	exercise.BenchPress: l2geometry.RightElbowAngle,
}

// PivotFor returns the pivot joint angle for an exercise, and false when
// the exercise has no mapped pivot.
func PivotFor(t exercise.Type) (l2geometry.AngleID, bool) {
	id, ok := pivots[t]
	return id, ok
}

// Config holds phase classification parameters.
type Config struct {
	IsometricThresholdDeg float64 // |delta| below this is isometric
	MinDepth              int     // poses required before a phase is reported
}

// DefaultConfig returns the built-in phase configuration.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		IsometricThresholdDeg: cfg.GetIsometricThresholdDeg(),
		MinDepth:              cfg.GetMinPhaseDepth(),
	}
}

// Classifier maps pivot-angle deltas to movement phases.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a phase classifier.
func NewClassifier(cfg Config) *Classifier {
	if cfg.MinDepth < 2 {
		cfg.MinDepth = 2
	}
	return &Classifier{cfg: cfg}
}

// Classify returns the phase of the most recent pose in history for the
// given exercise. It reports Unknown until the history holds MinDepth poses,
// when the exercise has no pivot, or when either pivot angle is missing.
func (c *Classifier) Classify(t exercise.Type, history *l3history.History) Phase {
	if history == nil || history.Len() < c.cfg.MinDepth {
		return Unknown
	}
	pivot, ok := PivotFor(t)
	if !ok {
		return Unknown
	}
	current, okCur := history.Previous(1).Angle(pivot)
	previous, okPrev := history.Previous(2).Angle(pivot)
	if !okCur || !okPrev {
		return Unknown
	}
	return c.FromDelta(current - previous)
}

// FromDelta classifies a pivot-angle change in degrees.
func (c *Classifier) FromDelta(delta float64) Phase {
	switch {
	case math.Abs(delta) < c.cfg.IsometricThresholdDeg:
		return Isometric
	case delta > 0:
		return Concentric
	default:
		return Eccentric
	}
}
