package l5activation

import (
	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l4phase"
)

// Estimator applies the per-exercise activation models. It holds no state
// and is safe for concurrent use.
type Estimator struct{}

// NewEstimator creates an activation estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate returns the activation of every muscle the exercise's model
// covers. Muscles whose driving angle is missing from the pose are omitted;
// baselines are always reported. Exercises without a model yield an empty,
// non-nil map.
func (e *Estimator) Estimate(t exercise.Type, pose *l2geometry.BodyPose, phase l4phase.Phase, mode exercise.TrainingMode) Activation {
	out := make(Activation)
	m, ok := models[t]
	if !ok {
		return out
	}

	norm := make(map[l2geometry.AngleID]float64)
	for _, tm := range m.terms {
		if len(tm.angles) == 0 {
			out[tm.muscle] = clamp01(tm.baseline)
			continue
		}
		sum, present := 0.0, true
		for _, id := range tm.angles {
			deg, ok := pose.Angle(id)
			if !ok {
				present = false
				break
			}
			n := Normalize(deg)
			norm[id] = n
			sum += Tent(n, tm.center, tm.slope)
		}
		if !present {
			continue
		}
		out[tm.muscle] = clamp01(sum / float64(len(tm.angles)) * tm.scale)
	}

	for _, b := range m.boosts {
		v, ok := out[b.muscle]
		if !ok || phase != b.phase {
			continue
		}
		if b.when != nil && !b.when(norm) {
			continue
		}
		out[b.muscle] = clamp01(v * b.factor)
	}

	if f := ModeFactor(mode, phase); f != 1 {
		for muscle, v := range out {
			out[muscle] = clamp01(v * f)
		}
	}
	return out
}

// ModeFactor returns the training-goal multiplier for a phase: strength
// emphasises the concentric, hypertrophy the eccentric and isometric hold.
func ModeFactor(mode exercise.TrainingMode, phase l4phase.Phase) float64 {
	switch mode {
	case exercise.Strength:
		if phase == l4phase.Concentric {
			return StrengthConcentricBoost
		}
	case exercise.Hypertrophy:
		switch phase {
		case l4phase.Eccentric:
			return HypertrophyEccentricGain
		case l4phase.Isometric:
			return HypertrophyIsometricGain
		}
	}
	return 1
}
