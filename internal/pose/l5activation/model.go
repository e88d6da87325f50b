package l5activation

import (
	"math"

	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l4phase"
)

// Phase multipliers.
const (
	GluteConcentricBoost     = 1.2  // squat and deadlift drive out of the hole
	HamstringEccentricBoost  = 1.1  // deadlift lowering loads the hamstrings
	ChestConcentricBoost     = 1.1  // bench press drive
	TricepsLockoutBoost      = 1.2  // bench press near lockout
	TricepsLockoutNormElbow  = 0.7  // normalized elbow angle beyond which lockout boost applies
	StrengthConcentricBoost  = 1.2  // strength goal emphasises the concentric
	HypertrophyEccentricGain = 1.15 // hypertrophy goal emphasises the eccentric
	HypertrophyIsometricGain = 1.1  // and time spent holding under load
)

// Normalize clamps a joint angle to [0,180] degrees and scales it to [0,1].
func Normalize(deg float64) float64 {
	return clamp01(deg / 180)
}

// Tent is a triangular activation curve peaking at 1 when x == center and
// falling off linearly with the given slope, clamped to [0,1].
func Tent(x, center, slope float64) float64 {
	return clamp01(1 - slope*math.Abs(x-center))
}

// term is one muscle's base activation. A term with no angles is a fixed
// stabiliser baseline; otherwise the tent curves of each normalized angle
// are averaged and scaled.
type term struct {
	muscle   MuscleGroup
	angles   []l2geometry.AngleID
	center   float64
	slope    float64
	scale    float64
	baseline float64
}

// boost is a phase-dependent multiplier applied after the base activation.
type boost struct {
	muscle MuscleGroup
	phase  l4phase.Phase
	factor float64
	// when, if set, must also hold for the normalized angles of the pose.
	when func(norm map[l2geometry.AngleID]float64) bool
}

// model is the parametric activation model for one exercise.
type model struct {
	terms  []term
	boosts []boost
}

func tent(m MuscleGroup, angle l2geometry.AngleID, center, slope, scale float64) term {
	return term{muscle: m, angles: []l2geometry.AngleID{angle}, center: center, slope: slope, scale: scale}
}

func baseline(m MuscleGroup, v float64) term {
	return term{muscle: m, baseline: v}
}

var models = map[exercise.Type]model{
	exercise.Squat: {
		terms: []term{
			tent(Quadriceps, l2geometry.RightKneeAngle, 0.5, 2.0, 1.0),
			tent(Gluteus, l2geometry.RightHipAngle, 0.45, 1.8, 1.0),
			tent(Hamstrings, l2geometry.RightHipAngle, 0.5, 1.5, 0.7),
			tent(LowerBack, l2geometry.SpineAngle, 0.85, 2.5, 0.6),
			baseline(Calves, 0.3),
			baseline(Core, 0.6),
		},
		boosts: []boost{
			{muscle: Gluteus, phase: l4phase.Concentric, factor: GluteConcentricBoost},
		},
	},
	exercise.Deadlift: {
		terms: []term{
			tent(Hamstrings, l2geometry.RightHipAngle, 0.55, 1.6, 1.0),
			tent(Gluteus, l2geometry.RightHipAngle, 0.6, 1.5, 1.0),
			tent(LowerBack, l2geometry.RightHipAngle, 0.5, 1.2, 0.9),
			tent(Quadriceps, l2geometry.RightKneeAngle, 0.75, 2.0, 0.6),
			baseline(Trapezius, 0.5),
			baseline(UpperBack, 0.45),
			baseline(Forearms, 0.6),
			baseline(Core, 0.7),
		},
		boosts: []boost{
			{muscle: Gluteus, phase: l4phase.Concentric, factor: GluteConcentricBoost},
			{muscle: Hamstrings, phase: l4phase.Eccentric, factor: HamstringEccentricBoost},
		},
	},
	exercise.BenchPress: {
		terms: []term{
			tent(Chest, l2geometry.RightElbowAngle, 0.5, 1.6, 1.0),
			tent(Triceps, l2geometry.RightElbowAngle, 0.75, 2.0, 1.0),
			tent(AnteriorDeltoid, l2geometry.RightShoulderAngle, 0.4, 1.5, 0.8),
			baseline(Core, 0.3),
		},
		boosts: []boost{
			{muscle: Chest, phase: l4phase.Concentric, factor: ChestConcentricBoost},
			{
				muscle: Triceps,
				phase:  l4phase.Concentric,
				factor: TricepsLockoutBoost,
				when: func(norm map[l2geometry.AngleID]float64) bool {
					e, ok := norm[l2geometry.RightElbowAngle]
					return ok && e > TricepsLockoutNormElbow
				},
			},
		},
	},
}

// HasModel reports whether an activation model exists for the exercise.
func HasModel(t exercise.Type) bool {
	_, ok := models[t]
	return ok
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
