package l5activation

import (
	"testing"

	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l4phase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poseWith(angles map[l2geometry.AngleID]float64) *l2geometry.BodyPose {
	return &l2geometry.BodyPose{Angles: angles}
}

func TestNormalizeClamps(t *testing.T) {
	assert.Equal(t, 0.0, Normalize(-20))
	assert.Equal(t, 1.0, Normalize(200))
	assert.InDelta(t, 0.5, Normalize(90), 1e-12)
}

func TestTent(t *testing.T) {
	assert.InDelta(t, 1.0, Tent(0.5, 0.5, 2), 1e-12)
	assert.InDelta(t, 0.8, Tent(0.6, 0.5, 2), 1e-12)
	assert.InDelta(t, 0.8, Tent(0.4, 0.5, 2), 1e-12)
	assert.Equal(t, 0.0, Tent(0, 0.5, 2))
	assert.Equal(t, 0.0, Tent(1, 0.5, 3))
}

func TestEstimateSquatQuadricepsPeak(t *testing.T) {
	e := NewEstimator()
	pose := poseWith(map[l2geometry.AngleID]float64{
		l2geometry.RightKneeAngle: 90,
		l2geometry.RightHipAngle:  90,
		l2geometry.SpineAngle:     160,
	})

	act := e.Estimate(exercise.Squat, pose, l4phase.Unknown, exercise.Strength)
	assert.InDelta(t, 1.0, act[Quadriceps], 1e-9)
	assert.InDelta(t, 0.3, act[Calves], 1e-9)
	assert.InDelta(t, 0.6, act[Core], 1e-9)
	for _, m := range []MuscleGroup{Gluteus, Hamstrings, LowerBack} {
		assert.Contains(t, act, m)
	}
	assert.NotContains(t, act, Chest)
}

func TestEstimateHypertrophyEccentricQuadriceps(t *testing.T) {
	e := NewEstimator()
	pose := poseWith(map[l2geometry.AngleID]float64{
		l2geometry.RightKneeAngle: 110,
		l2geometry.RightHipAngle:  120,
		l2geometry.SpineAngle:     170,
	})

	base := e.Estimate(exercise.Squat, pose, l4phase.Unknown, exercise.Hypertrophy)
	assert.InDelta(t, 1-2*(110.0/180-0.5), base[Quadriceps], 1e-9)

	ecc := e.Estimate(exercise.Squat, pose, l4phase.Eccentric, exercise.Hypertrophy)
	assert.InDelta(t, base[Quadriceps]*1.15, ecc[Quadriceps], 1e-9)
	assert.InDelta(t, 0.6*1.15, ecc[Core], 1e-9)
}

func TestEstimateClampsAtExtremes(t *testing.T) {
	e := NewEstimator()
	phases := []l4phase.Phase{l4phase.Concentric, l4phase.Eccentric, l4phase.Isometric, l4phase.Unknown}
	modes := []exercise.TrainingMode{exercise.Strength, exercise.Hypertrophy}

	for _, deg := range []float64{-45, 0, 81, 90, 180, 270} {
		angles := make(map[l2geometry.AngleID]float64)
		for _, id := range l2geometry.AngleIDs() {
			angles[id] = deg
		}
		pose := poseWith(angles)
		for _, ex := range exercise.Types() {
			for _, ph := range phases {
				for _, mode := range modes {
					for m, v := range e.Estimate(ex, pose, ph, mode) {
						require.GreaterOrEqual(t, v, 0.0, "%s %s %s %s at %v", ex, ph, mode, m, deg)
						require.LessOrEqual(t, v, 1.0, "%s %s %s %s at %v", ex, ph, mode, m, deg)
					}
				}
			}
		}
	}
}

func TestEstimateMultiplierStackingClamps(t *testing.T) {
	// Gluteus at its squat center gets the concentric boost and the strength
	// boost on top; the product exceeds one and must be clamped.
	pose := poseWith(map[l2geometry.AngleID]float64{
		l2geometry.RightKneeAngle: 90,
		l2geometry.RightHipAngle:  81,
		l2geometry.SpineAngle:     153,
	})
	act := NewEstimator().Estimate(exercise.Squat, pose, l4phase.Concentric, exercise.Strength)
	assert.Equal(t, 1.0, act[Gluteus])
	assert.Equal(t, 1.0, act[Quadriceps])
}

func TestEstimateBenchTricepsLockout(t *testing.T) {
	e := NewEstimator()

	locked := poseWith(map[l2geometry.AngleID]float64{l2geometry.RightElbowAngle: 162})
	act := e.Estimate(exercise.BenchPress, locked, l4phase.Concentric, exercise.Hypertrophy)
	assert.InDelta(t, 0.7*1.2, act[Triceps], 1e-9)

	bent := poseWith(map[l2geometry.AngleID]float64{l2geometry.RightElbowAngle: 108})
	act = e.Estimate(exercise.BenchPress, bent, l4phase.Concentric, exercise.Hypertrophy)
	assert.InDelta(t, 0.7, act[Triceps], 1e-9, "no lockout boost below the elbow threshold")

	act = e.Estimate(exercise.BenchPress, locked, l4phase.Eccentric, exercise.Strength)
	assert.InDelta(t, 0.7, act[Triceps], 1e-9, "lockout boost is concentric only")
}

func TestEstimateDeadliftHamstringsEccentric(t *testing.T) {
	e := NewEstimator()
	// Hip 72° normalizes to 0.4: hamstrings 1 - 1.6*0.15 = 0.76.
	pose := poseWith(map[l2geometry.AngleID]float64{
		l2geometry.RightHipAngle:  72,
		l2geometry.RightKneeAngle: 150,
	})
	iso := e.Estimate(exercise.Deadlift, pose, l4phase.Unknown, exercise.Strength)
	ecc := e.Estimate(exercise.Deadlift, pose, l4phase.Eccentric, exercise.Strength)
	assert.InDelta(t, 0.76, iso[Hamstrings], 1e-9)
	assert.InDelta(t, 0.76*HamstringEccentricBoost, ecc[Hamstrings], 1e-9)
	assert.InDelta(t, iso[Gluteus], ecc[Gluteus], 1e-9)
	assert.InDelta(t, 0.6, iso[Forearms], 1e-9)
}

func TestEstimateBoostClampsToOne(t *testing.T) {
	e := NewEstimator()
	// Hip 90° gives hamstrings 0.92; the eccentric boost would take it past 1.
	pose := poseWith(map[l2geometry.AngleID]float64{l2geometry.RightHipAngle: 90})
	iso := e.Estimate(exercise.Deadlift, pose, l4phase.Unknown, exercise.Strength)
	ecc := e.Estimate(exercise.Deadlift, pose, l4phase.Eccentric, exercise.Strength)
	assert.InDelta(t, 0.92, iso[Hamstrings], 1e-9)
	assert.Equal(t, 1.0, ecc[Hamstrings])
}

func TestEstimateMissingAnglesOmitMuscles(t *testing.T) {
	act := NewEstimator().Estimate(exercise.Squat, poseWith(nil), l4phase.Unknown, exercise.Strength)
	assert.Equal(t, Activation{Calves: 0.3, Core: 0.6}, act)

	act = NewEstimator().Estimate(exercise.Squat, nil, l4phase.Unknown, exercise.Strength)
	assert.Len(t, act, 2, "a nil pose still reports baselines")
}

func TestEstimateUnsupportedExercisesAreEmpty(t *testing.T) {
	pose := poseWith(map[l2geometry.AngleID]float64{l2geometry.RightKneeAngle: 90})
	for _, ex := range []exercise.Type{exercise.ShoulderPress, exercise.PullUp, exercise.Row, exercise.Lunge, exercise.Other} {
		act := NewEstimator().Estimate(ex, pose, l4phase.Concentric, exercise.Strength)
		require.NotNil(t, act)
		assert.Empty(t, act, "%s has no model", ex)
		assert.False(t, HasModel(ex))
	}
	assert.True(t, HasModel(exercise.Squat))
}

func TestModeFactor(t *testing.T) {
	assert.Equal(t, 1.2, ModeFactor(exercise.Strength, l4phase.Concentric))
	assert.Equal(t, 1.0, ModeFactor(exercise.Strength, l4phase.Eccentric))
	assert.Equal(t, 1.15, ModeFactor(exercise.Hypertrophy, l4phase.Eccentric))
	assert.Equal(t, 1.1, ModeFactor(exercise.Hypertrophy, l4phase.Isometric))
	assert.Equal(t, 1.0, ModeFactor(exercise.Hypertrophy, l4phase.Concentric))
	assert.Equal(t, 1.0, ModeFactor(exercise.Hypertrophy, l4phase.Unknown))
}

func TestActivationHelpers(t *testing.T) {
	a := Activation{Core: 0.6, Quadriceps: 0.9, Calves: 0.3}
	assert.Equal(t, []MuscleGroup{Calves, Core, Quadriceps}, a.Muscles())

	m, v, ok := a.Peak()
	assert.True(t, ok)
	assert.Equal(t, Quadriceps, m)
	assert.Equal(t, 0.9, v)

	_, _, ok = Activation{}.Peak()
	assert.False(t, ok)

	c := a.Clone()
	c[Core] = 0
	assert.Equal(t, 0.6, a[Core])
	assert.Len(t, MuscleGroups(), 16)
}
