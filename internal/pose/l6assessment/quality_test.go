package l6assessment

import (
	"testing"

	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l1keypoints"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l3history"
	"github.com/banshee-data/form.report/internal/pose/l5activation"
	"github.com/banshee-data/form.report/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyOf(frames ...l1keypoints.Frame) *l3history.History {
	gc := l2geometry.NewComputer(l2geometry.DefaultConfig())
	h := l3history.NewHistory(l3history.DefaultCapacity)
	for _, f := range frames {
		h.Push(gc.Compute(f))
	}
	return h
}

// descending returns n squat frames lowering the right knee 10° per 0.1s
// from 158° with the torso leaning to 150°. Every knee angle stays clear of
// the 160° lockout.
func descending(n int) []l1keypoints.Frame {
	base := testutil.Standing()
	base.Spine = 150
	knees := make([]float64, n)
	for i := range knees {
		knees[i] = 158 - float64(i)*10
	}
	return testutil.Sequence(0, 0.1, base, knees...)
}

func TestEvaluateNeutralBelowDepth(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	act := l5activation.Activation{l5activation.Quadriceps: 1, l5activation.Core: 0.5}
	frames := descending(12)

	depths := map[Metric]int{
		CoreStability:        CoreStabilityDepth,
		TrajectoryEfficiency: TrajectoryEfficiencyDepth,
		ConcentricVelocity:   ConcentricVelocityDepth,
		JointStiffness:       JointStiffnessDepth,
		TimeUnderTension:     TimeUnderTensionDepth,
		EccentricControl:     EccentricControlDepth,
		RangeOfMotion:        RangeOfMotionDepth,
		MuscleIsolation:      MuscleIsolationDepth,
	}

	for n := 0; n <= len(frames); n++ {
		q := e.Evaluate(exercise.Squat, historyOf(frames[:n]...), act)
		for m, d := range depths {
			got := q.Value(m)
			if n < d {
				assert.Equal(t, NeutralScore, got, "%s with %d poses", m, n)
			} else {
				assert.NotEqual(t, NeutralScore, got, "%s with %d poses", m, n)
			}
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	}
}

func TestEvaluateDescendingSquatValues(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	act := l5activation.Activation{l5activation.Quadriceps: 1, l5activation.Core: 0.5}
	q := e.Evaluate(exercise.Squat, historyOf(descending(10)...), act)

	assert.InDelta(t, 1-2*(0.9-150.0/180), q.CoreStability, 1e-6)
	assert.InDelta(t, 1.0, q.TrajectoryEfficiency, 1e-9, "wrists do not move")
	assert.Equal(t, 0.0, q.ConcentricVelocity, "movement but nothing concentric")
	assert.InDelta(t, 1.0, q.JointStiffness, 1e-6)
	assert.InDelta(t, 1.0, q.TimeUnderTension, 1e-9, "every step is below lockout")
	assert.InDelta(t, 1-100.0/180, q.EccentricControl, 1e-6)
	assert.InDelta(t, 1.0, q.RangeOfMotion, 1e-6, "90° of knee travel")
	assert.InDelta(t, 1.0/3.0, q.MuscleIsolation, 1e-9)
}

func TestTimeUnderTensionLockoutSteps(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	// 175->165 and 165->155 touch lockout, 155->145 does not.
	q := e.Evaluate(exercise.Squat, historyOf(testutil.Sequence(0, 0.1, testutil.Standing(), 175, 165, 155, 145)...), nil)
	assert.InDelta(t, 1.0/3.0, q.TimeUnderTension, 1e-9)

	q = e.Evaluate(exercise.Squat, historyOf(testutil.Sequence(0, 0.1, testutil.Standing(), 175, 170)...), nil)
	assert.Zero(t, q.TimeUnderTension, "standing tall is unloaded")
}

func TestConcentricVelocity(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	fast := historyOf(testutil.Sequence(0, 0.1, testutil.Standing(), 100, 118, 136)...)
	assert.InDelta(t, 1.0, e.Evaluate(exercise.Squat, fast, nil).ConcentricVelocity, 1e-6)

	slow := historyOf(testutil.Sequence(0, 0.1, testutil.Standing(), 100, 109, 118)...)
	assert.InDelta(t, 0.5, e.Evaluate(exercise.Squat, slow, nil).ConcentricVelocity, 1e-6)

	still := historyOf(testutil.Sequence(0, 0.1, testutil.Standing(), 100, 100.5, 101)...)
	assert.Equal(t, NeutralScore, e.Evaluate(exercise.Squat, still, nil).ConcentricVelocity)
}

func TestCoreStability(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	a := testutil.Standing()
	a.Spine = 162
	q := e.Evaluate(exercise.Squat, historyOf(testutil.Frame(0, a)), nil)
	assert.InDelta(t, 1.0, q.CoreStability, 1e-6)

	q = e.Evaluate(exercise.Squat, historyOf(testutil.Frame(0, testutil.Standing())), nil)
	assert.InDelta(t, 0.8, q.CoreStability, 1e-6)

	noNeck := testutil.Without(testutil.Frame(0, testutil.Standing()), l1keypoints.Neck)
	q = e.Evaluate(exercise.Squat, historyOf(noNeck), nil)
	assert.Equal(t, NeutralScore, q.CoreStability)
}

func TestTrajectoryEfficiencyFallbacks(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	frames := descending(5)

	noWrists := make([]l1keypoints.Frame, len(frames))
	blind := make([]l1keypoints.Frame, len(frames))
	for i, f := range frames {
		noWrists[i] = testutil.Without(f, l1keypoints.LeftWrist, l1keypoints.RightWrist)
		blind[i] = testutil.Without(noWrists[i], l1keypoints.LeftHip, l1keypoints.RightHip)
	}

	q := e.Evaluate(exercise.Squat, historyOf(noWrists...), nil)
	assert.InDelta(t, 1.0, q.TrajectoryEfficiency, 1e-9, "hips stand in for the load")

	q = e.Evaluate(exercise.Squat, historyOf(blind...), nil)
	assert.Equal(t, NeutralScore, q.TrajectoryEfficiency)
}

func TestTrajectoryEfficiencyDetour(t *testing.T) {
	// The wrists go out and come back: net displacement zero.
	gc := l2geometry.NewComputer(l2geometry.DefaultConfig())
	h := l3history.NewHistory(l3history.DefaultCapacity)
	offsets := []float64{0, 0.1, 0.2, 0.1, 0}
	for i, dx := range offsets {
		f := testutil.Frame(float64(i)*0.1, testutil.Standing())
		for _, j := range []l1keypoints.Joint{l1keypoints.LeftWrist, l1keypoints.RightWrist} {
			p, _ := f.Point(j)
			f.Set(j, l1keypoints.Point{X: p.X + dx, Y: p.Y}, 1)
		}
		h.Push(gc.Compute(f))
	}
	q := NewEvaluator(DefaultConfig()).Evaluate(exercise.BenchPress, h, nil)
	assert.InDelta(t, 0.0, q.TrajectoryEfficiency, 1e-9)
}

func TestUnsupportedExerciseKeepsPivotMetricsNeutral(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	q := e.Evaluate(exercise.Lunge, historyOf(descending(12)...), l5activation.Activation{})

	assert.Equal(t, NeutralScore, q.ConcentricVelocity)
	assert.Equal(t, NeutralScore, q.TimeUnderTension)
	assert.Equal(t, NeutralScore, q.EccentricControl)
	assert.Equal(t, NeutralScore, q.RangeOfMotion)
	assert.Equal(t, NeutralScore, q.MuscleIsolation, "no activation to compare")
	assert.NotEqual(t, NeutralScore, q.CoreStability)

	// Without a pivot every angle counts toward stiffness, including the
	// moving right knee.
	assert.Less(t, q.JointStiffness, 1.0)
}

func TestEvaluateNilHistory(t *testing.T) {
	q := NewEvaluator(DefaultConfig()).Evaluate(exercise.Squat, nil, nil)
	assert.Equal(t, NeutralQuality(), q)
}

func TestMuscleIsolation(t *testing.T) {
	h := historyOf(testutil.Frame(0, testutil.Standing()))
	tests := []struct {
		name string
		act  l5activation.Activation
		want float64
	}{
		{"empty", l5activation.Activation{}, NeutralScore},
		{"single", l5activation.Activation{l5activation.Chest: 0.4}, 1},
		{"even", l5activation.Activation{l5activation.Chest: 0.4, l5activation.Triceps: 0.4}, 0},
		{"all zero", l5activation.Activation{l5activation.Chest: 0, l5activation.Triceps: 0}, NeutralScore},
		{"dominant", l5activation.Activation{l5activation.Chest: 0.9, l5activation.Triceps: 0.1, l5activation.Core: 0}, 0.85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, muscleIsolation(h, tt.act), 1e-9)
		})
	}
}

func TestOverallAndRelevantMetrics(t *testing.T) {
	q := ExerciseQuality{
		CoreStability:        1,
		TrajectoryEfficiency: 0.8,
		ConcentricVelocity:   0.6,
		JointStiffness:       0.4,
		TimeUnderTension:     0.2,
		EccentricControl:     0.4,
		RangeOfMotion:        0.5,
		MuscleIsolation:      0.5,
	}
	assert.InDelta(t, 0.7, q.Overall(exercise.Strength), 1e-12)
	assert.InDelta(t, 0.4, q.Overall(exercise.Hypertrophy), 1e-12)
	assert.InDelta(t, 0.5, NeutralQuality().Overall(exercise.Hypertrophy), 1e-12)

	require.Len(t, RelevantMetrics(exercise.Strength), 4)
	assert.Equal(t, []Metric{TimeUnderTension, EccentricControl, RangeOfMotion, MuscleIsolation}, RelevantMetrics(exercise.Hypertrophy))
	assert.Equal(t, RelevantMetrics(exercise.Strength), RelevantMetrics("endurance"))
	assert.Equal(t, NeutralScore, q.Value("unknown"))
}
