package l6assessment

import (
	"math"

	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l1keypoints"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l3history"
	"github.com/banshee-data/form.report/internal/pose/l4phase"
	"github.com/banshee-data/form.report/internal/pose/l5activation"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// NeutralScore is reported by any metric lacking the data it needs.
const NeutralScore = 0.5

// History depth each metric needs before it is computed.
const (
	CoreStabilityDepth        = 1
	TrajectoryEfficiencyDepth = 5
	ConcentricVelocityDepth   = 3
	JointStiffnessDepth       = 3
	TimeUnderTensionDepth     = 2
	EccentricControlDepth     = 3
	RangeOfMotionDepth        = 10
	MuscleIsolationDepth      = 1
)

// Metric names one ExerciseQuality sub-metric.
type Metric string

const (
	CoreStability        Metric = "coreStability"
	TrajectoryEfficiency Metric = "trajectoryEfficiency"
	ConcentricVelocity   Metric = "concentricVelocity"
	JointStiffness       Metric = "jointStiffness"
	TimeUnderTension     Metric = "timeUnderTension"
	EccentricControl     Metric = "eccentricControl"
	RangeOfMotion        Metric = "rangeOfMotion"
	MuscleIsolation      Metric = "muscleIsolation"
)

var (
	strengthMetrics    = []Metric{CoreStability, TrajectoryEfficiency, ConcentricVelocity, JointStiffness}
	hypertrophyMetrics = []Metric{TimeUnderTension, EccentricControl, RangeOfMotion, MuscleIsolation}
)

// RelevantMetrics returns the four metrics that score a training mode.
// Unrecognised modes score as strength.
func RelevantMetrics(mode exercise.TrainingMode) []Metric {
	src := strengthMetrics
	if mode == exercise.Hypertrophy {
		src = hypertrophyMetrics
	}
	out := make([]Metric, len(src))
	copy(out, src)
	return out
}

// ExerciseQuality holds every sub-metric, each in [0,1].
type ExerciseQuality struct {
	CoreStability        float64 `json:"core_stability"`
	TrajectoryEfficiency float64 `json:"trajectory_efficiency"`
	ConcentricVelocity   float64 `json:"concentric_velocity"`
	JointStiffness       float64 `json:"joint_stiffness"`
	TimeUnderTension     float64 `json:"time_under_tension"`
	EccentricControl     float64 `json:"eccentric_control"`
	RangeOfMotion        float64 `json:"range_of_motion"`
	MuscleIsolation      float64 `json:"muscle_isolation"`
}

// NeutralQuality returns a quality with every metric at NeutralScore.
func NeutralQuality() ExerciseQuality {
	return ExerciseQuality{
		CoreStability:        NeutralScore,
		TrajectoryEfficiency: NeutralScore,
		ConcentricVelocity:   NeutralScore,
		JointStiffness:       NeutralScore,
		TimeUnderTension:     NeutralScore,
		EccentricControl:     NeutralScore,
		RangeOfMotion:        NeutralScore,
		MuscleIsolation:      NeutralScore,
	}
}

// Value returns the named metric. Unknown names read as NeutralScore.
func (q ExerciseQuality) Value(m Metric) float64 {
	switch m {
	case CoreStability:
		return q.CoreStability
	case TrajectoryEfficiency:
		return q.TrajectoryEfficiency
	case ConcentricVelocity:
		return q.ConcentricVelocity
	case JointStiffness:
		return q.JointStiffness
	case TimeUnderTension:
		return q.TimeUnderTension
	case EccentricControl:
		return q.EccentricControl
	case RangeOfMotion:
		return q.RangeOfMotion
	case MuscleIsolation:
		return q.MuscleIsolation
	}
	return NeutralScore
}

// Overall is the arithmetic mean of the mode's relevant metrics.
func (q ExerciseQuality) Overall(mode exercise.TrainingMode) float64 {
	metrics := RelevantMetrics(mode)
	vals := make([]float64, len(metrics))
	for i, m := range metrics {
		vals[i] = q.Value(m)
	}
	return clamp01(stat.Mean(vals, nil))
}

// Evaluator computes ExerciseQuality from the pose history. It holds only
// configuration and is safe for concurrent use.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates a quality evaluator.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate scores the most recent pose in history for the exercise, using
// act as the current muscle activation.
func (e *Evaluator) Evaluate(t exercise.Type, history *l3history.History, act l5activation.Activation) ExerciseQuality {
	if history == nil {
		history = l3history.NewHistory(1)
	}
	pivot, hasPivot := l4phase.PivotFor(t)
	return ExerciseQuality{
		CoreStability:        e.coreStability(history),
		TrajectoryEfficiency: e.trajectoryEfficiency(history),
		ConcentricVelocity:   e.concentricVelocity(history, pivot, hasPivot),
		JointStiffness:       e.jointStiffness(history, pivot, hasPivot),
		TimeUnderTension:     e.timeUnderTension(history, pivot, hasPivot),
		EccentricControl:     e.eccentricControl(history, pivot, hasPivot),
		RangeOfMotion:        e.rangeOfMotion(history, pivot, hasPivot),
		MuscleIsolation:      muscleIsolation(history, act),
	}
}

func (e *Evaluator) coreStability(h *l3history.History) float64 {
	if h.Len() < CoreStabilityDepth {
		return NeutralScore
	}
	spine, ok := h.Latest().Angle(l2geometry.SpineAngle)
	if !ok {
		return NeutralScore
	}
	return clamp01(1 - 2*math.Abs(spine/180-e.cfg.CoreStabilityReference))
}

// loadPoint approximates where the load sits: between the wrists, or the
// hips when the wrists are not visible.
func loadPoint(p *l2geometry.BodyPose) (r2.Vec, bool) {
	if lw, ok := p.Point(l1keypoints.LeftWrist); ok {
		if rw, ok := p.Point(l1keypoints.RightWrist); ok {
			return l2geometry.Midpoint(lw, rw), true
		}
	}
	if lh, ok := p.Point(l1keypoints.LeftHip); ok {
		if rh, ok := p.Point(l1keypoints.RightHip); ok {
			return l2geometry.Midpoint(lh, rh), true
		}
	}
	return r2.Vec{}, false
}

func (e *Evaluator) trajectoryEfficiency(h *l3history.History) float64 {
	if h.Len() < TrajectoryEfficiencyDepth {
		return NeutralScore
	}
	var pts []r2.Vec
	for _, p := range h.Last(TrajectoryEfficiencyDepth) {
		if v, ok := loadPoint(p); ok {
			pts = append(pts, v)
		}
	}
	if len(pts) < 2 {
		return NeutralScore
	}
	var path float64
	for i := 1; i < len(pts); i++ {
		path += r2.Norm(r2.Sub(pts[i], pts[i-1]))
	}
	if path == 0 {
		return 1
	}
	net := r2.Norm(r2.Sub(pts[len(pts)-1], pts[0]))
	return clamp01(net / path)
}

// pivotStep is the pivot angle change between two consecutive poses.
type pivotStep struct {
	from, to float64
	dt       float64
}

func (s pivotStep) delta() float64 { return s.to - s.from }
func (s pivotStep) speed() float64 { return math.Abs(s.delta()) / s.dt }

// pivotSteps returns the steps between consecutive poses where both pivot
// angles are known and time advanced.
func pivotSteps(poses []*l2geometry.BodyPose, pivot l2geometry.AngleID) []pivotStep {
	var out []pivotStep
	for i := 1; i < len(poses); i++ {
		a, okA := poses[i-1].Angle(pivot)
		b, okB := poses[i].Angle(pivot)
		dt := poses[i].Timestamp - poses[i-1].Timestamp
		if !okA || !okB || dt <= 0 {
			continue
		}
		out = append(out, pivotStep{from: a, to: b, dt: dt})
	}
	return out
}

func (e *Evaluator) concentricVelocity(h *l3history.History, pivot l2geometry.AngleID, hasPivot bool) float64 {
	if h.Len() < ConcentricVelocityDepth || !hasPivot {
		return NeutralScore
	}
	usable := 0
	var speeds []float64
	for _, s := range pivotSteps(h.Last(ConcentricVelocityDepth), pivot) {
		if math.Abs(s.delta()) < e.cfg.IsometricThresholdDeg {
			continue
		}
		usable++
		if s.delta() > 0 {
			speeds = append(speeds, s.speed())
		}
	}
	switch {
	case usable == 0:
		return NeutralScore
	case len(speeds) == 0:
		return 0
	}
	return clamp01(stat.Mean(speeds, nil) / e.cfg.ReferenceVelocity)
}

func (e *Evaluator) jointStiffness(h *l3history.History, pivot l2geometry.AngleID, hasPivot bool) float64 {
	if h.Len() < JointStiffnessDepth {
		return NeutralScore
	}
	poses := h.Last(JointStiffnessDepth)
	var spreads []float64
	for _, id := range l2geometry.AngleIDs() {
		if hasPivot && id == pivot {
			continue
		}
		vals := make([]float64, 0, len(poses))
		for _, p := range poses {
			if v, ok := p.Angle(id); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) != len(poses) {
			continue
		}
		spreads = append(spreads, stat.StdDev(vals, nil))
	}
	if len(spreads) == 0 {
		return NeutralScore
	}
	return clamp01(1 - stat.Mean(spreads, nil)/e.cfg.StiffnessReferenceDeg)
}

func (e *Evaluator) timeUnderTension(h *l3history.History, pivot l2geometry.AngleID, hasPivot bool) float64 {
	if h.Len() < TimeUnderTensionDepth || !hasPivot {
		return NeutralScore
	}
	var total, tension float64
	for _, s := range pivotSteps(h.All(), pivot) {
		total += s.dt
		if s.from < e.cfg.LockoutAngleDeg && s.to < e.cfg.LockoutAngleDeg {
			tension += s.dt
		}
	}
	if total == 0 {
		return NeutralScore
	}
	return clamp01(tension / total)
}

func (e *Evaluator) eccentricControl(h *l3history.History, pivot l2geometry.AngleID, hasPivot bool) float64 {
	if h.Len() < EccentricControlDepth || !hasPivot {
		return NeutralScore
	}
	var speeds []float64
	for _, s := range pivotSteps(h.All(), pivot) {
		if s.delta() <= -e.cfg.IsometricThresholdDeg {
			speeds = append(speeds, s.speed())
		}
	}
	if len(speeds) == 0 {
		return NeutralScore
	}
	return clamp01(1 - stat.Mean(speeds, nil)/e.cfg.ReferenceVelocity)
}

func (e *Evaluator) rangeOfMotion(h *l3history.History, pivot l2geometry.AngleID, hasPivot bool) float64 {
	if h.Len() < RangeOfMotionDepth || !hasPivot {
		return NeutralScore
	}
	var vals []float64
	for _, p := range h.All() {
		if v, ok := p.Angle(pivot); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) < 2 {
		return NeutralScore
	}
	return clamp01((floats.Max(vals) - floats.Min(vals)) / e.cfg.ExpectedROMDeg)
}

func muscleIsolation(h *l3history.History, act l5activation.Activation) float64 {
	if h.Len() < MuscleIsolationDepth || len(act) == 0 {
		return NeutralScore
	}
	vals := make([]float64, 0, len(act))
	for _, m := range act.Muscles() {
		vals = append(vals, act[m])
	}
	sum := floats.Sum(vals)
	if sum <= 0 {
		return NeutralScore
	}
	n := float64(len(vals))
	if n == 1 {
		return 1
	}
	share := floats.Max(vals) / sum
	return clamp01((share - 1/n) / (1 - 1/n))
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
