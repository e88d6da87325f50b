package l6assessment

import (
	"math"

	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l1keypoints"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l5activation"
)

// Rule is one independent technique check. Check reports whether the fault
// is present in the pose; a missing input never fires.
type Rule struct {
	Code  ExerciseError
	Check func(cfg Config, pose *l2geometry.BodyPose) bool
}

// Not yet modeled. These checks return a fixed value until a real heuristic
// replaces them.
func always(Config, *l2geometry.BodyPose) bool { return true }
func never(Config, *l2geometry.BodyPose) bool  { return false }

var rules = map[exercise.Type][]Rule{
	exercise.Squat: {
		{KneeValgus, kneeValgus},
		{InsufficientDepth, insufficientDepth},
		{ExcessiveTorsoLean, excessiveTorsoLean},
	},
	exercise.Deadlift: {
		{LumbarFlexion, never},
		{SuboptimalBarPath, always},
	},
	exercise.BenchPress: {
		{AsymmetricMovement, asymmetricElbows},
		{ExcessiveArch, always},
	},
}

// RulesFor returns the ordered checks for an exercise. Exercises without
// rules return nil.
func RulesFor(t exercise.Type) []Rule {
	src, ok := rules[t]
	if !ok {
		return nil
	}
	out := make([]Rule, len(src))
	copy(out, src)
	return out
}

// Detector evaluates technique rules against a single pose.
type Detector struct {
	cfg Config
}

// NewDetector creates a technique error detector.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect runs every rule for the exercise and returns the codes that fired
// in rule order. The result is never nil.
func (d *Detector) Detect(t exercise.Type, pose *l2geometry.BodyPose) []ExerciseError {
	return d.DetectWith(rules[t], pose)
}

// DetectWith runs an explicit rule set. Duplicate codes are reported once.
func (d *Detector) DetectWith(set []Rule, pose *l2geometry.BodyPose) []ExerciseError {
	out := make([]ExerciseError, 0, len(set))
	seen := make(map[ExerciseError]bool, len(set))
	for _, r := range set {
		if seen[r.Code] || r.Check == nil || !r.Check(d.cfg, pose) {
			continue
		}
		seen[r.Code] = true
		out = append(out, r.Code)
	}
	return out
}

func insufficientDepth(cfg Config, pose *l2geometry.BodyPose) bool {
	knee, ok := pose.Angle(l2geometry.RightKneeAngle)
	if !ok {
		return false
	}
	return 1-l5activation.Normalize(knee) < cfg.SquatDepthThreshold
}

func excessiveTorsoLean(cfg Config, pose *l2geometry.BodyPose) bool {
	spine, ok := pose.Angle(l2geometry.SpineAngle)
	return ok && spine < cfg.TorsoLeanMinSpineDeg
}

func asymmetricElbows(cfg Config, pose *l2geometry.BodyPose) bool {
	r, okR := pose.Angle(l2geometry.RightElbowAngle)
	l, okL := pose.Angle(l2geometry.LeftElbowAngle)
	return okR && okL && math.Abs(r-l) > cfg.BenchAsymmetryMaxDeg
}

// kneeValgus flags knees tracking inside both the hips and the ankles. It
// only runs when KneeValgusHeuristic is enabled; otherwise it never fires.
func kneeValgus(cfg Config, pose *l2geometry.BodyPose) bool {
	if !cfg.KneeValgusHeuristic {
		return false
	}
	gap := func(left, right l1keypoints.Joint) (float64, bool) {
		l, okL := pose.Point(left)
		r, okR := pose.Point(right)
		if !okL || !okR {
			return 0, false
		}
		return math.Abs(r.X - l.X), true
	}
	knees, ok1 := gap(l1keypoints.LeftKnee, l1keypoints.RightKnee)
	hips, ok2 := gap(l1keypoints.LeftHip, l1keypoints.RightHip)
	ankles, ok3 := gap(l1keypoints.LeftAnkle, l1keypoints.RightAnkle)
	if !ok1 || !ok2 || !ok3 {
		return false
	}
	return knees < cfg.KneeValgusRatio*math.Min(hips, ankles)
}
