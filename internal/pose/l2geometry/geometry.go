package l2geometry

import (
	"math"

	"github.com/banshee-data/form.report/internal/config"
	"github.com/banshee-data/form.report/internal/pose/l1keypoints"
	"gonum.org/v1/gonum/spatial/r2"
)

// AngleID identifies a derived joint angle.
type AngleID string

const (
	RightKneeAngle     AngleID = "rightKnee"
	LeftKneeAngle      AngleID = "leftKnee"
	RightHipAngle      AngleID = "rightHip"
	LeftHipAngle       AngleID = "leftHip"
	RightElbowAngle    AngleID = "rightElbow"
	LeftElbowAngle     AngleID = "leftElbow"
	RightShoulderAngle AngleID = "rightShoulder"
	LeftShoulderAngle  AngleID = "leftShoulder"
	SpineAngle         AngleID = "spine"
)

// AngleIDs returns every derived angle in a stable order.
func AngleIDs() []AngleID {
	return []AngleID{
		RightKneeAngle, LeftKneeAngle,
		RightHipAngle, LeftHipAngle,
		RightElbowAngle, LeftElbowAngle,
		RightShoulderAngle, LeftShoulderAngle,
		SpineAngle,
	}
}

// Limb identifies a derived limb displacement vector.
type Limb string

const (
	RightUpperArm Limb = "rightUpperArm"
	LeftUpperArm  Limb = "leftUpperArm"
	RightForearm  Limb = "rightForearm"
	LeftForearm   Limb = "leftForearm"
	RightThigh    Limb = "rightThigh"
	LeftThigh     Limb = "leftThigh"
	RightShin     Limb = "rightShin"
	LeftShin      Limb = "leftShin"
	ShoulderLine  Limb = "shoulders"
	HipLine       Limb = "hips"
	Spine         Limb = "spine"
)

// jointTriple defines an angle at vertex B formed by A-B-C.
type jointTriple struct {
	id      AngleID
	a, b, c l1keypoints.Joint
}

var angleDefs = []jointTriple{
	{RightKneeAngle, l1keypoints.RightHip, l1keypoints.RightKnee, l1keypoints.RightAnkle},
	{LeftKneeAngle, l1keypoints.LeftHip, l1keypoints.LeftKnee, l1keypoints.LeftAnkle},
	{RightHipAngle, l1keypoints.RightShoulder, l1keypoints.RightHip, l1keypoints.RightKnee},
	{LeftHipAngle, l1keypoints.LeftShoulder, l1keypoints.LeftHip, l1keypoints.LeftKnee},
	{RightElbowAngle, l1keypoints.RightShoulder, l1keypoints.RightElbow, l1keypoints.RightWrist},
	{LeftElbowAngle, l1keypoints.LeftShoulder, l1keypoints.LeftElbow, l1keypoints.LeftWrist},
	{RightShoulderAngle, l1keypoints.RightElbow, l1keypoints.RightShoulder, l1keypoints.RightHip},
	{LeftShoulderAngle, l1keypoints.LeftElbow, l1keypoints.LeftShoulder, l1keypoints.LeftHip},
}

// jointPair defines a limb vector from one joint to another.
type jointPair struct {
	limb     Limb
	from, to l1keypoints.Joint
}

var limbDefs = []jointPair{
	{RightUpperArm, l1keypoints.RightShoulder, l1keypoints.RightElbow},
	{LeftUpperArm, l1keypoints.LeftShoulder, l1keypoints.LeftElbow},
	{RightForearm, l1keypoints.RightElbow, l1keypoints.RightWrist},
	{LeftForearm, l1keypoints.LeftElbow, l1keypoints.LeftWrist},
	{RightThigh, l1keypoints.RightHip, l1keypoints.RightKnee},
	{LeftThigh, l1keypoints.LeftHip, l1keypoints.LeftKnee},
	{RightShin, l1keypoints.RightKnee, l1keypoints.RightAnkle},
	{LeftShin, l1keypoints.LeftKnee, l1keypoints.LeftAnkle},
	{ShoulderLine, l1keypoints.LeftShoulder, l1keypoints.RightShoulder},
	{HipLine, l1keypoints.LeftHip, l1keypoints.RightHip},
}

// verticalDown is the image-space reference direction for the spine angle.
// Image Y grows downward, so an upright torso measures close to 180°.
var verticalDown = r2.Vec{X: 0, Y: 1}

// AngleAt returns the unsigned interior angle at vertex b formed by a-b-c,
// in degrees within [0,180]. Coincident points yield 0.
func AngleAt(a, b, c r2.Vec) float64 {
	ba := r2.Sub(a, b)
	bc := r2.Sub(c, b)
	rad := math.Atan2(r2.Cross(ba, bc), r2.Dot(ba, bc))
	return math.Abs(rad) * 180 / math.Pi
}

// Config holds geometry parameters.
type Config struct {
	// MinConfidence drops keypoints whose detection confidence falls below
	// it. Zero keeps every keypoint.
	MinConfidence float64
}

// DefaultConfig returns the built-in geometry configuration.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{MinConfidence: cfg.GetMinKeypointConfidence()}
}

// Computer derives BodyPose geometry from detector frames. It is stateless
// and safe for concurrent use.
type Computer struct {
	cfg Config
}

// NewComputer creates a geometry computer.
func NewComputer(cfg Config) *Computer {
	return &Computer{cfg: cfg}
}

// Compute builds a BodyPose from a detector frame. Angles and vectors whose
// defining keypoints are missing (or below the confidence floor) are
// omitted.
func (gc *Computer) Compute(frame l1keypoints.Frame) *BodyPose {
	pose := &BodyPose{
		Keypoints:   make(map[l1keypoints.Joint]l1keypoints.Point, len(frame.Keypoints)),
		Confidences: make(map[l1keypoints.Joint]float64, len(frame.Keypoints)),
		Angles:      make(map[AngleID]float64, len(angleDefs)+1),
		Vectors:     make(map[Limb]r2.Vec, len(limbDefs)+1),
		Timestamp:   frame.Timestamp,
	}
	for j, p := range frame.Keypoints {
		pose.Keypoints[j] = p
		pose.Confidences[j] = frame.Confidence(j)
	}

	lookup := func(j l1keypoints.Joint) (r2.Vec, bool) {
		p, ok := frame.Point(j)
		if !ok {
			return r2.Vec{}, false
		}
		if gc.cfg.MinConfidence > 0 && frame.Confidence(j) < gc.cfg.MinConfidence {
			return r2.Vec{}, false
		}
		return r2.Vec{X: p.X, Y: p.Y}, true
	}

	for _, def := range angleDefs {
		a, okA := lookup(def.a)
		b, okB := lookup(def.b)
		c, okC := lookup(def.c)
		if okA && okB && okC {
			pose.Angles[def.id] = AngleAt(a, b, c)
		}
	}

	for _, def := range limbDefs {
		from, okFrom := lookup(def.from)
		to, okTo := lookup(def.to)
		if okFrom && okTo {
			pose.Vectors[def.limb] = r2.Sub(to, from)
		}
	}

	neck, okNeck := lookup(l1keypoints.Neck)
	lh, okLH := lookup(l1keypoints.LeftHip)
	rh, okRH := lookup(l1keypoints.RightHip)
	if okNeck && okLH && okRH {
		mid := Midpoint(lh, rh)
		pose.Vectors[Spine] = r2.Sub(neck, mid)
		pose.Angles[SpineAngle] = AngleAt(neck, mid, r2.Add(mid, verticalDown))
	}

	return pose
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q r2.Vec) r2.Vec {
	return r2.Scale(0.5, r2.Add(p, q))
}
