package l2geometry

import (
	"github.com/banshee-data/form.report/internal/pose/l1keypoints"
	"gonum.org/v1/gonum/spatial/r2"
)

// BodyPose is a detector frame enriched with derived geometry. Angles and
// Vectors are computed by Computer, never supplied by the detector.
type BodyPose struct {
	Keypoints   map[l1keypoints.Joint]l1keypoints.Point
	Confidences map[l1keypoints.Joint]float64
	Angles      map[AngleID]float64 // degrees in [0,180]; absent = unknown
	Vectors     map[Limb]r2.Vec     // normalized image-space displacements
	Timestamp   float64             // seconds, monotonically increasing
}

// Angle returns the named joint angle and whether it could be computed.
func (p *BodyPose) Angle(id AngleID) (float64, bool) {
	if p == nil {
		return 0, false
	}
	v, ok := p.Angles[id]
	return v, ok
}

// Vector returns the named limb vector and whether it could be computed.
func (p *BodyPose) Vector(l Limb) (r2.Vec, bool) {
	if p == nil {
		return r2.Vec{}, false
	}
	v, ok := p.Vectors[l]
	return v, ok
}

// Point returns the keypoint for j as a vector and whether it was detected.
func (p *BodyPose) Point(j l1keypoints.Joint) (r2.Vec, bool) {
	if p == nil {
		return r2.Vec{}, false
	}
	kp, ok := p.Keypoints[j]
	if !ok {
		return r2.Vec{}, false
	}
	return r2.Vec{X: kp.X, Y: kp.Y}, true
}

// Clone returns a deep copy of the pose so it can be handed to a consumer
// without sharing maps with the history buffer.
func (p *BodyPose) Clone() *BodyPose {
	if p == nil {
		return nil
	}
	out := &BodyPose{
		Keypoints:   make(map[l1keypoints.Joint]l1keypoints.Point, len(p.Keypoints)),
		Confidences: make(map[l1keypoints.Joint]float64, len(p.Confidences)),
		Angles:      make(map[AngleID]float64, len(p.Angles)),
		Vectors:     make(map[Limb]r2.Vec, len(p.Vectors)),
		Timestamp:   p.Timestamp,
	}
	for k, v := range p.Keypoints {
		out.Keypoints[k] = v
	}
	for k, v := range p.Confidences {
		out.Confidences[k] = v
	}
	for k, v := range p.Angles {
		out.Angles[k] = v
	}
	for k, v := range p.Vectors {
		out.Vectors[k] = v
	}
	return out
}
