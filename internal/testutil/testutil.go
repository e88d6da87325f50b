// Package testutil provides shared test utilities and fixtures.
//
// The pose builders place keypoints so that the derived joint angles come
// out at the requested values, which keeps layer tests free of hand-tuned
// coordinates.
package testutil

import (
	"math"

	"github.com/banshee-data/form.report/internal/pose/l1keypoints"
)

// Angles are the target joint angles, in degrees, for a synthetic pose.
type Angles struct {
	RightKnee  float64
	LeftKnee   float64
	RightHip   float64
	LeftHip    float64
	RightElbow float64
	LeftElbow  float64
	Spine      float64
}

// Standing returns a fully extended, upright posture.
func Standing() Angles {
	return Angles{
		RightKnee:  180,
		LeftKnee:   180,
		RightHip:   180,
		LeftHip:    180,
		RightElbow: 180,
		LeftElbow:  180,
		Spine:      180,
	}
}

// Segment lengths in normalized image units.
const (
	thighLen   = 0.2
	shinLen    = 0.2
	torsoLen   = 0.25
	upperArm   = 0.15
	forearmLen = 0.15
	spineLen   = 0.3
	hipHalfGap = 0.05
)

// Frame builds a detector frame at ts whose geometry yields the requested
// angles. Every joint is present with confidence 1.
func Frame(ts float64, a Angles) l1keypoints.Frame {
	f := l1keypoints.NewFrame(ts)

	side := func(sign float64, hipJ, kneeJ, ankleJ, shoulderJ, elbowJ, wristJ l1keypoints.Joint, knee, hip, elbow float64) {
		hx, hy := 0.5+sign*hipHalfGap, 0.5
		kx, ky := hx, hy+thighLen
		k := rad(knee)
		ax, ay := kx+sign*shinLen*math.Sin(k), ky-shinLen*math.Cos(k)
		h := rad(hip)
		sx, sy := hx-sign*torsoLen*math.Sin(h), hy+torsoLen*math.Cos(h)
		ex, ey := sx, sy+upperArm
		e := rad(elbow)
		wx, wy := ex+sign*forearmLen*math.Sin(e), ey-forearmLen*math.Cos(e)

		f.Set(hipJ, l1keypoints.Point{X: hx, Y: hy}, 1)
		f.Set(kneeJ, l1keypoints.Point{X: kx, Y: ky}, 1)
		f.Set(ankleJ, l1keypoints.Point{X: ax, Y: ay}, 1)
		f.Set(shoulderJ, l1keypoints.Point{X: sx, Y: sy}, 1)
		f.Set(elbowJ, l1keypoints.Point{X: ex, Y: ey}, 1)
		f.Set(wristJ, l1keypoints.Point{X: wx, Y: wy}, 1)
	}

	side(1, l1keypoints.RightHip, l1keypoints.RightKnee, l1keypoints.RightAnkle,
		l1keypoints.RightShoulder, l1keypoints.RightElbow, l1keypoints.RightWrist,
		a.RightKnee, a.RightHip, a.RightElbow)
	side(-1, l1keypoints.LeftHip, l1keypoints.LeftKnee, l1keypoints.LeftAnkle,
		l1keypoints.LeftShoulder, l1keypoints.LeftElbow, l1keypoints.LeftWrist,
		a.LeftKnee, a.LeftHip, a.LeftElbow)

	s := rad(a.Spine)
	nx, ny := 0.5-spineLen*math.Sin(s), 0.5+spineLen*math.Cos(s)
	f.Set(l1keypoints.Neck, l1keypoints.Point{X: nx, Y: ny}, 1)
	f.Set(l1keypoints.Nose, l1keypoints.Point{X: nx, Y: ny - 0.05}, 1)

	return f
}

// Without returns a copy of f with the given joints removed.
func Without(f l1keypoints.Frame, joints ...l1keypoints.Joint) l1keypoints.Frame {
	out := l1keypoints.NewFrame(f.Timestamp)
	for j, p := range f.Keypoints {
		out.Set(j, p, f.Confidence(j))
	}
	for _, j := range joints {
		delete(out.Keypoints, j)
		delete(out.Confidences, j)
	}
	return out
}

// Sequence builds one frame per right-knee angle, spaced dt seconds apart,
// with every other angle taken from base.
func Sequence(start, dt float64, base Angles, rightKnee ...float64) []l1keypoints.Frame {
	frames := make([]l1keypoints.Frame, 0, len(rightKnee))
	for i, k := range rightKnee {
		a := base
		a.RightKnee = k
		frames = append(frames, Frame(start+float64(i)*dt, a))
	}
	return frames
}

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}
