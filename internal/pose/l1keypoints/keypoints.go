package l1keypoints

import (
	"encoding/json"
	"fmt"
)

// Joint identifies an anatomical landmark reported by the pose detector.
type Joint string

const (
	Nose          Joint = "nose"
	Neck          Joint = "neck"
	LeftShoulder  Joint = "leftShoulder"
	RightShoulder Joint = "rightShoulder"
	LeftElbow     Joint = "leftElbow"
	RightElbow    Joint = "rightElbow"
	LeftWrist     Joint = "leftWrist"
	RightWrist    Joint = "rightWrist"
	LeftHip       Joint = "leftHip"
	RightHip      Joint = "rightHip"
	LeftKnee      Joint = "leftKnee"
	RightKnee     Joint = "rightKnee"
	LeftAnkle     Joint = "leftAnkle"
	RightAnkle    Joint = "rightAnkle"
)

// allJoints lists every joint in a stable order.
var allJoints = []Joint{
	Nose, Neck,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
}

// Joints returns every known joint in a stable order.
func Joints() []Joint {
	out := make([]Joint, len(allJoints))
	copy(out, allJoints)
	return out
}

// Valid reports whether j is one of the known joints.
func (j Joint) Valid() bool {
	for _, k := range allJoints {
		if k == j {
			return true
		}
	}
	return false
}

// Point is a position in normalized image coordinates, [0,1]x[0,1] with
// the origin at the top-left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is one detector output: keypoint positions, per-joint confidence,
// and a monotonically increasing timestamp in seconds.
type Frame struct {
	Timestamp   float64
	Keypoints   map[Joint]Point
	Confidences map[Joint]float64
}

// NewFrame returns an empty frame at the given timestamp.
func NewFrame(timestamp float64) Frame {
	return Frame{
		Timestamp:   timestamp,
		Keypoints:   make(map[Joint]Point),
		Confidences: make(map[Joint]float64),
	}
}

// Set records a keypoint and its confidence. Confidence is clamped to [0,1].
// The maps of a zero Frame are allocated on first use.
func (f *Frame) Set(j Joint, p Point, confidence float64) {
	if f.Keypoints == nil {
		f.Keypoints = make(map[Joint]Point)
	}
	if f.Confidences == nil {
		f.Confidences = make(map[Joint]float64)
	}
	f.Keypoints[j] = p
	f.Confidences[j] = clamp01(confidence)
}

// Point returns the keypoint for j and whether it was detected.
func (f Frame) Point(j Joint) (Point, bool) {
	p, ok := f.Keypoints[j]
	return p, ok
}

// Confidence returns the detection confidence for j. Joints with a
// position but no recorded confidence are reported as fully confident.
func (f Frame) Confidence(j Joint) float64 {
	if c, ok := f.Confidences[j]; ok {
		return c
	}
	if _, ok := f.Keypoints[j]; ok {
		return 1
	}
	return 0
}

// wireKeypoint is the JSON shape of one keypoint in a detector frame.
type wireKeypoint struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// wireFrame is the JSON shape of a detector frame.
type wireFrame struct {
	Timestamp float64                 `json:"timestamp"`
	Keypoints map[string]wireKeypoint `json:"keypoints"`
}

// MarshalJSON encodes the frame in the detector wire format.
func (f Frame) MarshalJSON() ([]byte, error) {
	w := wireFrame{
		Timestamp: f.Timestamp,
		Keypoints: make(map[string]wireKeypoint, len(f.Keypoints)),
	}
	for j, p := range f.Keypoints {
		c := f.Confidence(j)
		w.Keypoints[string(j)] = wireKeypoint{X: p.X, Y: p.Y, Confidence: &c}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a detector frame. Unknown joint names are ignored
// rather than rejected.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = NewFrame(w.Timestamp)
	for name, kp := range w.Keypoints {
		j := Joint(name)
		if !j.Valid() {
			continue
		}
		c := 1.0
		if kp.Confidence != nil {
			c = *kp.Confidence
		}
		f.Set(j, Point{X: kp.X, Y: kp.Y}, c)
	}
	return nil
}

// DecodeFrame parses a single JSON-encoded detector frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("failed to decode frame: %w", err)
	}
	return f, nil
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
