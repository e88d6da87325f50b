package l1keypoints

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoints(t *testing.T) {
	joints := Joints()
	assert.Len(t, joints, 14)
	for _, j := range joints {
		assert.True(t, j.Valid(), "joint %q should be valid", j)
	}
	assert.False(t, Joint("leftEar").Valid())

	// Mutating the returned slice must not leak into the package table.
	joints[0] = "bogus"
	assert.Equal(t, Nose, Joints()[0])
}

func TestDecodeFrame(t *testing.T) {
	t.Parallel()

	t.Run("decodes keypoints and confidences", func(t *testing.T) {
		t.Parallel()
		data := []byte(`{"timestamp": 1.5, "keypoints": {
			"rightKnee": {"x": 0.4, "y": 0.7, "confidence": 0.9},
			"rightHip": {"x": 0.4, "y": 0.5}
		}}`)

		f, err := DecodeFrame(data)
		require.NoError(t, err)
		assert.Equal(t, 1.5, f.Timestamp)

		p, ok := f.Point(RightKnee)
		require.True(t, ok)
		assert.Equal(t, Point{X: 0.4, Y: 0.7}, p)
		assert.Equal(t, 0.9, f.Confidence(RightKnee))

		// Missing confidence defaults to fully confident.
		assert.Equal(t, 1.0, f.Confidence(RightHip))
	})

	t.Run("ignores unknown joints", func(t *testing.T) {
		t.Parallel()
		f, err := DecodeFrame([]byte(`{"timestamp": 0, "keypoints": {"leftEar": {"x": 0.1, "y": 0.1}}}`))
		require.NoError(t, err)
		assert.Empty(t, f.Keypoints)
	})

	t.Run("clamps confidence", func(t *testing.T) {
		t.Parallel()
		f, err := DecodeFrame([]byte(`{"timestamp": 0, "keypoints": {"neck": {"x": 0.5, "y": 0.2, "confidence": 1.7}}}`))
		require.NoError(t, err)
		assert.Equal(t, 1.0, f.Confidence(Neck))
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeFrame([]byte(`{"timestamp":`))
		assert.Error(t, err)
	})
}

func TestFrameAbsentJoint(t *testing.T) {
	f := NewFrame(0)
	_, ok := f.Point(LeftAnkle)
	assert.False(t, ok)
	assert.Equal(t, 0.0, f.Confidence(LeftAnkle))
}

func TestFrameSetOnZeroValue(t *testing.T) {
	var f Frame
	require.NotPanics(t, func() { f.Set(RightKnee, Point{X: 0.4, Y: 0.6}, 1.5) })

	p, ok := f.Point(RightKnee)
	require.True(t, ok)
	assert.Equal(t, Point{X: 0.4, Y: 0.6}, p)
	assert.Equal(t, 1.0, f.Confidence(RightKnee), "confidence is clamped")
}

func TestFrameJSONRoundTrip(t *testing.T) {
	f := NewFrame(2.25)
	f.Set(LeftWrist, Point{X: 0.2, Y: 0.3}, 0.75)

	data, err := json.Marshal(f)
	require.NoError(t, err)

	got, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}
