package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

func TestFacePositionNoFace(t *testing.T) {
	c, err := NewFacePosition(DefaultConfig())
	require.NoError(t, err)

	photo := grayPhoto(t, 400, 400, 128)
	defer photo.Image.Close()

	result, err := c.Evaluate(photo, domain.Detection{})
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "No face detected. Make sure your face is fully visible", result.Message)
}

func TestFacePositionCentered(t *testing.T) {
	c, err := NewFacePosition(DefaultConfig())
	require.NoError(t, err)

	photo := grayPhoto(t, 400, 400, 128)
	defer photo.Image.Close()

	// Centered, 11% of the frame, aspect ratio 0.8.
	detection := faceDetection(domain.BoundingBox{X: 140, Y: 140, Width: 120, Height: 150})
	result, err := c.Evaluate(photo, detection)
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.InDelta(t, 1.0, result.Confidence, 0.05)
	assert.Equal(t, "Face position is correct", result.Message)
}

func TestFacePositionOffCenterFeedback(t *testing.T) {
	c, err := NewFacePosition(DefaultConfig())
	require.NoError(t, err)

	photo := grayPhoto(t, 400, 400, 128)
	defer photo.Image.Close()

	// Tiny face tucked in the top-left corner: badly off center and too
	// far away at the same time.
	detection := faceDetection(domain.BoundingBox{X: 0, Y: 0, Width: 30, Height: 40})
	result, err := c.Evaluate(photo, detection)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, "Move further to the right in the frame", result.Message)
}

func TestFacePositionTooFarAway(t *testing.T) {
	c, err := NewFacePosition(DefaultConfig())
	require.NoError(t, err)

	photo := grayPhoto(t, 400, 400, 128)
	defer photo.Image.Close()

	// Centered but tiny and oddly proportioned, so the distance feedback
	// wins over the centering feedback.
	detection := faceDetection(domain.BoundingBox{X: 150, Y: 260, Width: 40, Height: 20})
	result, err := c.Evaluate(photo, detection)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, "Move closer to the camera", result.Message)
}
