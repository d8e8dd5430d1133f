package check

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

func TestBackgroundUniformLightPasses(t *testing.T) {
	c, err := NewBackground(DefaultConfig())
	require.NoError(t, err)

	photo := grayPhoto(t, 400, 400, 220)
	defer photo.Image.Close()

	detection := faceDetection(domain.BoundingBox{X: 150, Y: 120, Width: 100, Height: 120})
	result, err := c.Evaluate(photo, detection)
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.InDelta(t, 1.0, result.Confidence, 0.001)
	assert.Equal(t, "Background is acceptable", result.Message)
	assert.InDelta(t, 220.0, result.Details["bg_mean"], 1.0)
}

func TestBackgroundNoFace(t *testing.T) {
	c, err := NewBackground(DefaultConfig())
	require.NoError(t, err)

	photo := grayPhoto(t, 400, 400, 220)
	defer photo.Image.Close()

	result, err := c.Evaluate(photo, domain.Detection{})
	require.NoError(t, err)

	// Without a face reference the check abstains rather than fails.
	assert.True(t, result.Passed)
	assert.Equal(t, 0.5, result.Confidence)
	assert.Equal(t, "Background could not be analyzed", result.Message)
}

func TestBackgroundClutteredFails(t *testing.T) {
	c, err := NewBackground(DefaultConfig())
	require.NoError(t, err)

	// Alternating black and white vertical bars behind the subject: high
	// brightness spread and dense edges.
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 400, 400, gocv.MatTypeCV8UC1)
	defer img.Close()
	for x := 0; x < 400; x += 20 {
		fillGray(img, x, 0, 10, 400, 255)
	}
	photo := domain.NewPhoto(img)

	detection := faceDetection(domain.BoundingBox{X: 150, Y: 120, Width: 100, Height: 120})
	result, err := c.Evaluate(photo, detection)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Contains(t, []string{
		"Background contains distracting objects. Use a neutral background",
		"Background is not uniform enough. Use a plain background",
	}, result.Message)
}

func TestBackgroundStripsCoverFrame(t *testing.T) {
	subject := image.Rect(100, 80, 300, 350)
	strips := backgroundStrips(subject, 400, 400)

	area := 0
	for _, s := range strips {
		assert.True(t, s.Intersect(subject).Empty(), "strip overlaps subject")
		area += s.Dx() * s.Dy()
	}
	assert.Equal(t, 400*400-subject.Dx()*subject.Dy(), area)
}

func TestSubjectRectClamped(t *testing.T) {
	r := subjectRect(domain.BoundingBox{X: 10, Y: 10, Width: 300, Height: 300}, 400, 400)
	assert.True(t, r.In(image.Rect(0, 0, 400, 400)))
}
