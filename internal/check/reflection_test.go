package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// fillGray paints a rectangle of a single-channel Mat with one intensity.
func fillGray(img gocv.Mat, x, y, w, h int, intensity uint8) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			img.SetUCharAt(row, col, intensity)
		}
	}
}

func TestReflectionCleanImagePasses(t *testing.T) {
	c, err := NewReflection(DefaultConfig())
	require.NoError(t, err)

	photo := grayPhoto(t, 200, 200, 128)
	defer photo.Image.Close()

	result, err := c.Evaluate(photo, domain.Detection{})
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.InDelta(t, 1.0, result.Confidence, 0.001)
	assert.Equal(t, "No significant reflections detected", result.Message)
	assert.Equal(t, 0, result.Details["significant_reflections"])
}

func TestReflectionBlownOutFaceFails(t *testing.T) {
	c, err := NewReflection(DefaultConfig())
	require.NoError(t, err)

	// One large blown-out patch covering most of the face region.
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 0, 0, 0), 200, 200, gocv.MatTypeCV8UC1)
	defer img.Close()
	fillGray(img, 60, 60, 80, 80, 255)

	detection := faceDetection(domain.BoundingBox{X: 50, Y: 50, Width: 100, Height: 100})
	result, err := c.Evaluate(domain.NewPhoto(img), detection)
	require.NoError(t, err)

	// 64% of the face region reflects, far over twice the allowed ratio.
	assert.False(t, result.Passed)
	assert.Equal(t, "Strong reflection detected. Adjust the lighting", result.Message)
	assert.Equal(t, 1, result.Details["significant_reflections"])
}

func TestReflectionManySpots(t *testing.T) {
	c, err := NewReflection(DefaultConfig())
	require.NoError(t, err)

	// Five separated glare spots of 100 pixels each: the area stays under
	// the ratio limit but the spot count drags the score down.
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 0, 0, 0), 200, 200, gocv.MatTypeCV8UC1)
	defer img.Close()
	for i := 0; i < 5; i++ {
		fillGray(img, 20+i*35, 90, 10, 10, 255)
	}

	result, err := c.Evaluate(domain.NewPhoto(img), domain.Detection{})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Details["significant_reflections"])
	// ratio score 1.0, count score 1 - 3*0.15.
	assert.InDelta(t, 0.6+0.55*0.4, result.Confidence, 0.01)
}
