package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

func TestBrightnessEvaluate(t *testing.T) {
	c, err := NewBrightness(DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name       string
		intensity  float64
		passed     bool
		message    string
		confidence float64
	}{
		{
			name:       "well lit",
			intensity:  140,
			passed:     true,
			message:    "Lighting is correct",
			confidence: 1.0,
		},
		{
			name:      "too dark",
			intensity: 20,
			passed:    false,
			message:   "Photo is too dark. Use more light",
			// mean 30 below the minimum wipes out the brightness score, but
			// intensity 20 sits above the 0-14 underexposed tail, so the
			// extreme score stays 1.
			confidence: 0.3,
		},
		{
			name:      "crushed shadows",
			intensity: 10,
			passed:    false,
			message:   "Photo is too dark. Use more light",
			// brightness score 0 and the whole histogram inside the
			// underexposed tail zeroes the extreme score too.
			confidence: 0.0,
		},
		{
			name:      "too bright",
			intensity: 250,
			passed:    false,
			message:   "Photo is too bright. Reduce the lighting",
			// brightness score 1 - 20/30, extreme score 0.
			confidence: (1.0 - 20.0/30.0) * 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photo := grayPhoto(t, 200, 200, tt.intensity)
			defer photo.Image.Close()

			result, err := c.Evaluate(photo, domain.Detection{})
			require.NoError(t, err)

			assert.Equal(t, "brightness", result.CheckName)
			assert.Equal(t, tt.passed, result.Passed)
			assert.Equal(t, tt.message, result.Message)
			assert.InDelta(t, tt.confidence, result.Confidence, 0.01)
		})
	}
}
