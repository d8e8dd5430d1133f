package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// A failed verdict and a no-face detection must still carry their boolean
// and score fields on the wire; observers cannot tell false from absent
// otherwise.
func TestEventSerializesNegativeOutcomes(t *testing.T) {
	complete := Event{
		Type:       EventComplete,
		PhotoID:    "p1",
		Passed:     false,
		Status:     domain.StatusRejected,
		Confidence: 0.0,
	}
	raw, err := json.Marshal(complete)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, false, fields["passed"])
	assert.Equal(t, 0.0, fields["confidence"])

	noFace := Event{
		Type:       EventFaceDetection,
		PhotoID:    "p1",
		FaceFound:  false,
		Confidence: 0.0,
	}
	raw, err = json.Marshal(noFace)
	require.NoError(t, err)

	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, false, fields["face_found"])
	assert.Equal(t, 0.0, fields["confidence"])
}
