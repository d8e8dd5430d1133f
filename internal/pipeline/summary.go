package pipeline

import (
	"github.com/veldkamp-software/passfoto/internal/domain"
)

// Summary condenses a validated photo into the verdict and the feedback a
// client shows the user.
type Summary struct {
	PhotoID    string        `json:"photo_id,omitempty"`
	Status     domain.Status `json:"status"`
	Passed     bool          `json:"passed"`
	Confidence float64       `json:"confidence"`
	Checks     int           `json:"checks"`
	Failed     int           `json:"failed"`
	Feedback   []string      `json:"feedback,omitempty"`
}

// Summarize builds the run summary. Feedback is the deduplicated list of
// failing check messages, in check order.
func Summarize(photo *domain.Photo) Summary {
	failed := photo.FailedResults()

	seen := make(map[string]struct{}, len(failed))
	feedback := make([]string, 0, len(failed))
	for _, r := range failed {
		if _, ok := seen[r.Message]; ok {
			continue
		}
		seen[r.Message] = struct{}{}
		feedback = append(feedback, r.Message)
	}

	return Summary{
		PhotoID:    photo.ID,
		Status:     photo.Status,
		Passed:     photo.IsValid(),
		Confidence: photo.OverallConfidence(),
		Checks:     len(photo.Results),
		Failed:     len(failed),
		Feedback:   feedback,
	}
}
