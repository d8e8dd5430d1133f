package pipeline

import (
	"context"
	"log/slog"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// EventType names the stages a validation run reports on.
type EventType string

const (
	// EventFaceDetection fires once per run, after the landmark pass.
	EventFaceDetection EventType = "face_detection"
	// EventProgress fires before the detection pass and before each check.
	EventProgress EventType = "validation_progress"
	// EventResult fires after each individual check.
	EventResult EventType = "validation_result"
	// EventComplete fires once at the end of a run.
	EventComplete EventType = "validation_complete"
)

// Event is one observation of a running validation. Only the fields
// relevant to the event type are set.
type Event struct {
	Type    EventType `json:"type"`
	PhotoID string    `json:"photo_id,omitempty"`

	// Progress fields.
	Message string `json:"message,omitempty"`
	Step    int    `json:"step,omitempty"`
	Total   int    `json:"total,omitempty"`

	// Face detection fields. Not omitempty: a failed detection must still
	// serialize face_found and confidence so clients can tell false from
	// absent.
	FaceFound  bool    `json:"face_found"`
	Confidence float64 `json:"confidence"`

	// Per-check result.
	Result *domain.CheckResult `json:"result,omitempty"`

	// Completion fields.
	Passed bool          `json:"passed"`
	Status domain.Status `json:"status,omitempty"`
}

// Sink receives validation events. Implementations must not block for long;
// the pipeline calls them synchronously between checks. A failing or
// panicking sink never fails the run.
type Sink interface {
	Notify(ctx context.Context, event Event) error
}

// SlogSink logs every event through a structured logger. It is the sink the
// service installs by default so a bare pipeline is still observable.
type SlogSink struct {
	log *slog.Logger
}

func NewSlogSink(log *slog.Logger) *SlogSink {
	return &SlogSink{log: log}
}

func (s *SlogSink) Notify(ctx context.Context, event Event) error {
	attrs := []any{
		slog.String("event", string(event.Type)),
		slog.String("photo_id", event.PhotoID),
	}

	switch event.Type {
	case EventProgress:
		attrs = append(attrs,
			slog.String("message", event.Message),
			slog.Int("step", event.Step),
			slog.Int("total", event.Total))
		s.log.DebugContext(ctx, "validation progress", attrs...)
	case EventFaceDetection:
		attrs = append(attrs,
			slog.Bool("face_found", event.FaceFound),
			slog.Float64("confidence", event.Confidence))
		s.log.InfoContext(ctx, "face detection finished", attrs...)
	case EventResult:
		if event.Result != nil {
			attrs = append(attrs,
				slog.String("check", event.Result.CheckName),
				slog.Bool("passed", event.Result.Passed),
				slog.Float64("confidence", event.Result.Confidence))
		}
		s.log.InfoContext(ctx, "check finished", attrs...)
	case EventComplete:
		attrs = append(attrs,
			slog.Bool("passed", event.Passed),
			slog.String("status", string(event.Status)),
			slog.Float64("confidence", event.Confidence))
		s.log.InfoContext(ctx, "validation finished", attrs...)
	default:
		s.log.DebugContext(ctx, "validation event", attrs...)
	}

	return nil
}
