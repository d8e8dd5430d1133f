package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/veldkamp-software/passfoto/internal/pipeline"
)

// Sink forwards completed validation runs to subscribed webhooks. Progress
// and per-check events stay internal; only the final verdict leaves the
// service.
type Sink struct {
	service *Service
	logger  *slog.Logger
}

func NewSink(service *Service, logger *slog.Logger) *Sink {
	return &Sink{service: service, logger: logger}
}

func (s *Sink) Notify(ctx context.Context, event pipeline.Event) error {
	if event.Type != pipeline.EventComplete {
		return nil
	}

	webhooks, err := s.service.GetWebhooksByEvent(ctx, EventPhotoValidated)
	if err != nil {
		return err
	}

	payload := EventPayload{
		Type: EventPhotoValidated,
		Data: map[string]interface{}{
			"photo_id":   event.PhotoID,
			"passed":     event.Passed,
			"status":     event.Status,
			"confidence": event.Confidence,
		},
		Timestamp: time.Now(),
	}

	for _, webhook := range webhooks {
		// Send enqueues its own retry on delivery failure; an error here
		// means even enqueueing failed.
		if err := s.service.Send(ctx, webhook, payload); err != nil {
			s.logger.Warn("webhook delivery could not be queued",
				"webhook_id", webhook.ID,
				"url", webhook.URL,
				"error", err,
			)
		}
	}

	return nil
}
