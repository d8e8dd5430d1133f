// Package pipeline orchestrates a photo validation run: one landmark pass,
// the configured checks in order, and progress events to any number of
// observer sinks along the way.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/veldkamp-software/passfoto/internal/check"
	"github.com/veldkamp-software/passfoto/internal/domain"
	"github.com/veldkamp-software/passfoto/internal/provider"
)

// Service runs photos through the check set. It is safe for concurrent use:
// the check list is guarded and each run only mutates its own photo.
type Service struct {
	mu       sync.RWMutex
	provider provider.LandmarkProvider
	checks   []check.Check
	sinks    []Sink
	log      *slog.Logger
}

// New creates a validation service with the given landmark provider and
// check set. Checks run in slice order on every photo.
func New(landmarkProvider provider.LandmarkProvider, checks []check.Check, log *slog.Logger) *Service {
	return &Service{
		provider: landmarkProvider,
		checks:   checks,
		log:      log,
	}
}

// AddSink registers an observer for all subsequent runs.
func (s *Service) AddSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// AddCheck appends a check to the run order.
func (s *Service) AddCheck(c check.Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, c)
}

// RemoveCheck removes the named check. Returns false when no check carries
// that name.
func (s *Service) RemoveCheck(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.checks {
		if c.Name() == name {
			s.checks = append(s.checks[:i], s.checks[i+1:]...)
			return true
		}
	}
	return false
}

// Checks returns a copy of the current check order.
func (s *Service) Checks() []check.Check {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]check.Check, len(s.checks))
	copy(out, s.checks)
	return out
}

// Validate runs the full check set over one photo. The photo accumulates
// exactly one result per configured check; a check that errors or panics
// contributes a failed result instead of aborting the run. The returned
// error covers broken input and provider failures only, never a photo that
// merely fails checks.
func (s *Service) Validate(ctx context.Context, photo *domain.Photo) error {
	if photo == nil || photo.Image.Empty() {
		return domain.ErrInvalidImage
	}

	s.mu.RLock()
	checks := make([]check.Check, len(s.checks))
	copy(checks, s.checks)
	s.mu.RUnlock()

	total := len(checks)

	s.publish(ctx, Event{
		Type:    EventProgress,
		PhotoID: photo.ID,
		Message: "Detecting face...",
		Step:    0,
		Total:   total,
	})

	detection, err := s.provider.Detect(ctx, photo.Image)
	if err != nil {
		return fmt.Errorf("detect face: %w", err)
	}

	s.publish(ctx, Event{
		Type:       EventFaceDetection,
		PhotoID:    photo.ID,
		FaceFound:  detection.FaceFound,
		Confidence: detection.Confidence,
	})

	for i, c := range checks {
		s.publish(ctx, Event{
			Type:    EventProgress,
			PhotoID: photo.ID,
			Message: fmt.Sprintf("Running %s... (%d/%d)", c.Name(), i+1, total),
			Step:    i + 1,
			Total:   total,
		})

		result := s.runCheck(ctx, c, photo, detection)
		photo.AddResult(result)

		s.publish(ctx, Event{
			Type:    EventResult,
			PhotoID: photo.ID,
			Result:  &result,
		})
	}

	s.publish(ctx, Event{
		Type:       EventComplete,
		PhotoID:    photo.ID,
		Passed:     photo.IsValid(),
		Status:     photo.Status,
		Confidence: photo.OverallConfidence(),
	})

	return nil
}

// runCheck evaluates one check and converts failures of the check itself
// into a failed result, so a run always yields one result per check.
func (s *Service) runCheck(ctx context.Context, c check.Check, photo *domain.Photo, detection domain.Detection) (result domain.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "check panicked",
				slog.String("check", c.Name()),
				slog.Any("panic", r))
			result = failedResult(c.Name(), fmt.Sprintf("panic: %v", r))
		}
	}()

	result, err := c.Evaluate(photo, detection)
	if err != nil {
		s.log.ErrorContext(ctx, "check failed to run",
			slog.String("check", c.Name()),
			slog.String("error", err.Error()))
		return failedResult(c.Name(), err.Error())
	}
	return result
}

func failedResult(name, cause string) domain.CheckResult {
	result, _ := domain.NewCheckResult(name, false, 0.0,
		"Check could not be completed",
		map[string]interface{}{"error": cause})
	return result
}

// publish fans an event out to every sink. Sink errors and panics are
// logged and swallowed; observation never breaks validation.
func (s *Service) publish(ctx context.Context, event Event) {
	s.mu.RLock()
	sinks := make([]Sink, len(s.sinks))
	copy(sinks, s.sinks)
	s.mu.RUnlock()

	for _, sink := range sinks {
		s.notifySink(ctx, sink, event)
	}
}

func (s *Service) notifySink(ctx context.Context, sink Sink, event Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "event sink panicked",
				slog.String("event", string(event.Type)),
				slog.Any("panic", r))
		}
	}()

	if err := sink.Notify(ctx, event); err != nil {
		s.log.WarnContext(ctx, "event sink failed",
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()))
	}
}
