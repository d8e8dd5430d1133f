// Package check contains the compliance checks a passport photo must pass.
// Every check is a stateless strategy with a single configurable threshold:
// it computes a graded confidence in [0, 1] from the image and the landmark
// detection, compares it against the threshold and produces a CheckResult
// with actionable feedback.
package check

import (
	"github.com/veldkamp-software/passfoto/internal/domain"
)

// Check is the contract shared by all compliance checks. Implementations
// hold no mutable state beyond their threshold and tunable constants, so a
// single instance is safe for concurrent use on different photos.
type Check interface {
	// Name is the stable identifier used in results and for dynamic
	// registration/removal on the pipeline.
	Name() string

	// Description says what the check verifies, for reports and docs.
	Description() string

	// Threshold is the minimum confidence required to pass.
	Threshold() float64

	// Evaluate scores one photo against one landmark detection. It returns
	// domain.ErrInvalidImage when the photo carries no usable image data;
	// a missing face is not an error but an automatic fail with
	// confidence 0.
	Evaluate(photo *domain.Photo, detection domain.Detection) (domain.CheckResult, error)
}

// base carries the name/description/threshold plumbing shared by all
// checks.
type base struct {
	name        string
	description string
	threshold   float64
}

func newBase(name, description string, threshold float64) (base, error) {
	if threshold < 0.0 || threshold > 1.0 {
		return base{}, domain.ErrInvalidThreshold
	}
	return base{name: name, description: description, threshold: threshold}, nil
}

func (b *base) Name() string        { return b.name }
func (b *base) Description() string { return b.description }
func (b *base) Threshold() float64  { return b.threshold }

// SetThreshold replaces the pass threshold. Out-of-range values are
// rejected, never clamped.
func (b *base) SetThreshold(threshold float64) error {
	if threshold < 0.0 || threshold > 1.0 {
		return domain.ErrInvalidThreshold
	}
	b.threshold = threshold
	return nil
}

func (b *base) result(passed bool, confidence float64, message string, details map[string]interface{}) (domain.CheckResult, error) {
	return domain.NewCheckResult(b.name, passed, confidence, message, details)
}

func (b *base) noFace() (domain.CheckResult, error) {
	return b.result(false, 0.0,
		"No face detected. Make sure your face is fully visible",
		map[string]interface{}{"error": "no_face_detected"})
}

func (b *base) noLandmarks(message string) (domain.CheckResult, error) {
	return b.result(false, 0.0, message, map[string]interface{}{"error": "no_landmarks"})
}

func validateImage(photo *domain.Photo) error {
	if photo == nil || photo.Image.Empty() {
		return domain.ErrInvalidImage
	}
	return nil
}

// Defaults builds the full check set in the fixed registration order used by
// the validation pipeline.
func Defaults(cfg Config) ([]Check, error) {
	brightness, err := NewBrightness(cfg)
	if err != nil {
		return nil, err
	}
	sharpness, err := NewSharpness(cfg)
	if err != nil {
		return nil, err
	}
	position, err := NewFacePosition(cfg)
	if err != nil {
		return nil, err
	}
	expression, err := NewExpression(cfg)
	if err != nil {
		return nil, err
	}
	eyes, err := NewEyeVisibility(cfg)
	if err != nil {
		return nil, err
	}
	reflection, err := NewReflection(cfg)
	if err != nil {
		return nil, err
	}
	shadow, err := NewShadow(cfg)
	if err != nil {
		return nil, err
	}
	headwear, err := NewHeadwear(cfg)
	if err != nil {
		return nil, err
	}
	background, err := NewBackground(cfg)
	if err != nil {
		return nil, err
	}

	return []Check{
		brightness,
		sharpness,
		position,
		expression,
		eyes,
		reflection,
		shadow,
		headwear,
		background,
	}, nil
}
