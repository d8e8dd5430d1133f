package check

import (
	"github.com/veldkamp-software/passfoto/internal/domain"
)

// Expression verifies the facial expression is neutral: the mouth must be
// (almost) closed and the landmark features must not show raised eyebrows
// or a strongly asymmetric mouth.
type Expression struct {
	base
	mouthOpenMax float64
}

func NewExpression(cfg Config) (*Expression, error) {
	b, err := newBase("expression", "Checks that the facial expression is neutral and the mouth closed", cfg.ExpressionThreshold)
	if err != nil {
		return nil, err
	}
	return &Expression{base: b, mouthOpenMax: cfg.MouthOpenMax}, nil
}

func (c *Expression) Evaluate(photo *domain.Photo, detection domain.Detection) (domain.CheckResult, error) {
	if err := validateImage(photo); err != nil {
		return domain.CheckResult{}, err
	}

	if !detection.FaceFound {
		return c.noFace()
	}
	if detection.Features == nil {
		return c.noLandmarks("Facial features could not be detected")
	}

	features := *detection.Features

	// Closed mouth sits around 0.05-0.15 MAR, slightly open around
	// 0.15-0.30 and wide open above that.
	mouthAspect := features.MouthAspect()

	mouthScore := 1.0
	mouthClosed := true
	if mouthAspect > c.mouthOpenMax {
		excess := mouthAspect - c.mouthOpenMax
		mouthScore = 1.0 - excess/0.3
		if mouthScore < 0 {
			mouthScore = 0
		}
		mouthClosed = false
	}

	featureScore := c.analyzeFeatures(features)

	confidence := mouthScore*0.6 + featureScore*0.4
	passed := confidence >= c.threshold

	var message string
	switch {
	case passed:
		message = "Facial expression is neutral and correct"
	case !mouthClosed:
		message = "Close your mouth for the passport photo"
	case featureScore < 0.6:
		message = "Adopt a neutral facial expression"
	default:
		message = "Facial expression is not fully neutral"
	}

	return c.result(passed, confidence, message, map[string]interface{}{
		"mouth_aspect_ratio": mouthAspect,
		"mouth_closed":       mouthClosed,
		"mouth_score":        mouthScore,
		"expression_score":   featureScore,
	})
}

// analyzeFeatures penalizes signs of a non-neutral expression: strongly
// raised eyebrows (surprise) and an off-center mouth (smirk, tilted smile).
func (c *Expression) analyzeFeatures(features domain.Features) float64 {
	score := 1.0
	if features.EyebrowRaise > 0.3 {
		score -= 0.3
	}
	if features.MouthSymmetry < 0.7 {
		score -= 0.2
	}
	if score < 0 {
		return 0
	}
	return score
}

var _ Check = (*Expression)(nil)
