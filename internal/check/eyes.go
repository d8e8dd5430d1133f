package check

import (
	"fmt"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// EyeVisibility verifies both eyes are open and not covered by glare or
// hair. Openness comes from the per-eye aspect ratio, coverage from the
// fraction of blown-out pixels inside each eye region. An eye below the
// closed breakpoint fails the check no matter how the blended confidence
// turns out.
type EyeVisibility struct {
	base
	closedAspect float64
	openAspect   float64
}

func NewEyeVisibility(cfg Config) (*EyeVisibility, error) {
	b, err := newBase("eye_visibility", "Checks that both eyes are clearly visible and open", cfg.EyeThreshold)
	if err != nil {
		return nil, err
	}
	return &EyeVisibility{base: b, closedAspect: cfg.EyeClosedAspect, openAspect: cfg.EyeOpenAspect}, nil
}

func (c *EyeVisibility) Evaluate(photo *domain.Photo, detection domain.Detection) (domain.CheckResult, error) {
	if err := validateImage(photo); err != nil {
		return domain.CheckResult{}, err
	}

	if !detection.FaceFound {
		return c.noFace()
	}
	if detection.Features == nil {
		return c.noLandmarks("Eyes could not be detected")
	}

	features := *detection.Features

	leftAspect := features.LeftEyeAspect
	rightAspect := features.RightEyeAspect

	leftOpen := leftAspect >= c.closedAspect
	rightOpen := rightAspect >= c.closedAspect

	leftScore := c.opennessScore(leftAspect)
	rightScore := c.opennessScore(rightAspect)

	leftCoverage := c.coverageScore(photo, features.LeftEyeRegion)
	rightCoverage := c.coverageScore(photo, features.RightEyeRegion)
	coverageScore := (leftCoverage + rightCoverage) / 2

	opennessScore := (leftScore + rightScore) / 2
	confidence := opennessScore*0.7 + coverageScore*0.3

	// Both eyes must individually clear the closed breakpoint; a high
	// blended confidence cannot compensate for one shut eye.
	passed := confidence >= c.threshold && leftOpen && rightOpen

	// Feedback addresses the subject's own left and right, which are
	// mirrored relative to the provider's image-side naming.
	var message string
	switch {
	case passed:
		message = "Both eyes are clearly visible"
	case !leftOpen && !rightOpen:
		message = "Open your eyes for the passport photo"
	case !leftOpen:
		message = fmt.Sprintf("Open your %s eye for the passport photo", domain.EyeLeft.SubjectSide())
	case !rightOpen:
		message = fmt.Sprintf("Open your %s eye for the passport photo", domain.EyeRight.SubjectSide())
	case coverageScore < 0.7:
		message = "Make sure your eyes are not covered by reflections or hair"
	default:
		message = "Eyes are not fully visible"
	}

	return c.result(passed, confidence, message, map[string]interface{}{
		"left_eye_aspect_ratio":  leftAspect,
		"right_eye_aspect_ratio": rightAspect,
		"left_eye_open":          leftOpen,
		"right_eye_open":         rightOpen,
		"left_score":             leftScore,
		"right_score":            rightScore,
		"coverage_score":         coverageScore,
	})
}

// opennessScore maps an eye aspect ratio onto [0, 1]: full credit above the
// open breakpoint, a 0.6-1.0 ramp between closed and open, and a steep
// penalty below closed.
func (c *EyeVisibility) opennessScore(aspect float64) float64 {
	switch {
	case aspect >= c.openAspect:
		return 1.0
	case aspect >= c.closedAspect:
		return 0.6 + (aspect-c.closedAspect)/(c.openAspect-c.closedAspect)*0.4
	default:
		score := aspect / c.closedAspect * 0.5
		if score < 0 {
			return 0
		}
		return score
	}
}

// coverageScore grades how unobstructed an eye region is. A large fraction
// of near-white pixels points at glasses glare or a flash reflection.
func (c *EyeVisibility) coverageScore(photo *domain.Photo, region domain.BoundingBox) float64 {
	rect := clampRect(boxRect(region), photo.Image.Cols(), photo.Image.Rows())
	if rect.Empty() {
		return 0.5
	}

	crop := photo.Image.Region(rect)
	defer crop.Close()
	gray := grayscale(crop)
	defer gray.Close()

	bright := brightFraction(gray, 240)
	switch {
	case bright > 0.3:
		return 0.5
	case bright > 0.15:
		return 0.7
	default:
		return 1.0
	}
}

var _ Check = (*EyeVisibility)(nil)
