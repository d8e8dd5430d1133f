package check

import (
	"github.com/veldkamp-software/passfoto/internal/domain"
)

// Brightness verifies the photo is neither under- nor overexposed: the mean
// intensity must sit inside the accepted range and the histogram must not
// pile up in the extreme tails.
type Brightness struct {
	base
	min float64
	max float64
}

func NewBrightness(cfg Config) (*Brightness, error) {
	b, err := newBase("brightness", "Checks that the photo lighting is correct", cfg.BrightnessThreshold)
	if err != nil {
		return nil, err
	}
	return &Brightness{base: b, min: cfg.BrightnessMin, max: cfg.BrightnessMax}, nil
}

func (c *Brightness) Evaluate(photo *domain.Photo, _ domain.Detection) (domain.CheckResult, error) {
	if err := validateImage(photo); err != nil {
		return domain.CheckResult{}, err
	}

	gray := grayscale(photo.Image)
	defer gray.Close()

	mean := gray.Mean().Val1
	bins := histogram256(gray)

	// Near-white and near-black histogram tails signal blown highlights
	// and crushed shadows.
	overexposed := 0.0
	for i := 240; i < 256; i++ {
		overexposed += bins[i]
	}
	underexposed := 0.0
	for i := 0; i < 15; i++ {
		underexposed += bins[i]
	}

	brightnessScore := 1.0
	if mean < c.min || mean > c.max {
		distance := c.min - mean
		if mean > c.max {
			distance = mean - c.max
		}
		// Score falls off linearly over a 30-intensity band outside the
		// accepted range.
		brightnessScore = 1.0 - distance/30
		if brightnessScore < 0 {
			brightnessScore = 0
		}
	}

	extremeScore := 1.0 - (overexposed+underexposed)*2
	if extremeScore < 0 {
		extremeScore = 0
	}

	confidence := brightnessScore*0.7 + extremeScore*0.3
	passed := confidence >= c.threshold

	var message string
	switch {
	case passed:
		message = "Lighting is correct"
	case mean < c.min:
		message = "Photo is too dark. Use more light"
	case mean > c.max:
		message = "Photo is too bright. Reduce the lighting"
	case overexposed > 0.05:
		message = "Too much overexposure detected"
	case underexposed > 0.05:
		message = "Too much underexposure detected"
	default:
		message = "Lighting is not optimal"
	}

	return c.result(passed, confidence, message, map[string]interface{}{
		"mean_brightness":    mean,
		"overexposed_ratio":  overexposed,
		"underexposed_ratio": underexposed,
		"brightness_score":   brightnessScore,
		"extreme_score":      extremeScore,
	})
}

var _ Check = (*Brightness)(nil)
