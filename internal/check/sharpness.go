package check

import (
	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// Sharpness detects blur through the variance of the Laplacian. When a face
// was found the measurement is taken on the face region (plus a little
// padding) so a busy background cannot mask an out-of-focus face.
type Sharpness struct {
	base
	minVariance float64
}

func NewSharpness(cfg Config) (*Sharpness, error) {
	b, err := newBase("sharpness", "Checks that the photo is sharp and not blurry", cfg.SharpnessThreshold)
	if err != nil {
		return nil, err
	}
	return &Sharpness{base: b, minVariance: cfg.SharpnessMinVariance}, nil
}

func (c *Sharpness) Evaluate(photo *domain.Photo, detection domain.Detection) (domain.CheckResult, error) {
	if err := validateImage(photo); err != nil {
		return domain.CheckResult{}, err
	}

	gray := grayscale(photo.Image)
	defer gray.Close()

	region := gray
	focusedOnFace := false
	if detection.FaceFound && detection.Box != nil {
		pad := detection.Box.Width
		if detection.Box.Height < pad {
			pad = detection.Box.Height
		}
		pad = pad / 10
		rect := clampRect(padRect(boxRect(*detection.Box), pad), gray.Cols(), gray.Rows())
		if !rect.Empty() {
			crop := gray.Region(rect)
			defer crop.Close()
			region = crop
			focusedOnFace = true
		}
	}

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(region, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	_, std := meanStdDev(laplacian)
	variance := std * std

	var confidence float64
	if variance >= c.minVariance {
		confidence = variance / (c.minVariance * 2)
		if confidence > 1.0 {
			confidence = 1.0
		}
	} else {
		confidence = variance / c.minVariance
	}

	passed := confidence >= c.threshold

	var message string
	switch {
	case passed:
		message = "Photo is sufficiently sharp"
	case variance < c.minVariance*0.5:
		message = "Photo is blurry. Hold the camera still and check the focus"
	default:
		message = "Photo is not sharp enough. Try again"
	}

	return c.result(passed, confidence, message, map[string]interface{}{
		"laplacian_variance":     variance,
		"min_variance_threshold": c.minVariance,
		"focused_on_face":        focusedOnFace,
	})
}

var _ Check = (*Sharpness)(nil)
