package check

import (
	"github.com/veldkamp-software/passfoto/internal/domain"
)

// FacePosition verifies the face is centered, at a usable distance and
// proportioned the way a frontal face should be. It cannot run without a
// detected face.
type FacePosition struct {
	base
	centerTolerance float64
	minSizeRatio    float64
	maxSizeRatio    float64
}

func NewFacePosition(cfg Config) (*FacePosition, error) {
	b, err := newBase("face_position", "Checks that the face is correctly positioned and centered", cfg.FacePositionThreshold)
	if err != nil {
		return nil, err
	}
	return &FacePosition{
		base:            b,
		centerTolerance: cfg.FaceCenterTolerance,
		minSizeRatio:    cfg.FaceSizeMinRatio,
		maxSizeRatio:    cfg.FaceSizeMaxRatio,
	}, nil
}

func (c *FacePosition) Evaluate(photo *domain.Photo, detection domain.Detection) (domain.CheckResult, error) {
	if err := validateImage(photo); err != nil {
		return domain.CheckResult{}, err
	}

	if !detection.FaceFound {
		return c.noFace()
	}
	if detection.Box == nil {
		return c.result(false, 0.0, "Face could not be located",
			map[string]interface{}{"error": "no_bounding_box"})
	}

	imgWidth := photo.Image.Cols()
	imgHeight := photo.Image.Rows()
	imgCenterX := float64(imgWidth) / 2
	imgCenterY := float64(imgHeight) / 2

	faceX, faceY, _ := detection.FaceCenter()
	faceSize, _ := detection.FaceSize()
	box := *detection.Box

	// Centering, horizontal and vertical.
	centerOffsetX := abs(float64(faceX)-imgCenterX) / float64(imgWidth)
	centerOffsetY := abs(float64(faceY)-imgCenterY) / float64(imgHeight)
	maxOffset := centerOffsetX
	if centerOffsetY > maxOffset {
		maxOffset = centerOffsetY
	}

	centeringScore := 1.0
	if maxOffset > c.centerTolerance {
		centeringScore = 1.0 - (maxOffset-c.centerTolerance)/c.centerTolerance
		if centeringScore < 0 {
			centeringScore = 0
		}
	}

	// Distance, via the face-to-image area ratio.
	sizeRatio := float64(faceSize) / float64(imgWidth*imgHeight)
	sizeScore := 1.0
	if sizeRatio < c.minSizeRatio {
		sizeScore = 1.0 - (c.minSizeRatio-sizeRatio)/c.minSizeRatio
	} else if sizeRatio > c.maxSizeRatio {
		sizeScore = 1.0 - (sizeRatio-c.maxSizeRatio)/c.maxSizeRatio
	}
	if sizeScore < 0 {
		sizeScore = 0
	}

	// A frontal face box is a bit narrower than square; a ratio far
	// outside [0.55, 1.1] points at a tilted or turned head.
	aspectRatio := 0.0
	if box.Height > 0 {
		aspectRatio = float64(box.Width) / float64(box.Height)
	}
	aspectScore := 1.0
	if aspectRatio < 0.55 || aspectRatio > 1.1 {
		distance := 0.55 - aspectRatio
		if aspectRatio > 1.1 {
			distance = aspectRatio - 1.1
		}
		aspectScore = 1.0 - distance*2
		if aspectScore < 0 {
			aspectScore = 0
		}
	}

	confidence := centeringScore*0.4 + sizeScore*0.4 + aspectScore*0.2
	passed := confidence >= c.threshold

	var message string
	switch {
	case passed:
		message = "Face position is correct"
	case centeringScore < 0.7:
		if centerOffsetX > centerOffsetY {
			if float64(faceX) < imgCenterX {
				message = "Move further to the right in the frame"
			} else {
				message = "Move further to the left in the frame"
			}
		} else {
			if float64(faceY) < imgCenterY {
				message = "Move further down in the frame"
			} else {
				message = "Move further up in the frame"
			}
		}
	case sizeScore < 0.7:
		if sizeRatio < c.minSizeRatio {
			message = "Move closer to the camera"
		} else {
			message = "Move further away from the camera"
		}
	case aspectScore < 0.7:
		message = "Keep your head straight and look directly into the camera"
	default:
		message = "Adjust your position for a better passport photo"
	}

	return c.result(passed, confidence, message, map[string]interface{}{
		"center_offset_x": centerOffsetX,
		"center_offset_y": centerOffsetY,
		"face_size_ratio": sizeRatio,
		"aspect_ratio":    aspectRatio,
		"centering_score": centeringScore,
		"size_score":      sizeScore,
		"aspect_score":    aspectScore,
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

var _ Check = (*FacePosition)(nil)
