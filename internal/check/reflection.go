package check

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// Reflection detects glare from glasses or a camera flash: near-white
// pixel clusters inside the face region. The total glare area and the
// number of distinct glare spots each contribute to the score.
type Reflection struct {
	base
	brightness float64
	maxRatio   float64
}

func NewReflection(cfg Config) (*Reflection, error) {
	b, err := newBase("reflection", "Checks for unwanted reflections in the photo", cfg.ReflectionThreshold)
	if err != nil {
		return nil, err
	}
	return &Reflection{base: b, brightness: cfg.ReflectionBrightness, maxRatio: cfg.ReflectionMaxRatio}, nil
}

func (c *Reflection) Evaluate(photo *domain.Photo, detection domain.Detection) (domain.CheckResult, error) {
	if err := validateImage(photo); err != nil {
		return domain.CheckResult{}, err
	}

	gray := grayscale(photo.Image)
	defer gray.Close()

	region := gray
	if detection.FaceFound && detection.Box != nil {
		rect := clampRect(boxRect(*detection.Box), gray.Cols(), gray.Rows())
		if !rect.Empty() {
			crop := gray.Region(rect)
			defer crop.Close()
			region = crop
		}
	}

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(region, &mask, float32(c.brightness), 255, gocv.ThresholdBinary)

	// A 3x3 opening removes single-pixel speckle before counting.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)

	reflectionPixels := gocv.CountNonZero(mask)
	totalPixels := region.Rows() * region.Cols()
	reflectionRatio := float64(reflectionPixels) / float64(totalPixels)

	significant := c.countSignificantSpots(mask)

	ratioScore := 1.0
	if reflectionRatio > c.maxRatio {
		excess := reflectionRatio - c.maxRatio
		ratioScore = 1.0 - excess/c.maxRatio
		if ratioScore < 0 {
			ratioScore = 0
		}
	}

	var countScore float64
	switch {
	case significant == 0:
		countScore = 1.0
	case significant <= 2:
		countScore = 0.7
	default:
		countScore = 1.0 - float64(significant-2)*0.15
		if countScore < 0 {
			countScore = 0
		}
	}

	confidence := ratioScore*0.6 + countScore*0.4
	passed := confidence >= c.threshold

	var message string
	switch {
	case passed:
		message = "No significant reflections detected"
	case significant > 3:
		message = "Multiple reflections detected. Avoid direct light and glasses glare"
	case reflectionRatio > c.maxRatio*2:
		message = "Strong reflection detected. Adjust the lighting"
	default:
		message = "Slight reflection detected. Adjust your position or the lighting"
	}

	return c.result(passed, confidence, message, map[string]interface{}{
		"reflection_ratio":        reflectionRatio,
		"reflection_pixels":       reflectionPixels,
		"significant_reflections": significant,
		"ratio_score":             ratioScore,
		"count_score":             countScore,
	})
}

// countSignificantSpots counts connected bright clusters larger than 50
// pixels, ignoring label 0 which covers the non-glare background.
func (c *Reflection) countSignificantSpots(mask gocv.Mat) int {
	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	numLabels := gocv.ConnectedComponentsWithStats(mask, &labels, &stats, &centroids)

	significant := 0
	for i := 1; i < numLabels; i++ {
		area := stats.GetIntAt(i, 4)
		if area > 50 {
			significant++
		}
	}
	return significant
}

var _ Check = (*Reflection)(nil)
