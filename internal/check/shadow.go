package check

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// Shadow detects harsh shadows on the face and uneven lighting. It grades
// the total dark area, the hardness of the shadow boundaries and the
// overall brightness uniformity of the region around the face.
type Shadow struct {
	base
	darkness float64
	maxRatio float64
}

func NewShadow(cfg Config) (*Shadow, error) {
	b, err := newBase("shadow", "Checks for disturbing shadows in the photo", cfg.ShadowThreshold)
	if err != nil {
		return nil, err
	}
	return &Shadow{base: b, darkness: cfg.ShadowDarkness, maxRatio: cfg.ShadowMaxRatio}, nil
}

func (c *Shadow) Evaluate(photo *domain.Photo, detection domain.Detection) (domain.CheckResult, error) {
	if err := validateImage(photo); err != nil {
		return domain.CheckResult{}, err
	}

	gray := grayscale(photo.Image)
	defer gray.Close()

	region := gray
	if detection.FaceFound && detection.Box != nil {
		// Pad the face box downward-friendly so neck and shoulders count
		// too; shadows often pool under the chin.
		pad := int(float64(detection.Box.Height) * 0.2)
		rect := clampRect(padRect(boxRect(*detection.Box), pad), gray.Cols(), gray.Rows())
		if !rect.Empty() {
			crop := gray.Region(rect)
			defer crop.Close()
			region = crop
		}
	}

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(region, &mask, float32(c.darkness), 255, gocv.ThresholdBinaryInv)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)

	shadowPixels := gocv.CountNonZero(mask)
	totalPixels := region.Rows() * region.Cols()
	shadowRatio := float64(shadowPixels) / float64(totalPixels)

	// Edges of the shadow mask trace the shadow boundaries; a hard cast
	// shadow has long crisp edges, diffuse falloff has almost none.
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(mask, &edges, 50, 150)
	edgeRatio := float64(gocv.CountNonZero(edges)) / float64(totalPixels)

	_, stdDev := meanStdDev(region)

	ratioScore := 1.0
	if shadowRatio > c.maxRatio {
		excess := shadowRatio - c.maxRatio
		ratioScore = 1.0 - excess/c.maxRatio
		if ratioScore < 0 {
			ratioScore = 0
		}
	}

	edgeScore := 1.0
	if edgeRatio >= 0.02 {
		edgeScore = 1.0 - (edgeRatio-0.02)/0.05
		if edgeScore < 0 {
			edgeScore = 0
		}
	}

	var uniformityScore float64
	switch {
	case stdDev < 30:
		uniformityScore = 1.0
	case stdDev < 50:
		uniformityScore = 0.8
	default:
		uniformityScore = 1.0 - (stdDev-50)/50
		if uniformityScore < 0 {
			uniformityScore = 0
		}
	}

	confidence := ratioScore*0.5 + edgeScore*0.3 + uniformityScore*0.2
	passed := confidence >= c.threshold

	var message string
	switch {
	case passed:
		message = "No disturbing shadows detected"
	case shadowRatio > c.maxRatio*2:
		message = "Heavy shadows detected. Improve the lighting"
	case edgeScore < 0.5:
		message = "Hard shadows detected. Use diffuse light"
	case uniformityScore < 0.6:
		message = "Uneven lighting. Adjust your light sources"
	default:
		message = "Slight shadows detected. Adjust the lighting for an optimal result"
	}

	return c.result(passed, confidence, message, map[string]interface{}{
		"shadow_ratio":     shadowRatio,
		"shadow_pixels":    shadowPixels,
		"edge_ratio":       edgeRatio,
		"std_deviation":    stdDev,
		"ratio_score":      ratioScore,
		"edge_score":       edgeScore,
		"uniformity_score": uniformityScore,
	})
}

var _ Check = (*Shadow)(nil)
