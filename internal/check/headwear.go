package check

import (
	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// Headwear inspects the band directly above the face box for a cap or hat.
// Skin showing through means hairline or forehead; a dark or uniformly
// colored band with little skin points at fabric covering the head.
type Headwear struct {
	base
}

func NewHeadwear(cfg Config) (*Headwear, error) {
	b, err := newBase("headwear", "Checks that no headwear is worn", cfg.HeadwearThreshold)
	if err != nil {
		return nil, err
	}
	return &Headwear{base: b}, nil
}

func (c *Headwear) Evaluate(photo *domain.Photo, detection domain.Detection) (domain.CheckResult, error) {
	if err := validateImage(photo); err != nil {
		return domain.CheckResult{}, err
	}

	if !detection.FaceFound || detection.Box == nil {
		return c.noFace()
	}

	box := *detection.Box
	foreheadTop := box.Y - int(float64(box.Height)*0.3)
	if foreheadTop < 0 {
		foreheadTop = 0
	}
	rect := clampRect(boxRect(domain.BoundingBox{
		X:      box.X,
		Y:      foreheadTop,
		Width:  box.Width,
		Height: box.Y - foreheadTop,
	}), photo.Image.Cols(), photo.Image.Rows())

	// A face at the very top of the frame leaves no band to inspect.
	if rect.Empty() {
		return c.result(true, 0.8, "No headwear detected",
			map[string]interface{}{"note": "small_region"})
	}

	forehead := photo.Image.Region(rect)
	defer forehead.Close()

	skinRatio := skinFraction(forehead)

	gray := grayscale(forehead)
	defer gray.Close()
	// Pixels below intensity 60 count as dark.
	darkRatio := darkFraction(gray, 59)

	colorStd := combinedStd(forehead)

	hasHeadwear := false
	confidence := 1.0

	if skinRatio < 0.3 && darkRatio > 0.4 {
		hasHeadwear = true
		confidence = 0.2
	}
	if skinRatio < 0.15 {
		hasHeadwear = true
		confidence = 0.1
	}
	if colorStd < 25 && skinRatio < 0.4 {
		hasHeadwear = true
		confidence = 0.3
	}

	passed := !hasHeadwear

	message := "No headwear detected"
	if hasHeadwear {
		message = "Remove headwear (cap, hat) for the passport photo"
	}

	return c.result(passed, confidence, message, map[string]interface{}{
		"skin_ratio":   skinRatio,
		"dark_ratio":   darkRatio,
		"color_std":    colorStd,
		"has_headwear": hasHeadwear,
	})
}

// skinFraction is the fraction of pixels whose HSV value falls inside two
// skin tone ranges, the second widened toward darker skin.
func skinFraction(bgr gocv.Mat) float64 {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	mask1 := gocv.NewMat()
	defer mask1.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(0, 20, 70, 0),
		gocv.NewScalar(20, 255, 255, 0),
		&mask1)

	mask2 := gocv.NewMat()
	defer mask2.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(0, 10, 40, 0),
		gocv.NewScalar(25, 200, 255, 0),
		&mask2)

	skin := gocv.NewMat()
	defer skin.Close()
	gocv.BitwiseOr(mask1, mask2, &skin)

	return float64(gocv.CountNonZero(skin)) / float64(skin.Rows()*skin.Cols())
}

var _ Check = (*Headwear)(nil)
