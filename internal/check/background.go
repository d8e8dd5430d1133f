package check

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// Background verifies the area around the subject is neutral and uniform.
// The face box, expanded to cover neck and shoulders, is cut out of the
// frame; the four remaining strips are graded on brightness uniformity,
// color uniformity and edge density, with a small bonus for a light
// background.
type Background struct {
	base
}

func NewBackground(cfg Config) (*Background, error) {
	b, err := newBase("background", "Checks that the background is neutral and uniform", cfg.BackgroundThreshold)
	if err != nil {
		return nil, err
	}
	return &Background{base: b}, nil
}

func (c *Background) Evaluate(photo *domain.Photo, detection domain.Detection) (domain.CheckResult, error) {
	if err := validateImage(photo); err != nil {
		return domain.CheckResult{}, err
	}

	// Without a face there is no way to tell subject from background.
	if !detection.FaceFound || detection.Box == nil {
		return c.result(true, 0.5, "Background could not be analyzed",
			map[string]interface{}{"error": "no_face_for_reference"})
	}

	imgWidth := photo.Image.Cols()
	imgHeight := photo.Image.Rows()
	box := *detection.Box

	subject := subjectRect(box, imgWidth, imgHeight)
	strips := backgroundStrips(subject, imgWidth, imgHeight)

	gray := grayscale(photo.Image)
	defer gray.Close()

	var grayStats []regionStat
	var channelStats [3][]regionStat
	for _, strip := range strips {
		crop := gray.Region(strip)
		grayStats = append(grayStats, statOf(crop))
		crop.Close()

		colorCrop := photo.Image.Region(strip)
		perChannel := statOfChannels(colorCrop)
		colorCrop.Close()
		for ch := 0; ch < 3; ch++ {
			channelStats[ch] = append(channelStats[ch], perChannel[ch])
		}
	}

	bgMean, bgStd, bgCount := mergeStats(grayStats...)
	if bgCount < 100 {
		return c.result(true, 0.7, "Background is acceptable",
			map[string]interface{}{"note": "small_background"})
	}

	colorStdSum := 0.0
	for ch := 0; ch < 3; ch++ {
		_, std, _ := mergeStats(channelStats[ch]...)
		colorStdSum += std
	}
	bgColorStd := colorStdSum / 3

	// Edge density in the background flags shelves, plants, patterned
	// wallpaper and other distracting objects.
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	edgePixels := 0
	for _, strip := range strips {
		crop := edges.Region(strip)
		edgePixels += gocv.CountNonZero(crop)
		crop.Close()
	}
	edgeRatio := float64(edgePixels) / float64(bgCount)

	var uniformityScore float64
	switch {
	case bgStd < 20:
		uniformityScore = 1.0
	case bgStd < 40:
		uniformityScore = 0.7
	case bgStd < 60:
		uniformityScore = 0.5
	default:
		uniformityScore = 0.3
	}

	var colorScore float64
	switch {
	case bgColorStd < 15:
		colorScore = 1.0
	case bgColorStd < 30:
		colorScore = 0.7
	default:
		colorScore = 0.4
	}

	var edgeScore float64
	switch {
	case edgeRatio < 0.05:
		edgeScore = 1.0
	case edgeRatio < 0.10:
		edgeScore = 0.7
	case edgeRatio < 0.20:
		edgeScore = 0.5
	default:
		edgeScore = 0.3
	}

	var brightnessBonus float64
	switch {
	case bgMean > 180:
		brightnessBonus = 0.1
	case bgMean > 150:
		brightnessBonus = 0.05
	}

	confidence := uniformityScore*0.4 + colorScore*0.3 + edgeScore*0.3 + brightnessBonus
	if confidence > 1.0 {
		confidence = 1.0
	}

	passed := confidence >= c.threshold

	var message string
	switch {
	case passed:
		message = "Background is acceptable"
	case edgeScore < 0.5:
		message = "Background contains distracting objects. Use a neutral background"
	case uniformityScore < 0.5:
		message = "Background is not uniform enough. Use a plain background"
	default:
		message = "Use a neutral, light background for the passport photo"
	}

	return c.result(passed, confidence, message, map[string]interface{}{
		"bg_std":           bgStd,
		"bg_mean":          bgMean,
		"bg_color_std":     bgColorStd,
		"edge_ratio":       edgeRatio,
		"uniformity_score": uniformityScore,
		"color_score":      colorScore,
		"edge_score":       edgeScore,
	})
}

// subjectRect expands the face box to cover hair, neck and shoulders,
// clamped to the frame.
func subjectRect(box domain.BoundingBox, imgWidth, imgHeight int) image.Rectangle {
	x := box.X - int(float64(box.Width)*0.3)
	if x < 0 {
		x = 0
	}
	y := box.Y - int(float64(box.Height)*0.2)
	if y < 0 {
		y = 0
	}
	w := int(float64(box.Width) * 1.6)
	if w > imgWidth-x {
		w = imgWidth - x
	}
	h := int(float64(box.Height) * 1.8)
	if h > imgHeight-y {
		h = imgHeight - y
	}
	return image.Rect(x, y, x+w, y+h)
}

// backgroundStrips covers everything outside the subject rect with four
// non-overlapping rectangles. Strips that collapse to zero size are
// dropped.
func backgroundStrips(subject image.Rectangle, imgWidth, imgHeight int) []image.Rectangle {
	candidates := []image.Rectangle{
		image.Rect(0, 0, imgWidth, subject.Min.Y),
		image.Rect(0, subject.Max.Y, imgWidth, imgHeight),
		image.Rect(0, subject.Min.Y, subject.Min.X, subject.Max.Y),
		image.Rect(subject.Max.X, subject.Min.Y, imgWidth, subject.Max.Y),
	}

	var strips []image.Rectangle
	for _, r := range candidates {
		r = clampRect(r, imgWidth, imgHeight)
		if !r.Empty() {
			strips = append(strips, r)
		}
	}
	return strips
}

// statOfChannels collects per-channel moments of a 3-channel region.
func statOfChannels(m gocv.Mat) [3]regionStat {
	var stats [3]regionStat
	if m.Empty() {
		return stats
	}

	meanMat := gocv.NewMat()
	defer meanMat.Close()
	stdMat := gocv.NewMat()
	defer stdMat.Close()
	gocv.MeanStdDev(m, &meanMat, &stdMat)

	count := m.Rows() * m.Cols()
	for ch := 0; ch < 3 && ch < m.Channels(); ch++ {
		mean := meanMat.GetDoubleAt(ch, 0)
		std := stdMat.GetDoubleAt(ch, 0)
		stats[ch] = regionStat{count: count, mean: mean, meanSq: std*std + mean*mean}
	}
	return stats
}

var _ Check = (*Background)(nil)
