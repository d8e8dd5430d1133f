package check

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// grayscale returns a single-channel copy of img. The caller owns the
// returned Mat and must Close it.
func grayscale(img gocv.Mat) gocv.Mat {
	if img.Channels() == 1 {
		return img.Clone()
	}
	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	return gray
}

func boxRect(b domain.BoundingBox) image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// clampRect intersects r with the image bounds.
func clampRect(r image.Rectangle, cols, rows int) image.Rectangle {
	return r.Intersect(image.Rect(0, 0, cols, rows))
}

// padRect grows r by pad pixels on every side.
func padRect(r image.Rectangle, pad int) image.Rectangle {
	return image.Rect(r.Min.X-pad, r.Min.Y-pad, r.Max.X+pad, r.Max.Y+pad)
}

// meanStdDev returns the mean and standard deviation of a single-channel
// Mat.
func meanStdDev(m gocv.Mat) (mean, std float64) {
	meanMat := gocv.NewMat()
	defer meanMat.Close()
	stdMat := gocv.NewMat()
	defer stdMat.Close()

	gocv.MeanStdDev(m, &meanMat, &stdMat)
	return meanMat.GetDoubleAt(0, 0), stdMat.GetDoubleAt(0, 0)
}

// histogram256 computes the 256-bin intensity histogram of a single-channel
// Mat, normalized so the bins sum to 1.
func histogram256(gray gocv.Mat) [256]float64 {
	hist := gocv.NewMat()
	defer hist.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.CalcHist([]gocv.Mat{gray}, []int{0}, mask, &hist, []int{256}, []float64{0, 256}, false)

	var bins [256]float64
	total := 0.0
	for i := 0; i < 256; i++ {
		bins[i] = float64(hist.GetFloatAt(i, 0))
		total += bins[i]
	}
	if total > 0 {
		for i := range bins {
			bins[i] /= total
		}
	}
	return bins
}

// regionStat accumulates first and second moments of a pixel region so
// statistics over disjoint regions can be merged exactly.
type regionStat struct {
	count  int
	mean   float64
	meanSq float64
}

func statOf(m gocv.Mat) regionStat {
	if m.Empty() {
		return regionStat{}
	}
	mean, std := meanStdDev(m)
	return regionStat{
		count:  m.Rows() * m.Cols(),
		mean:   mean,
		meanSq: std*std + mean*mean,
	}
}

// mergeStats combines per-region statistics into the mean and standard
// deviation over the union of the regions.
func mergeStats(stats ...regionStat) (mean, std float64, count int) {
	var sum, sumSq float64
	for _, s := range stats {
		sum += s.mean * float64(s.count)
		sumSq += s.meanSq * float64(s.count)
		count += s.count
	}
	if count == 0 {
		return 0, 0, 0
	}
	mean = sum / float64(count)
	variance := sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance), count
}

// combinedStd is the standard deviation over every element of a
// multi-channel Mat, treating the channels as one flat sample set.
func combinedStd(m gocv.Mat) float64 {
	meanMat := gocv.NewMat()
	defer meanMat.Close()
	stdMat := gocv.NewMat()
	defer stdMat.Close()

	gocv.MeanStdDev(m, &meanMat, &stdMat)

	channels := m.Channels()
	var sum, sumSq float64
	for c := 0; c < channels; c++ {
		mean := meanMat.GetDoubleAt(c, 0)
		std := stdMat.GetDoubleAt(c, 0)
		sum += mean
		sumSq += std*std + mean*mean
	}
	mean := sum / float64(channels)
	variance := sumSq/float64(channels) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// brightFraction is the fraction of pixels in a single-channel Mat strictly
// above the given intensity.
func brightFraction(gray gocv.Mat, intensity float64) float64 {
	if gray.Empty() {
		return 0
	}
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, float32(intensity), 255, gocv.ThresholdBinary)
	return float64(gocv.CountNonZero(mask)) / float64(gray.Rows()*gray.Cols())
}

// darkFraction is the fraction of pixels in a single-channel Mat at or below
// the given intensity.
func darkFraction(gray gocv.Mat, intensity float64) float64 {
	if gray.Empty() {
		return 0
	}
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, float32(intensity), 255, gocv.ThresholdBinaryInv)
	return float64(gocv.CountNonZero(mask)) / float64(gray.Rows()*gray.Cols())
}
