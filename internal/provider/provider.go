// Package provider defines the landmark provider contract and the geometry
// shared by its implementations. A provider locates a face in an image and
// measures the landmark points; this package turns those raw points into the
// detection features the checks consume, so every backend produces identical
// feature semantics.
package provider

import (
	"context"

	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
)

// LandmarkProvider locates a face and its landmarks in an image.
//
// A photo without a detectable face is a normal outcome: Detect returns a
// zero-valued Detection with FaceFound false and a nil error. Errors are
// reserved for broken input or backend failures.
type LandmarkProvider interface {
	// Detect runs one detection pass over a BGR image.
	Detect(ctx context.Context, img gocv.Mat) (domain.Detection, error)

	// Name identifies the backend ("goface", "rekognition", "mock").
	Name() string

	// Close releases backend resources. The provider is unusable
	// afterwards.
	Close() error
}

// Point is a pixel coordinate, origin top-left.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// EyePoints are the four extremes of one eye opening.
type EyePoints struct {
	Top    Point `json:"top"`
	Bottom Point `json:"bottom"`
	Outer  Point `json:"outer"`
	Inner  Point `json:"inner"`
}

// aspect is the eye opening ratio, 0 for a degenerate width.
func (e EyePoints) aspect() float64 {
	width := abs(e.Outer.X - e.Inner.X)
	if width == 0 {
		return 0
	}
	height := abs(e.Top.Y - e.Bottom.Y)
	return float64(height) / float64(width)
}

// region is the pixel box spanned by the eye extremes.
func (e EyePoints) region() domain.BoundingBox {
	x := e.Outer.X
	if e.Inner.X < x {
		x = e.Inner.X
	}
	y := e.Top.Y
	if e.Bottom.Y < y {
		y = e.Bottom.Y
	}
	return domain.BoundingBox{
		X:      x,
		Y:      y,
		Width:  abs(e.Outer.X - e.Inner.X),
		Height: abs(e.Top.Y - e.Bottom.Y),
	}
}

// Landmarks holds the semantic points a backend measured on one face. Left
// and right name the side of the image, not the subject's own side.
type Landmarks struct {
	// Points is the full raw landmark set, used for the face bounding
	// box.
	Points []Point

	LeftEye  EyePoints
	RightEye EyePoints

	MouthTop    Point
	MouthBottom Point
	MouthLeft   Point
	MouthRight  Point

	LeftBrowInner Point
}

// BoundingBox spans all landmark points, padded by 10% on each side and
// clamped to the image. Returns nil when no points are present.
func (l Landmarks) BoundingBox(imgWidth, imgHeight int) *domain.BoundingBox {
	if len(l.Points) == 0 {
		return nil
	}

	minX, minY := l.Points[0].X, l.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range l.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	padX := (maxX - minX) / 10
	padY := (maxY - minY) / 10
	minX -= padX
	minY -= padY
	maxX += padX
	maxY += padY

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > imgWidth {
		maxX = imgWidth
	}
	if maxY > imgHeight {
		maxY = imgHeight
	}

	return &domain.BoundingBox{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Features derives the check-level measurements from the landmark points.
func (l Landmarks) Features(imgWidth, imgHeight int) *domain.Features {
	f := &domain.Features{
		LeftEyeAspect:  l.LeftEye.aspect(),
		RightEyeAspect: l.RightEye.aspect(),
		LeftEyeRegion:  l.LeftEye.region(),
		RightEyeRegion: l.RightEye.region(),
		MouthTop:       l.MouthTop.Y,
		MouthBottom:    l.MouthBottom.Y,
		MouthWidth:     abs(l.MouthRight.X - l.MouthLeft.X),
	}

	if imgHeight > 0 {
		f.EyebrowRaise = float64(abs(l.LeftBrowInner.Y-l.LeftEye.Top.Y)) / float64(imgHeight)
	}

	if imgWidth > 0 {
		mouthCenterX := float64(l.MouthLeft.X+l.MouthRight.X) / 2
		offset := absFloat(mouthCenterX-float64(imgWidth)/2) / float64(imgWidth)
		symmetry := 1.0 - offset*10
		if symmetry < 0 {
			symmetry = 0
		}
		f.MouthSymmetry = symmetry
	}

	return f
}

// Detection assembles a full positive detection from measured landmarks.
func (l Landmarks) Detection(confidence float64, imgWidth, imgHeight int) domain.Detection {
	return domain.Detection{
		FaceFound:  true,
		Confidence: confidence,
		Box:        l.BoundingBox(imgWidth, imgHeight),
		Features:   l.Features(imgWidth, imgHeight),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
