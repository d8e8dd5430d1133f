// Package goface implements the landmark provider on dlib through go-face.
// It runs fully local, which makes it the default backend for development
// and on-premise deployments.
package goface

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/Kagami/go-face"
	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
	"github.com/veldkamp-software/passfoto/internal/provider"
)

// Landmark indices of the dlib 68-point shape model.
const (
	leftEyeOuter   = 36
	leftEyeTopA    = 37
	leftEyeTopB    = 38
	leftEyeInner   = 39
	leftEyeBottomA = 40
	leftEyeBottomB = 41

	rightEyeInner   = 42
	rightEyeTopA    = 43
	rightEyeTopB    = 44
	rightEyeOuter   = 45
	rightEyeBottomA = 46
	rightEyeBottomB = 47

	mouthLeftCorner  = 48
	mouthRightCorner = 54
	mouthInnerTop    = 62
	mouthInnerBottom = 66

	leftBrowInner = 21

	landmarkCount = 68
)

// Config holds the provider settings.
type Config struct {
	// ModelsDir must contain the dlib model files go-face loads.
	ModelsDir string
}

// Provider wraps a long-lived dlib recognizer. The recognizer is guarded by
// a mutex since dlib calls are not safe for concurrent use on one instance.
type Provider struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

var _ provider.LandmarkProvider = (*Provider)(nil)

// New loads the dlib models and returns a ready provider. Loading is
// expensive, so one instance should be shared for the process lifetime.
func New(cfg Config) (*Provider, error) {
	rec, err := face.NewRecognizer(cfg.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("load dlib models from %s: %w", cfg.ModelsDir, err)
	}
	return &Provider{rec: rec}, nil
}

func (p *Provider) Name() string { return "goface" }

// Detect encodes the image to JPEG for dlib and measures the landmarks of
// the first detected face.
func (p *Provider) Detect(ctx context.Context, img gocv.Mat) (domain.Detection, error) {
	if img.Empty() {
		return domain.Detection{}, domain.ErrInvalidImage
	}
	if err := ctx.Err(); err != nil {
		return domain.Detection{}, err
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return domain.Detection{}, fmt.Errorf("encode image: %w", err)
	}
	defer buf.Close()

	p.mu.Lock()
	faces, err := p.rec.Recognize(buf.GetBytes())
	p.mu.Unlock()
	if err != nil {
		return domain.Detection{}, fmt.Errorf("dlib recognize: %w", err)
	}
	if len(faces) == 0 {
		return domain.Detection{}, nil
	}

	f := largestFace(faces)
	confidence := float64(len(f.Shapes)) / landmarkCount
	if confidence > 1.0 {
		confidence = 1.0
	}

	imgWidth := img.Cols()
	imgHeight := img.Rows()

	// A shape model with fewer points cannot provide the feature
	// geometry; fall back to the detector rectangle alone.
	if len(f.Shapes) < landmarkCount {
		box := clampedBox(f.Rectangle, imgWidth, imgHeight)
		return domain.Detection{
			FaceFound:  true,
			Confidence: confidence,
			Box:        &box,
		}, nil
	}

	return landmarksOf(f).Detection(confidence, imgWidth, imgHeight), nil
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rec != nil {
		p.rec.Close()
		p.rec = nil
	}
	return nil
}

// largestFace picks the face with the biggest rectangle; passport captures
// occasionally include bystanders in the background.
func largestFace(faces []face.Face) face.Face {
	best := faces[0]
	bestArea := best.Rectangle.Dx() * best.Rectangle.Dy()
	for _, f := range faces[1:] {
		if area := f.Rectangle.Dx() * f.Rectangle.Dy(); area > bestArea {
			best = f
			bestArea = area
		}
	}
	return best
}

func landmarksOf(f face.Face) provider.Landmarks {
	points := make([]provider.Point, len(f.Shapes))
	for i, s := range f.Shapes {
		points[i] = provider.Point{X: s.X, Y: s.Y}
	}

	pt := func(i int) provider.Point { return points[i] }

	return provider.Landmarks{
		Points: points,
		LeftEye: provider.EyePoints{
			Top:    midpoint(pt(leftEyeTopA), pt(leftEyeTopB)),
			Bottom: midpoint(pt(leftEyeBottomA), pt(leftEyeBottomB)),
			Outer:  pt(leftEyeOuter),
			Inner:  pt(leftEyeInner),
		},
		RightEye: provider.EyePoints{
			Top:    midpoint(pt(rightEyeTopA), pt(rightEyeTopB)),
			Bottom: midpoint(pt(rightEyeBottomA), pt(rightEyeBottomB)),
			Outer:  pt(rightEyeOuter),
			Inner:  pt(rightEyeInner),
		},
		MouthTop:      pt(mouthInnerTop),
		MouthBottom:   pt(mouthInnerBottom),
		MouthLeft:     pt(mouthLeftCorner),
		MouthRight:    pt(mouthRightCorner),
		LeftBrowInner: pt(leftBrowInner),
	}
}

func midpoint(a, b provider.Point) provider.Point {
	return provider.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func clampedBox(r image.Rectangle, imgWidth, imgHeight int) domain.BoundingBox {
	r = r.Intersect(image.Rect(0, 0, imgWidth, imgHeight))
	return domain.BoundingBox{
		X:      r.Min.X,
		Y:      r.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}
