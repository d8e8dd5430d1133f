// Package mock provides a deterministic landmark provider for tests and
// local development without dlib models or AWS credentials.
package mock

import (
	"context"

	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
	"github.com/veldkamp-software/passfoto/internal/provider"
)

// Provider implements provider.LandmarkProvider with a synthetic, perfectly
// positioned neutral face derived from the image dimensions alone.
type Provider struct{}

var _ provider.LandmarkProvider = (*Provider)(nil)

// New creates a mock provider instance.
func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string { return "mock" }

func (p *Provider) Close() error { return nil }

// Detect returns a centered face filling about a third of the frame, with
// open eyes and a closed mouth. The same image always yields the same
// detection.
func (p *Provider) Detect(ctx context.Context, img gocv.Mat) (domain.Detection, error) {
	if img.Empty() {
		return domain.Detection{}, domain.ErrInvalidImage
	}
	if err := ctx.Err(); err != nil {
		return domain.Detection{}, err
	}

	w := img.Cols()
	h := img.Rows()

	faceW := w / 3
	faceH := h * 2 / 5
	faceX := (w - faceW) / 2
	faceY := (h - faceH) / 2

	eyeY := faceY + faceH/3
	eyeW := faceW / 5
	eyeH := eyeW * 3 / 10
	leftEyeX := faceX + faceW/4
	rightEyeX := faceX + faceW*3/4

	mouthY := faceY + faceH*3/4
	mouthW := faceW / 3

	l := provider.Landmarks{
		Points: []provider.Point{
			{X: faceX, Y: faceY},
			{X: faceX + faceW, Y: faceY},
			{X: faceX, Y: faceY + faceH},
			{X: faceX + faceW, Y: faceY + faceH},
		},
		LeftEye:  syntheticEye(leftEyeX, eyeY, eyeW, eyeH),
		RightEye: syntheticEye(rightEyeX, eyeY, eyeW, eyeH),
		MouthTop: provider.Point{X: faceX + faceW/2, Y: mouthY},
		MouthBottom: provider.Point{
			X: faceX + faceW/2,
			Y: mouthY + mouthW/20,
		},
		MouthLeft:     provider.Point{X: faceX + faceW/2 - mouthW/2, Y: mouthY},
		MouthRight:    provider.Point{X: faceX + faceW/2 + mouthW/2, Y: mouthY},
		LeftBrowInner: provider.Point{X: leftEyeX, Y: eyeY - faceH/20},
	}

	return l.Detection(0.99, w, h), nil
}

func syntheticEye(centerX, centerY, width, height int) provider.EyePoints {
	return provider.EyePoints{
		Top:    provider.Point{X: centerX, Y: centerY - height/2},
		Bottom: provider.Point{X: centerX, Y: centerY + height/2},
		Outer:  provider.Point{X: centerX - width/2, Y: centerY},
		Inner:  provider.Point{X: centerX + width/2, Y: centerY},
	}
}
