package domain

import (
	"math"
	"testing"
)

func TestDetection_FaceCenterAndSize(t *testing.T) {
	det := Detection{
		FaceFound:  true,
		Confidence: 0.95,
		Box:        &BoundingBox{X: 100, Y: 200, Width: 300, Height: 400},
	}

	x, y, ok := det.FaceCenter()
	if !ok {
		t.Fatal("FaceCenter() ok = false, want true")
	}
	if x != 250 || y != 400 {
		t.Errorf("FaceCenter() = (%d, %d), want (250, 400)", x, y)
	}

	size, ok := det.FaceSize()
	if !ok {
		t.Fatal("FaceSize() ok = false, want true")
	}
	if size != 120000 {
		t.Errorf("FaceSize() = %d, want 120000", size)
	}
}

func TestDetection_NoBox(t *testing.T) {
	det := Detection{FaceFound: false, Confidence: 0.0}

	if _, _, ok := det.FaceCenter(); ok {
		t.Error("FaceCenter() ok = true without a bounding box")
	}
	if _, ok := det.FaceSize(); ok {
		t.Error("FaceSize() ok = true without a bounding box")
	}
}

func TestEye_SubjectSide(t *testing.T) {
	// The provider labels eyes by image side; the subject's own left and
	// right are mirrored. This mapping drives user-facing feedback, so it
	// is pinned down here.
	if got := EyeLeft.SubjectSide(); got != "right" {
		t.Errorf("EyeLeft.SubjectSide() = %q, want %q", got, "right")
	}
	if got := EyeRight.SubjectSide(); got != "left" {
		t.Errorf("EyeRight.SubjectSide() = %q, want %q", got, "left")
	}
}

func TestFeatures_MouthAspect(t *testing.T) {
	tests := []struct {
		name     string
		features Features
		want     float64
	}{
		{
			name:     "closed mouth",
			features: Features{MouthTop: 300, MouthBottom: 306, MouthWidth: 60},
			want:     0.1,
		},
		{
			name:     "open mouth",
			features: Features{MouthTop: 300, MouthBottom: 340, MouthWidth: 50},
			want:     0.8,
		},
		{
			name:     "zero width",
			features: Features{MouthTop: 300, MouthBottom: 340, MouthWidth: 0},
			want:     0.0,
		},
		{
			name:     "inverted coordinates still positive",
			features: Features{MouthTop: 340, MouthBottom: 300, MouthWidth: 50},
			want:     0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.features.MouthAspect(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MouthAspect() = %v, want %v", got, tt.want)
			}
		})
	}
}
