package domain

// Eye identifies an eye by its side of the image, which is how landmark
// providers label them. The image's left is the photographed subject's
// right, so user-facing feedback must go through SubjectSide.
type Eye string

const (
	EyeLeft  Eye = "left"
	EyeRight Eye = "right"
)

// SubjectSide returns the side of the eye from the subject's own point of
// view ("left" or "right").
func (e Eye) SubjectSide() string {
	if e == EyeLeft {
		return "right"
	}
	return "left"
}

// BoundingBox is a pixel-space rectangle (origin top-left).
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the box surface in pixels.
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// Features holds the geometric measurements the checks consume, derived once
// per run from the raw landmark points.
type Features struct {
	// Aspect ratio (height/width) of each eye opening. Low values mean a
	// closed eye.
	LeftEyeAspect  float64 `json:"left_eye_aspect"`
	RightEyeAspect float64 `json:"right_eye_aspect"`

	// Pixel regions of the eye openings, for glare/coverage analysis.
	LeftEyeRegion  BoundingBox `json:"left_eye_region"`
	RightEyeRegion BoundingBox `json:"right_eye_region"`

	// Mouth geometry in pixel coordinates. MouthBottom has the larger y
	// value since y grows downward.
	MouthTop    int `json:"mouth_top"`
	MouthBottom int `json:"mouth_bottom"`
	MouthWidth  int `json:"mouth_width"`

	// Vertical eyebrow-to-eye offset normalized by image height.
	EyebrowRaise float64 `json:"eyebrow_raise"`

	// 1.0 for a perfectly centered mouth, falling off with horizontal
	// offset from the image center.
	MouthSymmetry float64 `json:"mouth_symmetry"`
}

// MouthAspect returns the mouth aspect ratio (height/width), 0 when the
// width is 0.
func (f Features) MouthAspect() float64 {
	if f.MouthWidth == 0 {
		return 0.0
	}
	height := f.MouthBottom - f.MouthTop
	if height < 0 {
		height = -height
	}
	return float64(height) / float64(f.MouthWidth)
}

// Detection is the result of one landmark-provider pass over an image.
// A photo without a detectable face is a normal outcome, not an error:
// FaceFound is false, Confidence is 0 and Box/Features are nil. The value is
// produced once per validation run and threaded immutably into every check.
type Detection struct {
	FaceFound  bool         `json:"face_found"`
	Confidence float64      `json:"confidence"`
	Box        *BoundingBox `json:"bounding_box,omitempty"`
	Features   *Features    `json:"features,omitempty"`
}

// FaceCenter returns the center of the face bounding box. ok is false when
// no box is present.
func (d Detection) FaceCenter() (x, y int, ok bool) {
	if d.Box == nil {
		return 0, 0, false
	}
	return d.Box.X + d.Box.Width/2, d.Box.Y + d.Box.Height/2, true
}

// FaceSize returns the bounding box area. ok is false when no box is
// present.
func (d Detection) FaceSize() (size int, ok bool) {
	if d.Box == nil {
		return 0, false
	}
	return d.Box.Area(), true
}
