// Package rekognition implements the landmark provider on the AWS
// Rekognition DetectFaces API, for deployments that prefer a managed cloud
// backend over local dlib models.
package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/domain"
	"github.com/veldkamp-software/passfoto/internal/provider"
)

const (
	// maxImageSize is the Rekognition limit for image bytes (5MB).
	maxImageSize = 5 * 1024 * 1024

	errCodeAccessDenied   = "AccessDeniedException"
	errCodeInvalidImage   = "InvalidImageFormatException"
	errCodeImageTooLarge  = "ImageTooLargeException"
	errCodeInvalidParam   = "InvalidParameterException"
)

// Provider implements provider.LandmarkProvider using AWS Rekognition.
// The client is safe for concurrent use.
type Provider struct {
	client *rekognition.Client
}

var _ provider.LandmarkProvider = (*Provider)(nil)

// New creates a Rekognition provider. Credentials come from the AWS
// default credential chain.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Provider{client: rekognition.NewFromConfig(awsCfg)}, nil
}

func (p *Provider) Name() string { return "rekognition" }

// Close is a no-op; the underlying SDK client holds no persistent
// connections that need tearing down.
func (p *Provider) Close() error { return nil }

// Detect encodes the image to JPEG and runs one DetectFaces call with the
// full attribute set so the landmark positions come back.
func (p *Provider) Detect(ctx context.Context, img gocv.Mat) (domain.Detection, error) {
	if img.Empty() {
		return domain.Detection{}, domain.ErrInvalidImage
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return domain.Detection{}, fmt.Errorf("encode image: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	if len(data) > maxImageSize {
		return domain.Detection{}, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: data,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := p.client.DetectFaces(ctx, input)
	if err != nil {
		return domain.Detection{}, mapAPIError(err)
	}
	if len(output.FaceDetails) == 0 {
		return domain.Detection{}, nil
	}

	detail := largestFace(output.FaceDetails)

	imgWidth := img.Cols()
	imgHeight := img.Rows()

	confidence := 0.0
	if detail.Confidence != nil {
		confidence = float64(*detail.Confidence) / 100
	}

	landmarks, ok := landmarksOf(detail, imgWidth, imgHeight)
	if !ok {
		// Landmarks incomplete; the box alone still serves the
		// position-based checks.
		return domain.Detection{
			FaceFound:  true,
			Confidence: confidence,
			Box:        boxOf(detail, imgWidth, imgHeight),
		}, nil
	}

	detection := landmarks.Detection(confidence, imgWidth, imgHeight)
	// Rekognition's own box is tighter than the landmark hull; prefer it
	// when present.
	if box := boxOf(detail, imgWidth, imgHeight); box != nil {
		detection.Box = box
	}
	return detection, nil
}

// largestFace picks the face covering the most area, so a bystander in the
// background never becomes the subject.
func largestFace(details []types.FaceDetail) types.FaceDetail {
	best := details[0]
	bestArea := boxArea(best)
	for _, d := range details[1:] {
		if area := boxArea(d); area > bestArea {
			best = d
			bestArea = area
		}
	}
	return best
}

func boxArea(d types.FaceDetail) float64 {
	if d.BoundingBox == nil || d.BoundingBox.Width == nil || d.BoundingBox.Height == nil {
		return 0
	}
	return float64(*d.BoundingBox.Width) * float64(*d.BoundingBox.Height)
}

// boxOf converts the normalized Rekognition bounding box to pixels.
func boxOf(d types.FaceDetail, imgWidth, imgHeight int) *domain.BoundingBox {
	b := d.BoundingBox
	if b == nil || b.Left == nil || b.Top == nil || b.Width == nil || b.Height == nil {
		return nil
	}

	x := int(float64(*b.Left) * float64(imgWidth))
	y := int(float64(*b.Top) * float64(imgHeight))
	w := int(float64(*b.Width) * float64(imgWidth))
	h := int(float64(*b.Height) * float64(imgHeight))

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w > imgWidth-x {
		w = imgWidth - x
	}
	if h > imgHeight-y {
		h = imgHeight - y
	}
	return &domain.BoundingBox{X: x, Y: y, Width: w, Height: h}
}

// landmarksOf maps Rekognition's named landmarks onto the shared landmark
// geometry. ok is false when a required point is missing. Rekognition names
// landmarks from the viewer's perspective, matching the image-side
// convention used everywhere else.
func landmarksOf(d types.FaceDetail, imgWidth, imgHeight int) (provider.Landmarks, bool) {
	byType := make(map[types.LandmarkType]provider.Point, len(d.Landmarks))
	points := make([]provider.Point, 0, len(d.Landmarks))
	for _, lm := range d.Landmarks {
		if lm.X == nil || lm.Y == nil {
			continue
		}
		p := provider.Point{
			X: int(float64(*lm.X) * float64(imgWidth)),
			Y: int(float64(*lm.Y) * float64(imgHeight)),
		}
		byType[lm.Type] = p
		points = append(points, p)
	}

	required := []types.LandmarkType{
		types.LandmarkTypeLeftEyeUp, types.LandmarkTypeLeftEyeDown,
		types.LandmarkTypeLeftEyeLeft, types.LandmarkTypeLeftEyeRight,
		types.LandmarkTypeRightEyeUp, types.LandmarkTypeRightEyeDown,
		types.LandmarkTypeRightEyeLeft, types.LandmarkTypeRightEyeRight,
		types.LandmarkTypeMouthUp, types.LandmarkTypeMouthDown,
		types.LandmarkTypeMouthLeft, types.LandmarkTypeMouthRight,
		types.LandmarkTypeLeftEyeBrowRight,
	}
	for _, r := range required {
		if _, ok := byType[r]; !ok {
			return provider.Landmarks{}, false
		}
	}

	return provider.Landmarks{
		Points: points,
		LeftEye: provider.EyePoints{
			Top:    byType[types.LandmarkTypeLeftEyeUp],
			Bottom: byType[types.LandmarkTypeLeftEyeDown],
			Outer:  byType[types.LandmarkTypeLeftEyeLeft],
			Inner:  byType[types.LandmarkTypeLeftEyeRight],
		},
		RightEye: provider.EyePoints{
			Top:    byType[types.LandmarkTypeRightEyeUp],
			Bottom: byType[types.LandmarkTypeRightEyeDown],
			Outer:  byType[types.LandmarkTypeRightEyeRight],
			Inner:  byType[types.LandmarkTypeRightEyeLeft],
		},
		MouthTop:    byType[types.LandmarkTypeMouthUp],
		MouthBottom: byType[types.LandmarkTypeMouthDown],
		MouthLeft:   byType[types.LandmarkTypeMouthLeft],
		MouthRight:  byType[types.LandmarkTypeMouthRight],
		// The inner end of the image-left brow is its right end.
		LeftBrowInner: byType[types.LandmarkTypeLeftEyeBrowRight],
	}, true
}

func mapAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeInvalidImage, errCodeInvalidParam:
			return domain.ErrInvalidImage.WithError(err)
		case errCodeImageTooLarge:
			return fmt.Errorf("%w: %s", ErrImageTooLarge, apiErr.ErrorMessage())
		case errCodeAccessDenied:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
		}
	}
	return fmt.Errorf("rekognition detect faces: %w", err)
}
