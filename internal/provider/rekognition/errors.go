package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing.
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrImageTooLarge indicates that the encoded image exceeds the Rekognition byte limit.
	ErrImageTooLarge = errors.New("image exceeds rekognition size limit")
)
