package rekognition

// Config holds the settings for the AWS Rekognition backend.
type Config struct {
	// Region is the AWS region the Rekognition service is called in
	// (e.g. "eu-west-1").
	Region string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Region: "eu-west-1",
	}
}
