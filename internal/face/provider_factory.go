package face

import (
	"context"
	"fmt"

	"github.com/veldkamp-software/passfoto/internal/config"
	"github.com/veldkamp-software/passfoto/internal/provider"
	"github.com/veldkamp-software/passfoto/internal/provider/goface"
	"github.com/veldkamp-software/passfoto/internal/provider/mock"
	"github.com/veldkamp-software/passfoto/internal/provider/rekognition"
)

// ProviderType defines supported landmark provider types
type ProviderType string

const (
	// ProviderTypeGoface is the dlib-based provider (local, default)
	ProviderTypeGoface ProviderType = "goface"
	// ProviderTypeRekognition is the AWS Rekognition provider (cloud)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic provider for tests and demos
	ProviderTypeMock ProviderType = "mock"
)

// NewLandmarkProvider creates a LandmarkProvider instance based on
// configuration.
//
// Environment variables:
//   - LANDMARK_PROVIDER: "goface", "rekognition" or "mock" (default: "goface")
//   - GOFACE_MODELS_DIR: directory holding the dlib model files
//   - AWS_REGION: AWS region for Rekognition (default: "eu-west-1")
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY: via the AWS SDK credential chain
func NewLandmarkProvider(ctx context.Context, cfg *config.Config) (provider.LandmarkProvider, error) {
	providerType := ProviderType(cfg.LandmarkProvider)

	switch providerType {
	case ProviderTypeRekognition:
		return createRekognitionProvider(ctx, cfg)

	case ProviderTypeGoface, "":
		// Default to the local dlib backend.
		return createGofaceProvider(cfg)

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.LandmarkProvider, ProviderTypeGoface, ProviderTypeRekognition, ProviderTypeMock)
	}
}

func createRekognitionProvider(ctx context.Context, cfg *config.Config) (provider.LandmarkProvider, error) {
	rekogConfig := rekognition.Config{
		Region: cfg.AWSRegion,
	}
	if rekogConfig.Region == "" {
		rekogConfig.Region = rekognition.DefaultConfig().Region
	}

	prov, err := rekognition.New(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider: %w", err)
	}
	return prov, nil
}

func createGofaceProvider(cfg *config.Config) (provider.LandmarkProvider, error) {
	prov, err := goface.New(goface.Config{
		ModelsDir: cfg.GofaceModelsDir,
	})
	if err != nil {
		return nil, fmt.Errorf("create goface provider: %w", err)
	}
	return prov, nil
}
