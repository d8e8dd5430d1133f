package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/veldkamp-software/passfoto/internal/check"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Landmark provider: "goface", "rekognition" or "mock".
	LandmarkProvider string `envconfig:"LANDMARK_PROVIDER" default:"goface"`
	GofaceModelsDir  string `envconfig:"GOFACE_MODELS_DIR" default:"models"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"eu-west-1"`

	// Photo storage
	StorageDir string `envconfig:"STORAGE_DIR" default:"data/photos"`

	// Check thresholds and breakpoints.
	Checks check.Config
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
