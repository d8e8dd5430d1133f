package face

import (
	"context"
	"testing"

	"github.com/veldkamp-software/passfoto/internal/config"
	"github.com/veldkamp-software/passfoto/internal/provider/mock"
)

func TestNewLandmarkProvider_Mock(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{LandmarkProvider: "mock"}

	prov, err := NewLandmarkProvider(ctx, cfg)
	if err != nil {
		t.Fatalf("NewLandmarkProvider() error = %v", err)
	}
	defer prov.Close()

	if _, ok := prov.(*mock.Provider); !ok {
		t.Errorf("NewLandmarkProvider() returned type %T, want *mock.Provider", prov)
	}
	if got := prov.Name(); got != "mock" {
		t.Errorf("Name() = %q, want %q", got, "mock")
	}
}

func TestNewLandmarkProvider_Unknown(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{LandmarkProvider: "mediapipe"}

	_, err := NewLandmarkProvider(ctx, cfg)
	if err == nil {
		t.Fatal("NewLandmarkProvider() expected error for unknown provider")
	}
}

func TestNewLandmarkProvider_GofaceMissingModels(t *testing.T) {
	ctx := context.Background()

	// A nonexistent models dir must surface as a constructor error, not a
	// first-detection failure.
	cfg := &config.Config{
		LandmarkProvider: "goface",
		GofaceModelsDir:  t.TempDir(),
	}

	_, err := NewLandmarkProvider(ctx, cfg)
	if err == nil {
		t.Fatal("NewLandmarkProvider() expected error for empty models dir")
	}
}
