// Command validate runs the compliance check set on a single image file and
// prints the verdict. Useful for trying out a photo without the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gocv.io/x/gocv"

	"github.com/veldkamp-software/passfoto/internal/check"
	"github.com/veldkamp-software/passfoto/internal/domain"
	"github.com/veldkamp-software/passfoto/internal/pipeline"
	"github.com/veldkamp-software/passfoto/internal/provider"
	"github.com/veldkamp-software/passfoto/internal/provider/goface"
	"github.com/veldkamp-software/passfoto/internal/provider/mock"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	imagePath := flag.String("image", "", "Path to the photo to validate (required)")
	providerName := flag.String("provider", "goface", "Landmark provider: goface, mock")
	modelsDir := flag.String("models", "models", "Directory with the goface model files")
	asJSON := flag.Bool("json", false, "Print the full result as JSON")
	verbose := flag.Bool("v", false, "Log pipeline progress to stderr")
	flag.Parse()

	if *imagePath == "" {
		flag.Usage()
		return fmt.Errorf("image flag is required")
	}

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	landmarkProvider, err := buildProvider(*providerName, *modelsDir)
	if err != nil {
		return err
	}
	defer func() { _ = landmarkProvider.Close() }()

	img := gocv.IMRead(*imagePath, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return fmt.Errorf("could not read image %s", *imagePath)
	}
	defer img.Close()

	checks, err := check.Defaults(check.DefaultConfig())
	if err != nil {
		return fmt.Errorf("build check set: %w", err)
	}

	svc := pipeline.New(landmarkProvider, checks, logger)
	if *verbose {
		svc.AddSink(pipeline.NewSlogSink(logger))
	}

	photo := domain.NewPhoto(img)
	if err := svc.Validate(context.Background(), photo); err != nil {
		return fmt.Errorf("validate %s: %w", *imagePath, err)
	}

	if *asJSON {
		return printJSON(os.Stdout, photo)
	}
	printReport(os.Stdout, photo)

	if !photo.IsValid() {
		os.Exit(2)
	}
	return nil
}

func buildProvider(name, modelsDir string) (provider.LandmarkProvider, error) {
	switch name {
	case "goface":
		return goface.New(goface.Config{ModelsDir: modelsDir})
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (use: goface, mock)", name)
	}
}

func printJSON(w io.Writer, photo *domain.Photo) error {
	out := struct {
		pipeline.Summary
		Results []domain.CheckResult `json:"results"`
	}{
		Summary: pipeline.Summarize(photo),
		Results: photo.Results,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printReport(w io.Writer, photo *domain.Photo) {
	for _, r := range photo.Results {
		mark := "PASS"
		if !r.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "%-4s  %-14s %.2f  %s\n", mark, r.CheckName, r.Confidence, r.Message)
	}

	summary := pipeline.Summarize(photo)
	fmt.Fprintf(w, "\n%s (confidence %.2f, %d/%d checks passed)\n",
		summary.Status, summary.Confidence, summary.Checks-summary.Failed, summary.Checks)
}
