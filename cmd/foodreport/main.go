// Command foodreport analyzes a local food photo and prints the report.
//
//	foodreport -image lunch.jpg
//	foodreport -image label.png -json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/vbonduro/foodscan/internal/analysis"
	"github.com/vbonduro/foodscan/internal/config"
	"github.com/vbonduro/foodscan/internal/logging"
	"github.com/vbonduro/foodscan/internal/report"
	"github.com/vbonduro/foodscan/internal/vision/backend"
)

func main() {
	imagePath := flag.String("image", "", "path to the food photo")
	asJSON := flag.Bool("json", false, "print the parsed analysis instead of the report")
	flag.Parse()

	if *imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*imagePath, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(imagePath string, asJSON bool) error {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx := context.Background()
	model, err := backend.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vision backend: %w", err)
	}

	result, err := analysis.NewAnalyzer(model, cfg.ModelTimeout, logger).Analyze(ctx, data)
	if err != nil {
		var aerr *analysis.Error
		if errors.As(err, &aerr) {
			logger.Debug("analysis failed", "kind", aerr.Kind)
		}
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return report.Write(os.Stdout, result, nil, nil)
}
