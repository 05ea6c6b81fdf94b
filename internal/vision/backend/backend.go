// Package backend builds the configured vision client.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/foodscan/internal/config"
	"github.com/vbonduro/foodscan/internal/vision"
	claudevision "github.com/vbonduro/foodscan/internal/vision/claude"
	geminivision "github.com/vbonduro/foodscan/internal/vision/gemini"
	ollamavision "github.com/vbonduro/foodscan/internal/vision/ollama"
	openaivision "github.com/vbonduro/foodscan/internal/vision/openai"
)

// New returns the client selected by cfg.VisionBackend. Call cfg.Validate
// first; New does not re-check credentials.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (vision.VisionAnalyzer, error) {
	switch cfg.VisionBackend {
	case "gemini":
		logger.Info("using Gemini vision backend", "model", cfg.GeminiModel, "vertex", cfg.GeminiVertex)
		a, err := geminivision.NewGeminiAnalyzer(ctx, geminivision.Config{
			APIKey:   cfg.GoogleAPIKey,
			Model:    cfg.GeminiModel,
			Vertex:   cfg.GeminiVertex,
			Project:  cfg.GoogleProject,
			Location: cfg.GoogleLocation,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeAnalyzer(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	case "openai":
		logger.Info("using OpenAI vision backend", "model", cfg.OpenAIModel)
		return openaivision.NewOpenAIAnalyzer(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaAnalyzer(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown vision backend %q", cfg.VisionBackend)
	}
}
