package vision

import (
	"context"
	"io"
)

// VisionAnalyzer sends one prompt and one image to a multimodal model and
// returns the model's text reply unchanged.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, prompt string, r io.Reader, mimeType string) (string, error)
}
