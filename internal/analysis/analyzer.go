package analysis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/foodscan/internal/logging"
	"github.com/vbonduro/foodscan/internal/vision"
)

// Analyzer runs the two model calls behind one scan: label detection, then
// the schema prompt chosen from its answer.
type Analyzer struct {
	model   vision.VisionAnalyzer
	timeout time.Duration
	logger  *slog.Logger
}

// NewAnalyzer wraps model. A positive timeout bounds each model call; zero
// leaves calls bounded only by the caller's context.
func NewAnalyzer(model vision.VisionAnalyzer, timeout time.Duration, logger *slog.Logger) *Analyzer {
	return &Analyzer{model: model, timeout: timeout, logger: logger}
}

// Analyze decodes data and runs the full pipeline on it. Every failure is an
// *Error.
func (a *Analyzer) Analyze(ctx context.Context, data []byte) (*Result, error) {
	img, err := vision.DecodeImage(data)
	if err != nil {
		return nil, &Error{Kind: KindImageDecode, Err: err}
	}
	return a.AnalyzeImage(ctx, img)
}

// AnalyzeImage runs label detection and the chosen schema prompt on an
// already decoded image and parses the reply.
func (a *Analyzer) AnalyzeImage(ctx context.Context, img *vision.Image) (*Result, error) {
	logger := logging.FromContext(ctx, a.logger)

	hasLabel, err := a.DetectLabel(ctx, img)
	if err != nil {
		return nil, err
	}
	logger.Info("label detection complete", "has_label", hasLabel)

	text, err := a.generate(ctx, SelectPrompt(hasLabel), img)
	if err != nil {
		return nil, &Error{Kind: KindModelCall, Err: err}
	}
	logger.Debug("model response", "chars", len(text), "response", text)

	result, err := ParseResponse(text)
	if err != nil {
		return nil, err
	}
	if result.ViewErr != nil {
		logger.Warn("analysis is not a JSON object", "food_type", result.Type, "error", result.ViewErr)
	}
	return result, nil
}

// DetectLabel asks the model whether img shows a nutrition label. Any reply
// containing "true", in any case, counts as yes.
func (a *Analyzer) DetectLabel(ctx context.Context, img *vision.Image) (bool, error) {
	text, err := a.generate(ctx, LabelPrompt, img)
	if err != nil {
		return false, &Error{Kind: KindLabelDetection, Err: err}
	}
	return strings.Contains(strings.ToLower(text), "true"), nil
}

func (a *Analyzer) generate(ctx context.Context, prompt string, img *vision.Image) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	text, err := a.model.Analyze(ctx, prompt, bytes.NewReader(img.Data), img.MIMEType)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		logging.FromContext(ctx, a.logger).Warn("model call timed out", "timeout", a.timeout)
	}
	return text, err
}
