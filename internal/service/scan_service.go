package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vbonduro/foodscan/internal/analysis"
	"github.com/vbonduro/foodscan/internal/domain"
	"github.com/vbonduro/foodscan/internal/insight"
	"github.com/vbonduro/foodscan/internal/logging"
	"github.com/vbonduro/foodscan/internal/photostore"
	"github.com/vbonduro/foodscan/internal/report"
	"github.com/vbonduro/foodscan/internal/vision"
)

var (
	ErrScanNotFound  = errors.New("scan not found")
	ErrPhotoNotFound = errors.New("photo not found")
)

const photoPrefix = "scans"

// scanRepository is the subset of store.ScanStore that ScanService requires.
type scanRepository interface {
	Create(ctx context.Context, imagePath, photoKey string, result *analysis.Result) (*domain.ScanRecord, error)
	GetByID(ctx context.Context, id int64) (*domain.ScanRecord, error)
	List(ctx context.Context) ([]*domain.ScanRecord, error)
}

// imageAnalyzer is the subset of analysis.Analyzer that ScanService requires.
type imageAnalyzer interface {
	AnalyzeImage(ctx context.Context, img *vision.Image) (*analysis.Result, error)
}

type ScanService struct {
	scans    scanRepository
	analyzer imageAnalyzer
	photoStg photostore.PhotoStore
	logger   *slog.Logger
}

// NewScanService wires the pipeline. photoStg may be nil, in which case
// uploads are not archived.
func NewScanService(
	scans scanRepository,
	analyzer imageAnalyzer,
	photoStg photostore.PhotoStore,
	logger *slog.Logger,
) *ScanService {
	return &ScanService{
		scans:    scans,
		analyzer: analyzer,
		photoStg: photoStg,
		logger:   logger,
	}
}

// ScanDetail is a stored scan with the insights derived from it.
type ScanDetail struct {
	Record         *domain.ScanRecord `json:"record"`
	Summary        *insight.Summary   `json:"summary"`
	HealthInsights *insight.Insights  `json:"health_insights"`

	result *analysis.Result
}

// AnalyzeAndStore runs the analysis on an uploaded image, archives the photo
// when a store is configured, and records the result. Analysis failures are
// returned as *analysis.Error; anything else is an internal failure.
func (s *ScanService) AnalyzeAndStore(ctx context.Context, filename string, data []byte) (*analysis.Result, *domain.ScanRecord, error) {
	logger := logging.FromContext(ctx, s.logger)
	start := time.Now()
	logger.Info("analysis started", "filename", filename, "bytes", len(data))

	img, err := vision.DecodeImage(data)
	if err != nil {
		return nil, nil, &analysis.Error{Kind: analysis.KindImageDecode, Err: err}
	}
	logger.Debug("image decoded", "mime_type", img.MIMEType, "width", img.Width, "height", img.Height)

	result, err := s.analyzer.AnalyzeImage(ctx, img)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("analysis complete", "food_type", result.Type, "duration_ms", time.Since(start).Milliseconds())

	var photoKey string
	if s.photoStg != nil {
		photoKey, err = s.photoStg.Save(ctx, photoPrefix, img.MIMEType, bytes.NewReader(img.Data))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to save photo: %w", err)
		}
		logger.Debug("photo saved", "storage_key", photoKey)
	}

	rec, err := s.scans.Create(ctx, filename, photoKey, result)
	if err != nil {
		if photoKey != "" {
			if derr := s.photoStg.Delete(ctx, photoKey); derr != nil {
				logger.Error("failed to roll back photo after store error", "storage_key", photoKey, "error", derr)
			}
		}
		return nil, nil, fmt.Errorf("failed to store scan: %w", err)
	}

	logger.Info("scan stored", "scan_id", rec.ID, "food_type", rec.FoodType)
	return result, rec, nil
}

func (s *ScanService) History(ctx context.Context) ([]*domain.ScanRecord, error) {
	return s.scans.List(ctx)
}

// GetScan loads a stored scan and derives its summary and insights.
func (s *ScanService) GetScan(ctx context.Context, id int64) (*ScanDetail, error) {
	rec, err := s.scans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	if rec == nil {
		return nil, ErrScanNotFound
	}

	result, err := analysis.Restore(rec.FoodType, rec.ScanResult)
	if err != nil {
		return nil, fmt.Errorf("failed to restore scan %d: %w", id, err)
	}
	if result.ViewErr != nil {
		logging.FromContext(ctx, s.logger).Warn("stored scan does not match schema",
			"scan_id", id, "food_type", rec.FoodType, "error", result.ViewErr)
	}

	return &ScanDetail{
		Record:         rec,
		Summary:        insight.Summarize(result),
		HealthInsights: insight.Generate(result),
		result:         result,
	}, nil
}

// Report renders the text report for a stored scan.
func (s *ScanService) Report(ctx context.Context, id int64) (string, error) {
	detail, err := s.GetScan(ctx, id)
	if err != nil {
		return "", err
	}
	return report.String(detail.result, detail.Summary, detail.HealthInsights), nil
}

// Photo opens the archived upload for a scan. The caller closes the reader.
func (s *ScanService) Photo(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	rec, err := s.scans.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get scan: %w", err)
	}
	if rec == nil {
		return nil, "", ErrScanNotFound
	}
	if s.photoStg == nil || rec.PhotoKey == "" {
		return nil, "", ErrPhotoNotFound
	}

	rc, mimeType, err := s.photoStg.Get(ctx, rec.PhotoKey)
	if errors.Is(err, photostore.ErrNotFound) {
		return nil, "", ErrPhotoNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get photo: %w", err)
	}
	return rc, mimeType, nil
}
