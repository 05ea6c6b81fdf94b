package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/foodscan/internal/analysis"
	"github.com/vbonduro/foodscan/internal/db"
	"github.com/vbonduro/foodscan/internal/domain"
	"github.com/vbonduro/foodscan/internal/insight"
	"github.com/vbonduro/foodscan/internal/photostore"
	"github.com/vbonduro/foodscan/internal/store"
	"github.com/vbonduro/foodscan/internal/vision"
)

const packagedReply = `{
	"product_info": {"product_name": "Trail Mix", "brand": "Acme", "package_size": "200g"},
	"nutrition_facts": {
		"calories": "150",
		"macronutrients": {
			"protein": {"amount": "5", "unit": "g"},
			"total_carbohydrates": {"amount": "10", "unit": "g"},
			"total_fat": {"amount": "5", "unit": "g"},
			"total_sugars": {"amount": "3", "unit": "g"}
		}
	},
	"allergens": ["peanuts"]
}`

// stubAnalyzer parses a fixed model reply.
type stubAnalyzer struct {
	reply string
	err   error
	calls int
	mime  string
}

func (s *stubAnalyzer) AnalyzeImage(_ context.Context, img *vision.Image) (*analysis.Result, error) {
	s.calls++
	s.mime = img.MIMEType
	if s.err != nil {
		return nil, s.err
	}
	return analysis.ParseResponse(s.reply)
}

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	saved   map[string][]byte
	saveErr error
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	key := photostore.NewKey(prefix, mimeType)
	s.saved[key] = data
	return key, nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.saved[key]
	if !ok {
		return nil, "", photostore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), photostore.MIMEType(key), nil
}

func (s *stubPhotoStore) Delete(_ context.Context, key string) error {
	delete(s.saved, key)
	return nil
}

// failingRepo wraps a real store and fails every insert.
type failingRepo struct {
	*store.ScanStore
}

func (failingRepo) Create(context.Context, string, string, *analysis.Result) (*domain.ScanRecord, error) {
	return nil, errors.New("disk I/O error")
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func newScanStore(t *testing.T) *store.ScanStore {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return store.NewScanStore(d)
}

func TestAnalyzeAndStore(t *testing.T) {
	scans := newScanStore(t)
	analyzer := &stubAnalyzer{reply: packagedReply}
	svc := NewScanService(scans, analyzer, nil, slog.Default())
	ctx := context.Background()

	result, rec, err := svc.AnalyzeAndStore(ctx, "mix.png", pngBytes(t))
	require.NoError(t, err)

	assert.Equal(t, domain.FoodTypePackaged, result.Type)
	assert.Equal(t, domain.FoodTypePackaged, rec.FoodType)
	assert.Equal(t, "mix.png", rec.ImagePath)
	assert.Empty(t, rec.PhotoKey)
	assert.JSONEq(t, packagedReply, string(rec.ScanResult))
	assert.Equal(t, "image/png", analyzer.mime)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec.ID, history[0].ID)
}

func TestAnalyzeAndStoreInvalidImage(t *testing.T) {
	analyzer := &stubAnalyzer{reply: packagedReply}
	svc := NewScanService(newScanStore(t), analyzer, nil, slog.Default())

	_, _, err := svc.AnalyzeAndStore(context.Background(), "notes.png", []byte("plain text"))

	var aerr *analysis.Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, analysis.KindImageDecode, aerr.Kind)
	assert.Zero(t, analyzer.calls)
}

func TestAnalyzeAndStoreAnalysisErrorStoresNothing(t *testing.T) {
	scans := newScanStore(t)
	photos := newStubPhotoStore()
	analyzer := &stubAnalyzer{reply: "no json here"}
	svc := NewScanService(scans, analyzer, photos, slog.Default())
	ctx := context.Background()

	_, _, err := svc.AnalyzeAndStore(ctx, "mix.png", pngBytes(t))

	var aerr *analysis.Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, analysis.KindNoJSONFound, aerr.Kind)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, photos.saved)
}

func TestAnalyzeAndStoreArchivesPhoto(t *testing.T) {
	photos := newStubPhotoStore()
	svc := NewScanService(newScanStore(t), &stubAnalyzer{reply: packagedReply}, photos, slog.Default())
	ctx := context.Background()
	data := pngBytes(t)

	_, rec, err := svc.AnalyzeAndStore(ctx, "mix.png", data)
	require.NoError(t, err)

	require.NotEmpty(t, rec.PhotoKey)
	assert.Equal(t, data, photos.saved[rec.PhotoKey])

	rc, mimeType, err := svc.Photo(ctx, rec.ID)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", mimeType)
}

func TestAnalyzeAndStoreArchiveFailure(t *testing.T) {
	photos := newStubPhotoStore()
	photos.saveErr = errors.New("bucket unavailable")
	svc := NewScanService(newScanStore(t), &stubAnalyzer{reply: packagedReply}, photos, slog.Default())

	_, _, err := svc.AnalyzeAndStore(context.Background(), "mix.png", pngBytes(t))

	require.Error(t, err)
	var aerr *analysis.Error
	assert.False(t, errors.As(err, &aerr))
}

func TestAnalyzeAndStoreRollsBackPhotoOnStoreError(t *testing.T) {
	photos := newStubPhotoStore()
	repo := failingRepo{newScanStore(t)}
	svc := NewScanService(repo, &stubAnalyzer{reply: packagedReply}, photos, slog.Default())

	_, _, err := svc.AnalyzeAndStore(context.Background(), "mix.png", pngBytes(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store scan")
	assert.Empty(t, photos.saved)
}

func TestGetScan(t *testing.T) {
	svc := NewScanService(newScanStore(t), &stubAnalyzer{reply: packagedReply}, nil, slog.Default())
	ctx := context.Background()

	_, rec, err := svc.AnalyzeAndStore(ctx, "mix.png", pngBytes(t))
	require.NoError(t, err)

	detail, err := svc.GetScan(ctx, rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, detail.Record.ID)
	assert.Equal(t, domain.FoodTypePackaged, detail.Summary.Type)
	assert.Contains(t, detail.Summary.NutritionalHighlights, "Protein to carbohydrate ratio: 0.5:1")
	assert.Equal(t, []string{"Low in sugar", "Contains allergens: peanuts"}, detail.HealthInsights.DietaryConsiderations)
	require.NotNil(t, detail.HealthInsights.MacroDistribution)
	assert.Equal(t, 50.0, detail.HealthInsights.MacroDistribution.CarbsPercentage)
}

func TestGetScanNotFound(t *testing.T) {
	svc := NewScanService(newScanStore(t), &stubAnalyzer{}, nil, slog.Default())

	_, err := svc.GetScan(context.Background(), 99)
	assert.ErrorIs(t, err, ErrScanNotFound)

	_, err = svc.Report(context.Background(), 99)
	assert.ErrorIs(t, err, ErrScanNotFound)
}

func TestReport(t *testing.T) {
	svc := NewScanService(newScanStore(t), &stubAnalyzer{reply: packagedReply}, nil, slog.Default())
	ctx := context.Background()

	_, rec, err := svc.AnalyzeAndStore(ctx, "mix.png", pngBytes(t))
	require.NoError(t, err)

	text, err := svc.Report(ctx, rec.ID)
	require.NoError(t, err)

	assert.Contains(t, text, "Product: Trail Mix")
	assert.Contains(t, text, "• Contains allergens: peanuts")
	assert.NotContains(t, text, insight.FallbackNote)
}

func TestPhotoWithoutArchive(t *testing.T) {
	svc := NewScanService(newScanStore(t), &stubAnalyzer{reply: packagedReply}, nil, slog.Default())
	ctx := context.Background()

	_, rec, err := svc.AnalyzeAndStore(ctx, "mix.png", pngBytes(t))
	require.NoError(t, err)

	_, _, err = svc.Photo(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrPhotoNotFound)

	_, _, err = svc.Photo(ctx, rec.ID+1)
	assert.ErrorIs(t, err, ErrScanNotFound)
}
