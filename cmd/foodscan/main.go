package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/vbonduro/foodscan/internal/analysis"
	"github.com/vbonduro/foodscan/internal/config"
	"github.com/vbonduro/foodscan/internal/db"
	"github.com/vbonduro/foodscan/internal/logging"
	"github.com/vbonduro/foodscan/internal/photostore"
	"github.com/vbonduro/foodscan/internal/photostore/local"
	miniostore "github.com/vbonduro/foodscan/internal/photostore/minio"
	"github.com/vbonduro/foodscan/internal/service"
	"github.com/vbonduro/foodscan/internal/store"
	"github.com/vbonduro/foodscan/internal/vision/backend"
	"github.com/vbonduro/foodscan/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return
	}

	ctx := context.Background()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	visionAnalyzer, err := backend.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize vision backend", "error", err)
		return
	}

	photoStg, err := newPhotoStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	scanService := service.NewScanService(
		store.NewScanStore(database),
		analysis.NewAnalyzer(visionAnalyzer, cfg.ModelTimeout, logger),
		photoStg,
		logger,
	)
	server := web.NewServer(scanService, web.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		CORSOrigins:    cfg.CORSOrigins,
	}, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

// newPhotoStore returns a nil interface when archiving is disabled.
func newPhotoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case "local":
		logger.Info("archiving photos on disk", "path", cfg.PhotoPath)
		return local.NewLocalPhotoStore(cfg.PhotoPath)
	case "minio":
		logger.Info("archiving photos in object storage", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
		return miniostore.NewMinioPhotoStore(ctx, miniostore.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.MinioRegion,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		logger.Info("photo archiving disabled")
		return nil, nil
	}
}
