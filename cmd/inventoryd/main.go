package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"inventory-backend/config"
	"inventory-backend/internal/api"
	"inventory-backend/internal/auditlog"
	"inventory-backend/internal/blob"
	"inventory-backend/internal/db"
	"inventory-backend/internal/events"
	"inventory-backend/internal/importer"
	"inventory-backend/internal/logging"
	"inventory-backend/internal/metrics"
	"inventory-backend/internal/notification"
	"inventory-backend/internal/pricing"
	"inventory-backend/internal/store"
	"inventory-backend/internal/workflow"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, "inventory-backend")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	blobs, err := blob.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to open blob storage", zap.Error(err))
	}
	logger.Info("blob storage ready", zap.String("driver", string(blobs.Driver())))

	audit := auditlog.NewRecorder(appStore, cfg.Audit.MaxEntries, logger)

	var (
		notifier       workflow.Notifier
		webpushOptions *webpush.Options
	)
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, logger)
		pool.Start(ctx)
		notifier = pool
	} else {
		logger.Warn("VAPID keys are not configured; watch-list notifications are disabled")
	}

	handler := api.NewHandler(api.Deps{
		Store:          appStore,
		Pricing:        pricing.NewEngine(appStore, cfg.Pricing.PreviewTTL, audit, logger),
		Workflow:       workflow.NewService(appStore, notifier, audit, logger),
		Importer:       importer.NewService(appStore, cfg.Import.UploadTTL, audit, logger),
		Events:         events.NewService(appStore, audit, logger),
		Audit:          audit,
		Blobs:          blobs,
		Metrics:        metrics.New(),
		WebPush:        webpushOptions,
		Log:            logger,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
	})

	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server Shutdown", zap.Error(err))
	}

	logger.Info("server gracefully stopped")
}
