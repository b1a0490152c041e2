package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"kaizen-server/internal/config"
	domain "kaizen-server/internal/domain/kaizen"
	"kaizen-server/internal/infrastructure/database"
	"kaizen-server/internal/infrastructure/logger"
	"kaizen-server/internal/infrastructure/observability"
	repo "kaizen-server/internal/infrastructure/repository/kaizen"
	"kaizen-server/internal/infrastructure/storage"
	"kaizen-server/internal/interfaces/httpserver"
)

// @title Kaizen API
// @version 1.0
// @description Continuous-improvement record tracking with attachments and action plans
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		File:     cfg.DatabaseFile(),
		LogLevel: gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if cfg.SeedSampleData {
		if err := database.SeedSampleData(ctx, db, log); err != nil {
			log.Fatal().Err(err).Msg("seed sample data")
		}
	}

	storageClient, err := provideStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	kaizenRepository := repo.NewRepository(db)
	kaizenService := domain.NewService(cfg, kaizenRepository, storageClient, log)

	httpServer := httpserver.New(cfg, log, kaizenService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// provideStorage creates the attachment storage backend selected by
// ATTACHMENT_STORAGE_BACKEND.
func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Storage, error) {
	switch {
	case cfg.IsLocalStorage():
		return storage.NewLocalStorage(cfg, log)
	case cfg.IsS3Storage():
		return storage.NewS3Storage(ctx, cfg, log)
	default:
		// SharePoint via Microsoft Graph
		return storage.NewGraphStorage(cfg, log)
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
