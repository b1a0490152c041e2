//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kaizen-server/internal/config"
	domain "kaizen-server/internal/domain/kaizen"
	"kaizen-server/internal/infrastructure/database"
	"kaizen-server/internal/infrastructure/logger"
	repo "kaizen-server/internal/infrastructure/repository/kaizen"
	"kaizen-server/internal/interfaces/httpserver"
)

var kaizenSet = wire.NewSet(
	repo.NewRepository,
	wire.Bind(new(domain.Repository), new(*repo.Repository)),
	provideStorage,
	domain.NewService,
)

// BuildApplication assembles the kaizen API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		kaizenSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		File:     cfg.DatabaseFile(),
		LogLevel: gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}
