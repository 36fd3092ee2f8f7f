package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sonorousduck/foodtracker-backend/internal/app"
	"github.com/sonorousduck/foodtracker-backend/internal/config"
	"github.com/sonorousduck/foodtracker-backend/internal/utils/logger"
)

func main() {
	// Local development convenience; the file is absent in deployments.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	warnings, err := cfg.Validate()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	for _, w := range warnings {
		zl.Warn(w)
	}
	zl.Info("starting foodtracker auth service",
		zap.String("environment", cfg.Environment),
		zap.String("host", app.Hostname()),
	)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize", zap.Error(err))
	}

	if err := a.Run(ctx); err != nil {
		zl.Fatal("service exited", zap.Error(err))
	}
}
