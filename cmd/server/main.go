package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hydrodash/internal/app"
	"hydrodash/internal/config"
	"hydrodash/internal/logging"
	"hydrodash/internal/metrics"
	"hydrodash/internal/server"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := os.Getenv("HYDRODASH_CONFIG")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.SlogLevel(), version, "hydrodash")
	slog.SetDefault(logger)
	metrics.SetAppInfo(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	srv, err := server.NewServer(a.Directory, a.Loader, server.Options{
		StaticDir:       cfg.Server.StaticDir,
		ChartWidth:      cfg.Chart.Width,
		ChartHeight:     cfg.Chart.Height,
		ZScoreThreshold: cfg.Stats.ZScoreThreshold,
		Version:         version,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(ctx, cfg.Server.Addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
