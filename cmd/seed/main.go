package main

import (
	"context"
	"log/slog"
	"os"

	"hydrodash/internal/config"
	"hydrodash/internal/database"
	"hydrodash/internal/logging"
	"hydrodash/internal/models"
	"hydrodash/internal/stations"
)

var version = "dev"

// stationWriter is satisfied by database.DB
type stationWriter interface {
	UpsertStation(ctx context.Context, st models.Station) error
}

// Imports a sensors.json station directory into the MySQL stations table
func main() {
	level, err := config.ParseLogLevel(os.Getenv("LOG_LEVEL"))
	logger := logging.New(level, version, "hydrodash-seed")
	if err != nil {
		logger.Warn("ignoring LOG_LEVEL", "error", err)
	}

	path := "./public/data/sensors.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read station directory", "path", path, "error", err)
		os.Exit(1)
	}

	dir, err := stations.Parse(data)
	if err != nil {
		logger.Error("failed to parse station directory", "path", path, "error", err)
		os.Exit(1)
	}

	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	count, skipped := seed(context.Background(), logger, db, dir)
	logger.Info("import complete", "upserted", count, "skipped", skipped)
}

// seed upserts every station of dir, skipping the ones the store rejects
func seed(ctx context.Context, logger *slog.Logger, db stationWriter, dir *stations.Directory) (count, skipped int) {
	for _, st := range dir.All() {
		if err := db.UpsertStation(ctx, st); err != nil {
			logger.Warn("failed to upsert station", "station", st.Key, "error", err)
			skipped++
			continue
		}
		count++
	}
	return count, skipped
}
