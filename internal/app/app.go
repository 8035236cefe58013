package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"hydrodash/internal/api"
	"hydrodash/internal/cache"
	"hydrodash/internal/cachebust"
	"hydrodash/internal/config"
	"hydrodash/internal/database"
	"hydrodash/internal/metrics"
	"hydrodash/internal/series"
	"hydrodash/internal/stations"
)

// App holds the components shared by the server and the CLI
type App struct {
	Config    *config.Config
	Client    *api.Client
	Bucketer  *cachebust.Bucketer
	Loader    *series.Loader
	Directory *stations.Directory

	closers []func() error
}

// New wires the resource client, series cache, loader and station directory
// described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Client:   api.NewClient(cfg.Resources.BaseURL, cfg.Resources.Timeout),
		Bucketer: cachebust.New(cfg.Cache.Window),
	}

	opts := []series.Option{series.WithLogger(logger)}
	c, err := a.newCache(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c != nil {
		opts = append(opts, series.WithCache(c))
	}
	a.Loader = series.NewLoader(a.Client, a.Bucketer, opts...)

	var store stations.Store
	if cfg.Directory.Source == config.SourceMySQL {
		db, err := database.NewDB(config.GetDatabaseDSN())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open station database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		store = db
	}

	a.Directory, err = stations.Load(ctx, cfg.Directory.Source, cfg.Directory.Path, a.Client, store)
	if err != nil {
		a.Close()
		return nil, err
	}
	metrics.StationsLoaded.Set(float64(a.Directory.Len()))

	logger.Info("station directory loaded",
		"source", cfg.Directory.Source,
		"stations", a.Directory.Len(),
		"cache", cfg.Cache.Backend,
		"window", cfg.Cache.Window,
	)
	return a, nil
}

// selectionTTL bounds how long the none backend keeps a series, long enough
// for the series and chart requests of one dashboard selection
const selectionTTL = time.Minute

func (a *App) newCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (series.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewShortLived(cfg.Cache.Size, selectionTTL), nil
	case config.CacheMemory, "":
		return cache.NewMemory(cfg.Cache.Size), nil
	case config.CacheRedis:
		redisCfg := config.GetRedisConfig()
		client := redis.NewClient(redisCfg.Options())
		a.closers = append(a.closers, client.Close)

		rc := cache.NewRedis(client, redisCfg.KeyPrefix)
		if err := rc.Ping(ctx); err != nil {
			// lookups degrade to misses until redis comes back
			logger.Warn("redis series cache unreachable", "addr", redisCfg.Addr, "error", err)
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// Close releases database and redis connections
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
