package series

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"hydrodash/internal/api"
	"hydrodash/internal/cachebust"
	"hydrodash/internal/metrics"
	"hydrodash/internal/models"
)

// Fetcher downloads a resource. api.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Cache stores parsed series keyed by the cache-busted resource URL
type Cache interface {
	Get(ctx context.Context, key string) ([]models.SeriesPoint, bool)
	Set(ctx context.Context, key string, points []models.SeriesPoint, ttl time.Duration)
	Name() string
}

// Loader fetches prediction CSVs and turns them into ordered series
type Loader struct {
	fetcher  Fetcher
	bucketer *cachebust.Bucketer
	cache    Cache
	logger   *slog.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithCache enables caching of parsed series for the rest of the window
func WithCache(c Cache) Option {
	return func(l *Loader) {
		l.cache = c
	}
}

// WithLogger sets the loader logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a series loader. A nil bucketer uses the default 4-hour
// wall-clock window.
func NewLoader(fetcher Fetcher, bucketer *cachebust.Bucketer, opts ...Option) *Loader {
	if bucketer == nil {
		bucketer = cachebust.New(cachebust.DefaultWindow)
	}
	l := &Loader{
		fetcher:  fetcher,
		bucketer: bucketer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Bucketer returns the bucketer used to decorate resource URLs
func (l *Loader) Bucketer() *cachebust.Bucketer {
	return l.bucketer
}

// LoadSeries downloads the CSV at path and returns its points in ascending
// date order. It fails with *FetchError, *ParseError or *EmptyResultError.
func (l *Loader) LoadSeries(ctx context.Context, path string) ([]models.SeriesPoint, error) {
	start := time.Now()
	bucket, expires := l.bucketer.Current()
	url := cachebust.DecorateWith(path, bucket)

	if l.cache != nil {
		if points, ok := l.cache.Get(ctx, url); ok {
			metrics.RecordCacheLookup(l.cache.Name(), true)
			metrics.RecordSeriesLoad("ok", time.Since(start))
			return clonePoints(points), nil
		}
		metrics.RecordCacheLookup(l.cache.Name(), false)
	}

	points, err := l.fetchAndParse(ctx, path, url)
	metrics.RecordSeriesLoad(outcome(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	// a window that closed during the fetch leaves nothing worth caching
	if ttl := l.bucketer.Until(expires); l.cache != nil && ttl > 0 {
		l.cache.Set(ctx, url, points, ttl)
	}

	l.logger.Debug("series loaded", "path", path, "points", len(points), "duration", time.Since(start))
	return points, nil
}

func (l *Loader) fetchAndParse(ctx context.Context, path, url string) ([]models.SeriesPoint, error) {
	body, err := l.fetcher.Get(ctx, url)
	if err != nil {
		fetchErr := &FetchError{Path: path, Err: err}
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			fetchErr.Status = statusErr.StatusCode
		}
		return nil, fetchErr
	}

	return Parse(path, bytes.NewReader(body))
}

func outcome(err error) string {
	var (
		fetchErr *FetchError
		parseErr *ParseError
		emptyErr *EmptyResultError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &fetchErr):
		return "fetch_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	case errors.As(err, &emptyErr):
		return "empty"
	default:
		return "error"
	}
}

func clonePoints(points []models.SeriesPoint) []models.SeriesPoint {
	out := make([]models.SeriesPoint, len(points))
	copy(out, points)
	return out
}
