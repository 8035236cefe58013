package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"hydrodash/internal/models"
)

const defaultKeyPrefix = "hydrodash:series:"

// Redis shares parsed series between server instances
type Redis struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedis wraps an existing client. Keys are stored under prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{
		client: client,
		prefix: prefix,
		logger: slog.Default(),
	}
}

func (r *Redis) Name() string { return "redis" }

// Key returns the redis key used for a cache key
func (r *Redis) Key(key string) string {
	return r.prefix + key
}

// Get returns the cached series. Redis failures are logged and reported as
// a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]models.SeriesPoint, bool) {
	data, err := r.client.Get(ctx, r.Key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	points, err := decodePoints(data)
	if err != nil {
		r.logger.Warn("redis cache entry is corrupt", "key", key, "error", err)
		return nil, false
	}
	return points, true
}

func (r *Redis) Set(ctx context.Context, key string, points []models.SeriesPoint, ttl time.Duration) {
	data, err := encodePoints(points)
	if err != nil {
		r.logger.Warn("failed to encode series for redis", "key", key, "error", err)
		return
	}

	if err := r.client.Set(ctx, r.Key(key), data, ttl).Err(); err != nil {
		r.logger.Warn("redis cache set failed", "key", key, "error", err)
	}
}

// Ping checks connectivity
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func encodePoints(points []models.SeriesPoint) ([]byte, error) {
	return json.Marshal(points)
}

func decodePoints(data []byte) ([]models.SeriesPoint, error) {
	var points []models.SeriesPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, err
	}
	return points, nil
}
