// Package cache holds the series cache backends. Entries are keyed by the
// cache-busted resource URL and expire when the bucket window closes.
package cache

import (
	"context"
	"time"

	"github.com/bluele/gcache"

	"hydrodash/internal/models"
)

const defaultMemorySize = 256

// Memory is an in-process LRU series cache
type Memory struct {
	lru    gcache.Cache
	maxTTL time.Duration
}

// NewMemory creates an LRU cache holding up to size series
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = defaultMemorySize
	}
	return &Memory{
		lru: gcache.New(size).LRU().Build(),
	}
}

// NewShortLived creates an LRU cache whose entries live at most maxTTL,
// whatever ttl Set is given.
func NewShortLived(size int, maxTTL time.Duration) *Memory {
	m := NewMemory(size)
	m.maxTTL = maxTTL
	return m
}

func (m *Memory) Name() string { return "memory" }

// MaxTTL returns the entry lifetime cap, zero when uncapped
func (m *Memory) MaxTTL() time.Duration {
	return m.maxTTL
}

func (m *Memory) Get(ctx context.Context, key string) ([]models.SeriesPoint, bool) {
	v, err := m.lru.Get(key)
	if err != nil {
		return nil, false
	}
	points, ok := v.([]models.SeriesPoint)
	return points, ok
}

func (m *Memory) Set(ctx context.Context, key string, points []models.SeriesPoint, ttl time.Duration) {
	stored := make([]models.SeriesPoint, len(points))
	copy(stored, points)
	if m.maxTTL > 0 && ttl > m.maxTTL {
		ttl = m.maxTTL
	}
	m.lru.SetWithExpire(key, stored, ttl)
}

// Len returns the number of live entries
func (m *Memory) Len() int {
	return m.lru.Len(true)
}
