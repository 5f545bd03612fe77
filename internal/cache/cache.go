// internal/cache/cache.go

// Package cache is the optional Redis-backed result cache. It is never
// authoritative: every cache failure, miss or marshal error falls
// through to the live search path.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"basobaas-search/internal/common/database"
	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/common/metrics"
)

// ResultCache stores serialized search responses for a short TTL.
type ResultCache struct {
	redis   *database.RedisClient
	ttl     time.Duration
	enabled bool
	logger  logger.Logger
}

func NewResultCache(rdb *database.RedisClient, ttlSeconds int, enabled bool, log logger.Logger) *ResultCache {
	return &ResultCache{
		redis:   rdb,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: enabled && rdb != nil,
		logger:  log,
	}
}

// Key derives a stable cache key from the normalized query text and the
// page window. Coordinates are rounded to ~100 m so nearby requests
// from the same block share an entry.
func Key(query string, lat, lon float64, page, limit int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	raw := fmt.Sprintf("%s|%.3f|%.3f|%d|%d", normalized, lat, lon, page, limit)
	sum := sha1.Sum([]byte(raw))
	return "search:result:" + hex.EncodeToString(sum[:])
}

// Get loads a cached response into dest. The second return is true only
// on a usable hit.
func (c *ResultCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled {
		return false
	}

	raw, err := c.redis.Get(ctx, key)
	if err == redis.Nil {
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return false
	}
	if err != nil {
		metrics.CacheHits.WithLabelValues("error").Inc()
		c.logger.Warn("cache read failed", map[string]interface{}{"error": err.Error()})
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		metrics.CacheHits.WithLabelValues("error").Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues("hit").Inc()
	return true
}

// Set stores value under key for the configured TTL. Errors are logged
// and swallowed.
func (c *ResultCache) Set(ctx context.Context, key string, value interface{}) {
	if !c.enabled {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
