// Package cache stores synthesized audio keyed by the request that produced it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voiceagent/internal/config"
)

// AudioCache is a byte cache with per-entry expiry.
type AudioCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Name() string
}

// New returns the cache selected by cfg.Backend, or nil when caching is off.
// rdb is only consulted for the "redis" backend.
func New(cfg config.CacheConfig, rdb *redis.Client) (AudioCache, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryCache(cfg.Size, cfg.TTL), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis cache selected but no redis client")
		}
		return NewRedisCache(rdb, "tts:", cfg.TTL), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Hour
	}
	return ttl
}
