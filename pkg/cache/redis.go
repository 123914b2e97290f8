package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/school-units-api/pkg/config"
)

const pingTimeout = 5 * time.Second

// NewRedis returns a configured Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// NewOptionalRedis connects when caching is enabled. A failed connection is logged and
// yields a nil client so the API keeps serving uncached lookups.
func NewOptionalRedis(cacheCfg config.CacheConfig, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	if !cacheCfg.Enabled {
		return nil
	}
	client, err := NewRedis(cfg)
	if err != nil {
		logger.Warn("redis unavailable, lookup cache disabled", zap.Error(err))
		return nil
	}
	return client
}
