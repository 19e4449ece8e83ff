package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"github.com/secondbrain/backend/internal/infrastructure/config"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// ProvideRedisClient 连接 Redis，未配置地址时返回 nil
func ProvideRedisClient(cfg *config.RedisConfig) (*redis.Client, func(), error) {
	logger := log.NewModuleLogger("cache", "provider")
	if cfg.Addr == "" {
		logger.Info("Redis not configured, using in-process cache and locks")
		return nil, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Connected to redis", "addr", cfg.Addr, "db", cfg.DB)
	return client, func() { _ = client.Close() }, nil
}

// ProvideCache 有 Redis 客户端时使用 Redis 缓存
func ProvideCache(client *redis.Client) Cache {
	if client == nil {
		return NewMemoryCache()
	}
	return NewRedisCache(client)
}

// ProvideLocker 有 Redis 客户端时使用 Redis 锁
func ProvideLocker(client *redis.Client) Locker {
	if client == nil {
		return NewMemoryLocker()
	}
	return NewRedisLocker(client)
}

// ProviderSet 缓存 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideRedisClient,
	ProvideCache,
	ProvideLocker,
)
