package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/secondbrain/backend/internal/infrastructure/log"
)

const (
	keyPrefix  = "secondbrain:"
	lockPrefix = keyPrefix + "lock:"
	// lockTTL 持锁上限，防止进程崩溃后锁无法释放
	lockTTL = 2 * time.Minute
	// lockPoll 抢锁失败后的重试间隔
	lockPoll = 50 * time.Millisecond
)

// RedisCache 基于 Redis 的缓存
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get 读取缓存
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return val, true, nil
}

// Set 写入缓存
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete 删除缓存
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// RedisLocker 基于 SETNX 的分布式锁
type RedisLocker struct {
	client  *redis.Client
	ownerID string
	logger  *slog.Logger
}

// NewRedisLocker 创建 Redis 锁
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:  client,
		ownerID: generateOwnerID(),
		logger:  log.NewModuleLogger("cache", "locker"),
	}
}

// generateOwnerID hostname:pid:random
func generateOwnerID() string {
	hostname, _ := os.Hostname()
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), hex.EncodeToString(b))
}

// releaseScript 仅当持有者匹配时删除锁
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Lock 轮询 SETNX 直到获得锁
// 同一进程内的并发调用通过 token 区分，避免互相释放
func (l *RedisLocker) Lock(ctx context.Context, name string) (func(), error) {
	key := lockPrefix + name
	token := l.ownerID + ":" + randomToken()

	ticker := time.NewTicker(lockPoll)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 使用独立上下文，请求取消后仍需释放锁
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Result(); err != nil && !errors.Is(err, redis.Nil) {
				l.logger.Warn("Failed to release lock", "lock", name, "error", err)
			}
		})
	}, nil
}

func randomToken() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
