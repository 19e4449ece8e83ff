// Package cache 提供键值缓存与按名称加锁，Redis 可用时走 Redis，否则退化为进程内实现
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrLockTimeout 在上下文结束前未能获得锁
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Cache 键值缓存
type Cache interface {
	// Get 未命中时返回 ok=false 且 err=nil
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Locker 按名称互斥
type Locker interface {
	// Lock 阻塞直到获得锁或 ctx 结束，返回的 unlock 可安全重复调用
	Lock(ctx context.Context, name string) (unlock func(), err error)
}
