package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain/backend/internal/infrastructure/config"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testCacheContract(t *testing.T, c Cache) {
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "graph:u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "graph:u1", []byte(`{"nodes":[]}`), time.Minute))
	val, ok, err := c.Get(ctx, "graph:u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"nodes":[]}`, string(val))

	require.NoError(t, c.Delete(ctx, "graph:u1", "graph:missing"))
	_, ok, err = c.Get(ctx, "graph:u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache(t *testing.T) {
	testCacheContract(t, NewMemoryCache())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	now = now.Add(2 * time.Second)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisCache(client)
	testCacheContract(t, c)

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 10*time.Second))
	assert.True(t, mr.Exists(keyPrefix+"k"))
	mr.FastForward(11 * time.Second)
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testLockerSerialises(t *testing.T, l Locker) {
	var (
		active  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "chat-1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func testLockerTimeout(t *testing.T, l Locker) {
	unlock, err := l.Lock(context.Background(), "chat-2")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "chat-2")
	assert.ErrorIs(t, err, ErrLockTimeout)

	other, err := l.Lock(context.Background(), "chat-3")
	require.NoError(t, err)
	other()
}

func TestMemoryLocker(t *testing.T) {
	l := NewMemoryLocker()
	testLockerSerialises(t, l)
	testLockerTimeout(t, l)
	assert.Empty(t, l.locks)
}

func TestRedisLocker(t *testing.T) {
	_, client := setupTestRedis(t)
	testLockerSerialises(t, NewRedisLocker(client))
	testLockerTimeout(t, NewRedisLocker(client))
}

func TestRedisLocker_ReleaseOnlyOwnToken(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewRedisLocker(client)

	unlock, err := l.Lock(context.Background(), "chat-4")
	require.NoError(t, err)

	// 锁被他人接管后，释放不应删除对方的锁
	require.NoError(t, mr.Set(lockPrefix+"chat-4", "someone-else"))
	unlock()
	got, err := mr.Get(lockPrefix + "chat-4")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestProviders(t *testing.T) {
	client, cleanup, err := ProvideRedisClient(&config.RedisConfig{})
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, client)
	assert.IsType(t, &MemoryCache{}, ProvideCache(client))
	assert.IsType(t, &MemoryLocker{}, ProvideLocker(client))

	mr := miniredis.RunT(t)
	client, cleanup, err = ProvideRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &RedisCache{}, ProvideCache(client))
	assert.IsType(t, &RedisLocker{}, ProvideLocker(client))
}
