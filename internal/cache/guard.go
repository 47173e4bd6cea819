// Package cache holds the auto-link debounce guards.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key this service writes to Redis.
const KeyPrefix = "unit_recon:"

// RedisKey namespaces a guard key.
func RedisKey(key string) string {
	return KeyPrefix + key
}

// MemoryGuard debounces within a single process.
type MemoryGuard struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryGuard returns an empty guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{expires: map[string]time.Time{}, now: time.Now}
}

// Acquire takes key for ttl. It returns false while an earlier acquisition is still live.
func (g *MemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if exp, ok := g.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.expires[key] = now.Add(ttl)

	// drop stale entries so the map does not grow with every pair ever seen
	for k, exp := range g.expires {
		if !now.Before(exp) {
			delete(g.expires, k)
		}
	}
	return true, nil
}

// Release forgets key.
func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.expires, key)
	return nil
}

// RedisGuard debounces across processes with SET NX and an expiry.
type RedisGuard struct {
	rdb *rd.Client
}

// NewRedisGuard wraps an existing client.
func NewRedisGuard(rdb *rd.Client) *RedisGuard {
	return &RedisGuard{rdb: rdb}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, RedisKey(key), time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.rdb.Del(ctx, RedisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*rd.Client, error) {
	rdb := rd.NewClient(&rd.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}
