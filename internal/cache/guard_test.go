package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewMemoryGuard()
	g.now = func() time.Time { return clock }

	ok, err := g.Acquire(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first acquire")

	ok, err = g.Acquire(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire inside ttl")

	ok, err = g.Acquire(ctx, "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other key is independent")

	clock = clock.Add(time.Minute)
	ok, err = g.Acquire(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "acquire after ttl elapsed")
}

func TestMemoryGuard_Release(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGuard()

	ok, err := g.Acquire(ctx, "a", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, g.Release(ctx, "a"))
	require.NoError(t, g.Release(ctx, "never-taken"))

	ok, err = g.Acquire(ctx, "a", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "released key is free again")
}

func TestMemoryGuard_DropsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewMemoryGuard()
	g.now = func() time.Time { return clock }

	for _, k := range []string{"a", "b", "c"} {
		_, err := g.Acquire(ctx, k, time.Second)
		require.NoError(t, err)
	}
	clock = clock.Add(time.Hour)
	_, err := g.Acquire(ctx, "d", time.Second)
	require.NoError(t, err)
	assert.Len(t, g.expires, 1)
}

func TestRedisGuard(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	key := "test:" + uuid.NewString()
	defer rdb.Del(ctx, RedisKey(key))

	g := NewRedisGuard(rdb)
	ok, err := g.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, key))
	ok, err = g.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "acquire after release")
}
