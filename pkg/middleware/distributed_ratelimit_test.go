package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLimiter(t *testing.T, cfg *RateLimitConfig) (*DistributedRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewDistributedRateLimiter(client, cfg, "test"), mr
}

func TestDistributedRateLimiterAllow(t *testing.T) {
	rl, _ := setupRedisLimiter(t, &RateLimitConfig{
		RequestsPerWindow: 3,
		WindowDuration:    time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be allowed", i)
	}

	ok, err := rl.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	remaining, err := rl.Remaining(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestDistributedRateLimiterWindowExpiry(t *testing.T) {
	rl, mr := setupRedisLimiter(t, &RateLimitConfig{
		RequestsPerWindow: 1,
		WindowDuration:    time.Second,
	})
	ctx := context.Background()

	ok, err := rl.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Advance past the window; the counter expires and the quota resets.
	mr.FastForward(2 * time.Second)

	ok, err = rl.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDistributedRateLimiterFailsOpen(t *testing.T) {
	rl, mr := setupRedisLimiter(t, nil)
	mr.Close()

	ok, err := rl.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, ok, "redis outage must not lock users out of login")
}

func TestDistributedRateLimiterReset(t *testing.T) {
	rl, _ := setupRedisLimiter(t, &RateLimitConfig{
		RequestsPerWindow: 1,
		WindowDuration:    time.Minute,
	})
	ctx := context.Background()

	_, err := rl.Allow(ctx, "k")
	require.NoError(t, err)
	ok, err := rl.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, rl.Reset(ctx, "k"))
	ok, err = rl.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
