package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerWindow: 3,
		WindowDuration:    time.Minute,
		BurstSize:         0,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be allowed", i)
	}

	ok, err := rl.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "request over the window must be denied")

	// A different key has its own bucket.
	ok, err = rl.Allow(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiterRemaining(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerWindow: 5,
		WindowDuration:    time.Minute,
		BurstSize:         2,
	})

	assert.Equal(t, 7, rl.Remaining("k"))
	_, _ = rl.Allow(context.Background(), "k")
	assert.Equal(t, 6, rl.Remaining("k"))
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerWindow: 1,
		WindowDuration:    time.Millisecond,
		BurstSize:         0,
	})

	_, _ = rl.Allow(context.Background(), "stale")
	time.Sleep(5 * time.Millisecond)
	rl.Cleanup()

	rl.mu.RLock()
	_, exists := rl.buckets["stale"]
	rl.mu.RUnlock()
	assert.False(t, exists)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{name: "remote addr", remoteAddr: "10.0.0.1:4321", want: "10.0.0.1"},
		{name: "forwarded", remoteAddr: "10.0.0.1:4321", xff: "203.0.113.9", want: "203.0.113.9"},
		{name: "forwarded chain", remoteAddr: "10.0.0.1:4321", xff: "203.0.113.9, 10.0.0.2", want: "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}
