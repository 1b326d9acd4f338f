package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRateLimiter(t *testing.T) {
	rl := NewMemoryRateLimiter(3, time.Hour)
	defer rl.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(ctx, "ip:1").allowed, "request %d", i)
	}
	denied := rl.Allow(ctx, "ip:1")
	assert.False(t, denied.allowed)
	assert.Positive(t, denied.retryAfter)

	// keys are independent
	assert.True(t, rl.Allow(ctx, "ip:2").allowed)
}

func TestMemoryRateLimiterDisabled(t *testing.T) {
	rl := NewMemoryRateLimiter(0, time.Second)
	defer rl.Close()

	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow(context.Background(), "k").allowed)
	}
}

func TestMemoryRateLimiterCleanup(t *testing.T) {
	rl := NewMemoryRateLimiter(1, time.Hour).(*memoryRateLimiter)
	defer rl.Close()

	rl.Allow(context.Background(), "stale")
	rl.cleanup(time.Now().Add(time.Second))

	rl.mu.Lock()
	assert.Empty(t, rl.entries)
	rl.mu.Unlock()

	assert.True(t, rl.Allow(context.Background(), "stale").allowed)
}

func TestMemoryRateLimiterCloseIsIdempotent(t *testing.T) {
	rl := NewMemoryRateLimiter(1, time.Second)
	assert.NoError(t, rl.Close())
	assert.NoError(t, rl.Close())
}
