package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiterWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "1.2.3.4", 2, time.Minute))
	assert.True(t, limiter.Allow(ctx, "1.2.3.4", 2, time.Minute))
	assert.False(t, limiter.Allow(ctx, "1.2.3.4", 2, time.Minute))
	assert.True(t, limiter.Allow(ctx, "5.6.7.8", 2, time.Minute))

	now = now.Add(61 * time.Second)
	assert.True(t, limiter.Allow(ctx, "1.2.3.4", 2, time.Minute))
}

func TestRedisLimiterNilFailsOpen(t *testing.T) {
	limiter := NewRedisLimiter(nil, "rl:")
	assert.Nil(t, limiter)
	assert.True(t, limiter.Allow(context.Background(), "k", 1, time.Second))
}
