// Package ratelimit provides fixed-window request limiters keyed by caller.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether another request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

const redisTimeout = 250 * time.Millisecond

// RedisLimiter shares counters across instances through Redis. Redis errors
// fail open.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	prefix string
}

// NewRedisLimiter returns nil when client is nil.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{client: client, script: redis.NewScript(fixedWindowScript), prefix: prefix}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, ttl, limit).Int64()
	if err != nil {
		return true
	}
	return allowed == 1
}

// MemoryLimiter keeps counters in process. Used when Redis is not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*bucket
}

type bucket struct {
	count     int
	windowEnd time.Time
}

// NewMemoryLimiter constructs an in-process limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{now: time.Now, buckets: make(map[string]*bucket)}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.windowEnd) {
		l.buckets[key] = &bucket{count: 1, windowEnd: now.Add(window)}
		return true
	}
	if b.count >= limit {
		return false
	}
	b.count++
	return true
}
