package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter in Redis, keyed per caller
// identity. A Redis outage fails open: admission is load shedding, not a
// security boundary.
type RateLimiter struct {
	redis  *redis.Client
	window time.Duration
	limit  int
}

func NewRateLimiter(redisClient *redis.Client, window time.Duration, limit int) *RateLimiter {
	return &RateLimiter{redis: redisClient, window: window, limit: limit}
}

// Allow reports whether the identity may make another request in the
// current window.
func (r *RateLimiter) Allow(ctx context.Context, identity string) bool {
	if r.redis == nil || r.limit <= 0 {
		return true
	}

	key := fmt.Sprintf("ratelimit:%s", identity)
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.redis.Expire(ctx, key, r.window)
	}
	return count <= int64(r.limit)
}

// SuspiciousUserAgent flags obvious automated clients.
func SuspiciousUserAgent(ua string) bool {
	lowered := strings.ToLower(ua)
	for _, pattern := range []string{"bot", "crawler", "spider", "scraper"} {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}
