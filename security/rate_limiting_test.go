package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowWithinLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	limiter := NewRateLimiter(db, time.Minute, 30)

	// First request of a new window starts the expiry clock.
	mock.ExpectIncr("ratelimit:+8562055511111").SetVal(1)
	mock.ExpectExpire("ratelimit:+8562055511111", time.Minute).SetVal(true)

	assert.True(t, limiter.Allow(context.Background(), "+8562055511111"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	limiter := NewRateLimiter(db, time.Minute, 30)

	mock.ExpectIncr("ratelimit:+8562055511111").SetVal(31)

	assert.False(t, limiter.Allow(context.Background(), "+8562055511111"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	limiter := NewRateLimiter(db, time.Minute, 30)

	mock.ExpectIncr("ratelimit:+8562055511111").SetErr(errors.New("connection refused"))

	assert.True(t, limiter.Allow(context.Background(), "+8562055511111"))
}

func TestRateLimiter_NilRedisAllows(t *testing.T) {
	limiter := NewRateLimiter(nil, time.Minute, 30)
	assert.True(t, limiter.Allow(context.Background(), "anyone"))
}

func TestSuspiciousUserAgent(t *testing.T) {
	assert.True(t, SuspiciousUserAgent("Googlebot/2.1"))
	assert.True(t, SuspiciousUserAgent("my-web-CRAWLER"))
	assert.True(t, SuspiciousUserAgent("scrapy spider"))
	assert.False(t, SuspiciousUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)"))
	assert.False(t, SuspiciousUserAgent(""))
}
