package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(12)
	require.NoError(t, err)
	assert.Len(t, code, 12)

	for _, r := range code {
		assert.Contains(t, codeCharset, string(r))
	}

	// Collisions on back-to-back calls should be effectively impossible.
	other, err := GenerateCode(12)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestGenerateCodeZeroLength(t *testing.T) {
	code, err := GenerateCode(0)
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestGenerateCodeRejectionBound(t *testing.T) {
	// 252 is the largest multiple of 36 below 256; accepting only bytes
	// under it keeps every charset character equally likely.
	assert.Equal(t, 252, maxUnbiasedByte)
	assert.Zero(t, maxUnbiasedByte%len(codeCharset))

	// Long outputs exercise the refill path for rejected bytes.
	code, err := GenerateCode(4096)
	require.NoError(t, err)
	assert.Len(t, code, 4096)
	assert.Equal(t, "", strings.Trim(code, codeCharset))
}

func TestCircuitBreaker_New(t *testing.T) {
	cb := NewCircuitBreaker("test")

	assert.Equal(t, "test", cb.name)
	assert.Equal(t, uint32(100), cb.maxRequests)
	assert.Equal(t, 0.6, cb.failureRatio)
	assert.Equal(t, StateClosed, cb.CurrentState())
}

func TestCircuitBreaker_DoSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test")

	err := cb.Do(func() error { return nil })

	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.CurrentState())
	assert.Equal(t, uint32(1), cb.counts.Requests)
	assert.Equal(t, uint32(1), cb.counts.TotalSuccesses)
}

func TestCircuitBreaker_DoFailure(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("publish failed")

	err := cb.Do(func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateClosed, cb.CurrentState())
	assert.Equal(t, uint32(1), cb.counts.TotalFailures)
}

func TestCircuitBreaker_TripsOpen(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("publish failed")

	// Enough failing traffic to cross the request floor and failure ratio.
	for i := 0; i < 100; i++ {
		_ = cb.Do(func() error { return boom })
	}

	assert.Equal(t, StateOpen, cb.CurrentState())

	// While open, calls are refused without running the function.
	ran := false
	err := cb.Do(func() error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, ran)
}
