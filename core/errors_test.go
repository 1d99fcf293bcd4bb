package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonErrorUnwrapsToWrappedErr(t *testing.T) {
	inner := fmt.Errorf("dial tcp: timeout")
	err := New("backend.Invoke", KindTimeout, "openai", inner)

	require.ErrorIs(t, err, inner)
	assert.Equal(t, "backend.Invoke [openai]: dial tcp: timeout", err.Error())
}

func TestReasonErrorUnwrapsToSentinelWhenErrNil(t *testing.T) {
	err := &ReasonError{Op: "scheduler.Run", Kind: KindUnresolvable, ID: "task_a"}
	assert.True(t, errors.Is(err, ErrUnresolvable))
}

func TestIsRetryableClassifiesByKindNotBySentinelIdentity(t *testing.T) {
	// Even though Err wraps a plain, unrelated error, classification must
	// still follow the ReasonError's Kind field.
	timeoutErr := New("backend.Invoke", KindTimeout, "grok", fmt.Errorf("context deadline exceeded"))
	rateLimitErr := New("backend.Invoke", KindRateLimited, "anthropic", fmt.Errorf("429"))
	validationErr := New("Config.Validate", KindValidation, "", fmt.Errorf("bad value"))

	assert.True(t, IsRetryable(timeoutErr))
	assert.True(t, IsRetryable(rateLimitErr))
	assert.False(t, IsRetryable(validationErr))

	assert.True(t, IsTimeout(timeoutErr))
	assert.False(t, IsTimeout(rateLimitErr))

	assert.True(t, IsValidation(validationErr))
	assert.False(t, IsValidation(timeoutErr))
}

func TestIsUnresolvable(t *testing.T) {
	err := New("scheduler.Run", KindUnresolvable, "task_b", fmt.Errorf("no progress"))
	assert.True(t, IsUnresolvable(err))
	assert.False(t, IsUnresolvable(New("scheduler.Run", KindBackend, "task_b", fmt.Errorf("x"))))
}

func TestPlainSentinelStillClassifies(t *testing.T) {
	assert.True(t, IsRetryable(ErrTimeout))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrRateLimited)))
	assert.False(t, IsRetryable(ErrValidation))
}
