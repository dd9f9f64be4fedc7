package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) RetryConfig {
	config := DefaultRetryConfig()
	config.MaxAttempts = attempts
	config.InitialDelay = time.Millisecond
	config.MaxDelay = 5 * time.Millisecond
	return config
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	assert.Equal(t, 3, config.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, config.InitialDelay)
	assert.Equal(t, 2*time.Second, config.MaxDelay)
	assert.Equal(t, 2.0, config.BackoffFactor)
	assert.Nil(t, config.RetryableErrors)
}

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("temporary error")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	testError := errors.New("persistent error")

	err := RetryWithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return testError
	})

	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.ErrorIs(t, err, testError)
}

func TestRetryWithBackoff_NonRetryableError(t *testing.T) {
	config := fastConfig(3)
	nonRetryable := errors.New("non-retryable")
	config.RetryableErrors = func(err error) bool {
		return !errors.Is(err, nonRetryable)
	}

	attempts := 0
	err := RetryWithBackoff(context.Background(), config, func() error {
		attempts++
		return nonRetryable
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, nonRetryable, err)
}

func TestRetryWithBackoff_SingleAttemptReturnsErrorUnwrapped(t *testing.T) {
	for _, attempts := range []int{0, 1} {
		calls := 0
		testError := errors.New("boom")

		err := RetryWithBackoff(context.Background(), fastConfig(attempts), func() error {
			calls++
			return testError
		})

		assert.Equal(t, 1, calls)
		assert.Equal(t, testError, err)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	config := fastConfig(5)
	config.InitialDelay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	attempts := 0
	err := RetryWithBackoff(ctx, config, func() error {
		attempts++
		return errors.New("always fails")
	})

	assert.Contains(t, err.Error(), "retry cancelled")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, attempts)
}

func TestNextDelay(t *testing.T) {
	config := RetryConfig{BackoffFactor: 2.0, MaxDelay: 60 * time.Millisecond}

	assert.Equal(t, 20*time.Millisecond, nextDelay(config, 10*time.Millisecond))
	assert.Equal(t, 60*time.Millisecond, nextDelay(config, 40*time.Millisecond))

	config.BackoffFactor = 0
	assert.Equal(t, 10*time.Millisecond, nextDelay(config, 10*time.Millisecond))
}

func TestWithJitter(t *testing.T) {
	base := 100 * time.Millisecond

	assert.Equal(t, base, withJitter(base, 0))
	for i := 0; i < 50; i++ {
		d := withJitter(base, 0.5)
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, 150*time.Millisecond)
	}
}
