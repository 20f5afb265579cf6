package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryHandler() *RetryHandler {
	h := NewRetryHandler(nil, "")
	h.initialDelay = time.Millisecond
	h.maxDelay = 5 * time.Millisecond
	return h
}

func TestRetryWithBackoffSucceedsAfterFailures(t *testing.T) {
	h := fastRetryHandler()
	calls := 0

	err := h.RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, "1-0", nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffGivesUp(t *testing.T) {
	h := fastRetryHandler()
	calls := 0
	cause := errors.New("mongo down")

	err := h.RetryWithBackoff(context.Background(), func() error {
		calls++
		return cause
	}, "1-0", map[string]interface{}{"attemptID": "a"})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, h.maxAttempts, calls)
}

func TestRetryWithBackoffStopsOnPermanent(t *testing.T) {
	h := fastRetryHandler()
	calls := 0

	err := h.RetryWithBackoff(context.Background(), func() error {
		calls++
		return Permanent(plagiarism.ErrInputTooLarge)
	}, "1-0", nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, plagiarism.IsLimitError(err))
}

func TestRetryWithBackoffHonoursContext(t *testing.T) {
	h := NewRetryHandler(nil, "")
	h.initialDelay = time.Hour
	h.maxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.RetryWithBackoff(ctx, func() error {
		return errors.New("transient")
	}, "1-0", nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeDelayIsBounded(t *testing.T) {
	h := NewRetryHandler(nil, "")
	for attempt := 1; attempt <= 20; attempt++ {
		d := h.computeDelay(attempt)
		assert.Positive(t, d)
		assert.LessOrEqual(t, d, h.maxDelay)
	}
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
