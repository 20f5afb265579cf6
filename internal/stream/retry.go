package stream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error that retrying cannot fix
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryHandler retries failed message processing with exponential backoff
// and moves messages that keep failing to a dead letter stream.
type RetryHandler struct {
	client         *redis.Client
	deadLetterKey  string
	maxAttempts    int
	initialDelay   time.Duration
	maxDelay       time.Duration
	multiplier     float64
	jitterFraction float64
}

func NewRetryHandler(client *redis.Client, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:         client,
		deadLetterKey:  deadLetterKey,
		maxAttempts:    3,
		initialDelay:   200 * time.Millisecond,
		maxDelay:       10 * time.Second,
		multiplier:     2.0,
		jitterFraction: 0.1,
	}
}

// RetryWithBackoff runs fn until it succeeds, returns a permanent error or
// runs out of attempts. Failed messages are sent to the dead letter stream.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= h.maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				log.Info().Str("message_id", messageID).Int("attempt", attempt).Msg("Succeeded after retry")
			}
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			log.Warn().Err(lastErr).Str("message_id", messageID).Msg("Permanent failure, not retrying")
			break
		}

		if attempt == h.maxAttempts {
			break
		}

		delay := h.computeDelay(attempt)
		log.Warn().
			Err(lastErr).
			Str("message_id", messageID).
			Int("attempt", attempt).
			Int("max_attempts", h.maxAttempts).
			Dur("next_delay", delay).
			Msg("Processing failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted during backoff: %w", ctx.Err())
		}
	}

	if err := h.sendToDeadLetter(ctx, messageID, fields, lastErr); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to send message to dead letter stream")
	}

	return fmt.Errorf("processing failed for message %s: %w", messageID, lastErr)
}

func (h *RetryHandler) computeDelay(attempt int) time.Duration {
	backoff := float64(h.initialDelay) * math.Pow(h.multiplier, float64(attempt-1))
	backoff += backoff * h.jitterFraction * (2*rand.Float64() - 1)
	if backoff > float64(h.maxDelay) {
		backoff = float64(h.maxDelay)
	}
	if backoff < 0 {
		backoff = float64(h.initialDelay)
	}
	return time.Duration(backoff)
}

func (h *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error {
	if h.client == nil || h.deadLetterKey == "" {
		return nil
	}

	values := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		values[k] = v
	}
	values["original_id"] = messageID
	values["error"] = cause.Error()
	values["failed_at"] = time.Now().UTC().Format(time.RFC3339)

	err := h.client.XAdd(ctx, &redis.XAddArgs{
		Stream: h.deadLetterKey,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add to dead letter stream: %w", err)
	}

	log.Warn().
		Str("message_id", messageID).
		Str("dead_letter_key", h.deadLetterKey).
		Msg("Message moved to dead letter stream")
	return nil
}
