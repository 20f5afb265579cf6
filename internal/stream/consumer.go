package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/codesim/internal/metrics"
	"github.com/RishiKendai/codesim/internal/models"
	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	readCount      = 10
	readBlock      = time.Second
	claimMinIdle   = time.Minute
	pendingBatch   = 100
	errorPause     = time.Second
	defaultReclaim = 30 * time.Second
	defaultTrim    = time.Hour
)

// SubmissionProcessor fingerprints and stores an ingested submission
type SubmissionProcessor interface {
	ProcessSubmission(ctx context.Context, submission *models.Submission) error
}

// Consumer reads submissions from a Redis stream consumer group and hands
// them to the preprocessing service.
type Consumer struct {
	client        *redis.Client
	streamKey     string
	group         string
	name          string
	processor     SubmissionProcessor
	retryHandler  *RetryHandler
	retention     time.Duration
	reclaimEvery  time.Duration
	trimEvery     time.Duration
	lastReclaimed time.Time
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	group string,
	name string,
	processor SubmissionProcessor,
	retryHandler *RetryHandler,
	retention time.Duration,
) *Consumer {
	return &Consumer{
		client:        client,
		streamKey:     streamKey,
		group:         group,
		name:          name,
		processor:     processor,
		retryHandler:  retryHandler,
		retention:     retention,
		reclaimEvery:  defaultReclaim,
		trimEvery:     defaultTrim,
		lastReclaimed: time.Now(),
	}
}

// Start blocks until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Str("group", c.group).Msg("Could not create consumer group")
	}

	// entries left pending by a crashed instance
	if err := c.reclaimPending(ctx); err != nil {
		log.Warn().Err(err).Msg("Startup reclaim of pending entries failed")
	}
	c.lastReclaimed = time.Now()

	if c.retention > 0 {
		go c.trimLoop(ctx)
	}

	log.Info().
		Str("stream", c.streamKey).
		Str("group", c.group).
		Str("consumer", c.name).
		Msg("Submission consumer started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("Stream poll failed")
			select {
			case <-time.After(errorPause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.group, "$").Err()
	if err != nil && strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	log.Info().Str("group", c.group).Str("stream", c.streamKey).Msg("Consumer group created")
	return nil
}

func (c *Consumer) poll(ctx context.Context) error {
	if time.Since(c.lastReclaimed) > c.reclaimEvery {
		if err := c.reclaimPending(ctx); err != nil {
			log.Warn().Err(err).Msg("Reclaim of pending entries failed")
		}
		c.lastReclaimed = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.streamKey, ">"},
		Count:    readCount,
		Block:    readBlock,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, s := range streams {
		if s.Stream != c.streamKey {
			continue
		}
		for i := range s.Messages {
			c.handle(ctx, &s.Messages[i])
		}
	}
	return nil
}

// reclaimPending claims entries that sat unacknowledged longer than
// claimMinIdle and processes them under this consumer's name.
func (c *Consumer) reclaimPending(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.group,
		Start:  "-",
		End:    "+",
		Count:  pendingBatch,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list pending entries: %w", err)
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Idle >= claimMinIdle {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.group,
		Consumer: c.name,
		MinIdle:  claimMinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to claim pending entries: %w", err)
	}

	log.Info().Int("claimed", len(claimed)).Msg("Reprocessing claimed entries")
	for i := range claimed {
		c.handle(ctx, &claimed[i])
	}
	return nil
}

// handle parses and processes one entry. Entries are acknowledged once they
// are stored, unparseable, or moved to the dead letter stream.
func (c *Consumer) handle(ctx context.Context, msg *redis.XMessage) {
	streamMsg := &StreamMessage{ID: msg.ID, Fields: stringFields(msg.Values)}

	submission, err := ParseSubmission(streamMsg)
	if err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Dropping malformed submission")
		metrics.SubmissionsIngested.WithLabelValues("malformed").Inc()
		c.ack(ctx, msg.ID)
		return
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		err := c.processor.ProcessSubmission(ctx, submission)
		if plagiarism.IsLimitError(err) {
			return Permanent(err)
		}
		return err
	}, msg.ID, msg.Values)

	switch {
	case err == nil:
		metrics.SubmissionsIngested.WithLabelValues("stored").Inc()
	case ctx.Err() != nil:
		// left pending for the next reclaim
		return
	case plagiarism.IsLimitError(err):
		metrics.SubmissionsIngested.WithLabelValues("rejected").Inc()
		metrics.RejectedInputs.WithLabelValues(plagiarism.RejectReason(err)).Inc()
	default:
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Submission failed after retries")
		metrics.SubmissionsIngested.WithLabelValues("failed").Inc()
	}

	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.streamKey, c.group, id).Err(); err != nil {
		log.Error().Err(err).Str("message_id", id).Msg("Failed to acknowledge entry")
		return
	}
	log.Trace().Str("message_id", id).Msg("Entry acknowledged")
}

// trimLoop drops entries older than the retention window
func (c *Consumer) trimLoop(ctx context.Context) {
	ticker := time.NewTicker(c.trimEvery)
	defer ticker.Stop()

	for {
		if err := c.trim(ctx); err != nil {
			log.Error().Err(err).Msg("Stream trim failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Consumer) trim(ctx context.Context) error {
	cutoff := time.Now().Add(-c.retention)
	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, fmt.Sprintf("%d-0", cutoff.UnixMilli())).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}
	if trimmed > 0 {
		log.Debug().Int64("trimmed", trimmed).Time("cutoff", cutoff).Msg("Trimmed stream")
	}
	return nil
}

func stringFields(values map[string]interface{}) map[string]string {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		switch value := v.(type) {
		case string:
			fields[k] = value
		case []byte:
			fields[k] = string(value)
		default:
			fields[k] = fmt.Sprint(value)
		}
	}
	return fields
}
