package plagiarism

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/codesim/internal/infra/redis"
	"github.com/RishiKendai/codesim/internal/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	statusKeyPrefix = "codesim_report_status:"
	statusTTL       = 12 * time.Hour
)

var validSteps = map[models.Step]bool{
	models.StepIdle:         true,
	models.StepInitiated:    true,
	models.StepStarted:      true,
	models.StepFiltering:    true,
	models.StepDeepAnalysis: true,
	models.StepCompleted:    true,
	models.StepFailed:       true,
}

// claimScript sets KEYS[1] to ARGV[4] only when the key is missing or holds
// one of the claimable steps ARGV[1..3]. Returns 1 when claimed.
var claimScript = goredis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current and current ~= ARGV[1] and current ~= ARGV[2] and current ~= ARGV[3] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[4], 'PX', ARGV[5])
return 1
`)

// StatusUpdater records the progress of a drive computation
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, driveID string, step models.Step) error
}

// RedisStatus keeps the current step of each drive in Redis
type RedisStatus struct {
	client *redis.Client
}

func NewRedisStatus(client *redis.Client) *RedisStatus {
	return &RedisStatus{client: client}
}

func (s *RedisStatus) UpdateStatus(ctx context.Context, driveID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKeyPrefix + driveID

	err := s.client.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("driveID", driveID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("driveID", driveID).
		Msg("Status updated in Redis")

	return nil
}

// GetStatus returns the current step of a drive, StepIdle when none is recorded
func (s *RedisStatus) GetStatus(ctx context.Context, driveID string) (models.Step, error) {
	value, err := s.client.Get(ctx, statusKeyPrefix+driveID).Result()
	if redis.IsNilError(err) {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(value), nil
}

// TryStart atomically moves an idle, completed or failed drive to
// StepInitiated. It returns false when another computation holds the drive.
func (s *RedisStatus) TryStart(ctx context.Context, driveID string) (bool, error) {
	rkey := statusKeyPrefix + driveID

	claimed, err := claimScript.Run(ctx, s.client, []string{rkey},
		string(models.StepIdle),
		string(models.StepCompleted),
		string(models.StepFailed),
		string(models.StepInitiated),
		statusTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to claim drive in Redis: %w", err)
	}

	log.Trace().
		Str("driveID", driveID).
		Bool("claimed", claimed == 1).
		Msg("Drive claim attempted")

	return claimed == 1, nil
}
