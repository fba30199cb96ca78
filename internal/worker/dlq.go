package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// A job that keeps failing is parked on a dead-letter list instead of
// cycling through the queue forever. The list lives next to its source
// queue (jobs:notifications:dead) and is read back by hand when a fan-out
// outage needs a post-mortem.
const deadLetterSuffix = ":dead"

// deadJob is a parked job plus enough context to replay it manually.
type deadJob struct {
	Queue    string          `json:"queue"`
	Kind     string          `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	ParkedAt time.Time       `json:"parked_at"`
}

// parkJob moves an exhausted job onto its queue's dead-letter list. Best
// effort: if redis itself is the problem the job is only logged, which is
// acceptable because notifications are advisory.
func parkJob(ctx context.Context, rdb *redis.Client, queue string, job Job, cause error) {
	entry := deadJob{
		Queue:    queue,
		Kind:     job.Type,
		Payload:  job.Payload,
		Reason:   cause.Error(),
		Attempts: job.Attempts,
		ParkedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dead-letter: marshal")
		return
	}
	if err := rdb.LPush(ctx, queue+deadLetterSuffix, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dead-letter: push")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("kind", job.Type).
		Int("attempts", job.Attempts).
		Err(cause).
		Msg("job parked on dead-letter list")
}

// DeadLetterCount reports how many jobs are parked for a queue. Exposed for
// operational tooling; the workers never read the list back.
func DeadLetterCount(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, queue+deadLetterSuffix).Result()
}
