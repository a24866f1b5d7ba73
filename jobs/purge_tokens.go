package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// TokenPurger deletes issued-token rows expired before the cutoff.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}

// TokenPurgeJob sweeps expired refresh token rows on a schedule.
type TokenPurgeJob struct {
	purger  TokenPurger
	logger  *slog.Logger
	metrics *Metrics
}

// NewTokenPurgeJob constructs the job handler.
func NewTokenPurgeJob(purger TokenPurger, logger *slog.Logger, metrics *Metrics) *TokenPurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenPurgeJob{purger: purger, logger: logger, metrics: metrics}
}

// Handle processes TaskTypeTokenPurge tasks.
func (j *TokenPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload TokenPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionHours < 0 {
		payload.RetentionHours = 0
	}

	tracker := j.metrics.Track("token_purge")
	cutoff := time.Now().UTC().Add(-time.Duration(payload.RetentionHours) * time.Hour)
	deleted, err := j.purger.PurgeExpiredTokens(ctx, cutoff)
	if err != nil {
		j.logger.Error("purge expired tokens", slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger.Info("purged expired tokens",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff))
	return tracker.End(nil)
}
