package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// TaskAssetRevaluation triggers the nightly batch revaluation of
// active assets.
const TaskAssetRevaluation = "assets:revaluation"

// AssetRevaluationPayload carries scheduling metadata.
type AssetRevaluationPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// Revaluer recomputes persisted current values for active assets.
type Revaluer interface {
	RevalueAll(ctx context.Context) (int, error)
}

// Invalidator drops derived caches after a batch write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// NewAssetRevaluationTask constructs the revaluation task.
func NewAssetRevaluationTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(AssetRevaluationPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssetRevaluation, body, asynq.Queue(QueueDefault)), nil
}

// NewAssetRevaluationHandler binds the task to the asset service.
func NewAssetRevaluationHandler(revaluer Revaluer, invalidator Invalidator, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AssetRevaluationPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		count, err := revaluer.RevalueAll(ctx)
		if err != nil {
			logger.Error("asset revaluation failed", "error", err)
			return err
		}
		if invalidator != nil {
			if err := invalidator.Invalidate(ctx); err != nil {
				logger.Warn("report cache invalidation failed", "error", err)
			}
		}
		logger.Info("asset revaluation completed",
			"revalued", count,
			"scheduled_for", payload.ScheduledFor.Format(time.RFC3339),
		)
		return nil
	}
}
