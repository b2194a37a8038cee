package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"energymon/internal/engine"
	"energymon/internal/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeEvaluateAlerts = "alerts:evaluate"

// Global instances - initialized by the main application before workers start
var eng *engine.Engine

// SetGlobalInstances sets the evaluation engine used by task handlers
func SetGlobalInstances(e *engine.Engine) {
	eng = e
}

// EvaluationTaskPayload identifies the owner whose rules a task evaluates
type EvaluationTaskPayload struct {
	OwnerID string `json:"owner_id"`
}

// EnqueueEvaluation queues one evaluation pass for an owner
func EnqueueEvaluation(ownerID string) error {
	if asynqClient == nil {
		return fmt.Errorf("task queue not started")
	}
	payload, err := json.Marshal(EvaluationTaskPayload{OwnerID: ownerID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeEvaluateAlerts, payload)
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(30*time.Second))
	if err != nil {
		logger.Error("enqueue evaluation failed", zap.String("owner_id", ownerID), zap.Error(err))
		return err
	}
	logger.Debug("evaluation enqueued", zap.String("owner_id", ownerID), zap.String("task_id", info.ID))
	return nil
}

// evaluateAlertsTask runs one owner's evaluation pass
func evaluateAlertsTask(ctx context.Context, t *asynq.Task) error {
	var payload EvaluationTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if eng == nil {
		return fmt.Errorf("engine not initialized")
	}

	n, err := eng.EvaluateAlerts(ctx, payload.OwnerID)
	if err != nil {
		logger.Error("evaluation task failed", zap.String("owner_id", payload.OwnerID), zap.Error(err))
		return err
	}
	logger.Info("evaluation task complete",
		zap.String("owner_id", payload.OwnerID),
		zap.Int("triggered", n))
	return nil
}
