package taskqueue

import (
	"energymon/internal/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var (
	asynqClient *asynq.Client
	asynqMux    = asynq.NewServeMux()
	asynqSrv    *asynq.Server
)

// StartWorkers starts the asynq client and worker pool. Blocks until the
// server shuts down, so callers run it in a goroutine.
func StartWorkers(redisAddr string) {
	logger.Info("starting task workers", zap.String("redis_addr", redisAddr))
	asynqClient = asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	asynqMux.HandleFunc(TypeEvaluateAlerts, evaluateAlertsTask)
	asynqSrv = asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 10})
	if err := asynqSrv.Run(asynqMux); err != nil {
		logger.Fatal("task workers failed", zap.Error(err))
	}
}

// StopWorkers stops the worker pool and closes the client
func StopWorkers() {
	if asynqSrv != nil {
		asynqSrv.Stop()
	}
	if asynqClient != nil {
		asynqClient.Close()
	}
	logger.Info("task workers stopped")
}
