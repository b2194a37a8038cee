package scheduler

import (
	"context"

	"energymon/internal/db"
	"energymon/internal/logger"
	"energymon/internal/taskqueue"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives periodic alert evaluation. On each tick it lists the
// owners that have enabled rules and enqueues one evaluation task per
// owner, so a slow tenant never delays the others.
type Scheduler struct {
	cron *cron.Cron
	db   *db.DB
}

// NewScheduler creates a scheduler over the given store
func NewScheduler(dbConn *db.DB) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		db:   dbConn,
	}
}

// Start registers the evaluation job with the given cron spec and starts
// the scheduler
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.enqueueAll); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("scheduler started", zap.String("spec", spec))
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) enqueueAll() {
	owners, err := s.db.ListAlertOwners(context.Background())
	if err != nil {
		logger.Error("list alert owners failed", zap.Error(err))
		return
	}
	for _, ownerID := range owners {
		if err := taskqueue.EnqueueEvaluation(ownerID); err != nil {
			logger.Error("enqueue owner pass failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}
	logger.Debug("evaluation tick", zap.Int("owners", len(owners)))
}
