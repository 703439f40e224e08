package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler periodically runs the task scans (start notifications and
// auto-completion). Scans only filter on persisted state, so they are safe
// to run concurrently with user-driven mutations.
type Scheduler struct {
	tasks    *TaskService
	interval time.Duration
	logger   *zap.Logger
}

func NewScheduler(tasks *TaskService, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, executing both scans once at startup
// and then on every tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scheduler) scan(ctx context.Context) {
	now := time.Now()
	if err := s.tasks.CheckAndNotifyTaskStarts(ctx, now); err != nil {
		s.logger.Error("task start scan failed", zap.Error(err))
	}
	if err := s.tasks.AutoCompleteExpiredTasks(ctx, now); err != nil {
		s.logger.Error("expired task scan failed", zap.Error(err))
	}
}
