// Package scheduler drives unattended nightly updates: each tick runs
// the same run-to-completion incremental batch a manual invocation would.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps the cron runner for the periodic update task.
type Scheduler struct {
	Cron *cron.Cron
}

// NewScheduler creates a Scheduler with seconds-granularity cron specs.
func NewScheduler() *Scheduler {
	return &Scheduler{Cron: cron.New(cron.WithSeconds())}
}

// RegisterUpdate registers the incremental update task. Overlapping runs
// are skipped: the persisted result set is a single-writer resource.
func (s *Scheduler) RegisterUpdate(spec string, task func()) error {
	running := make(chan struct{}, 1)
	if _, err := s.Cron.AddFunc(spec, func() {
		select {
		case running <- struct{}{}:
			defer func() { <-running }()
			task()
		default:
			log.Println("[WARN] previous update still running, skipping this tick")
		}
	}); err != nil {
		return fmt.Errorf("register update task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
