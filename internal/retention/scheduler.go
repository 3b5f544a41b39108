package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/robfig/cron/v3"
)

// Scheduler triggers sweeps on a cron schedule, e.g. "0 * * * *" for hourly.
type Scheduler struct {
	mu       sync.Mutex
	schedule string
	run      func(context.Context)
	cron     *cron.Cron
	log      logging.Logger
	running  bool
}

func NewScheduler(schedule string, run func(context.Context), log logging.Logger) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		run:      run,
		cron:     cron.New(),
		log:      logging.With(log, "scheduler"),
	}
}

// Start registers the job and starts the cron loop. An empty schedule
// disables periodic sweeps and is not an error.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.log.Info("sweep schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.log.Info("sweep scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running sweep to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("sweep scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
