package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/OliwiaLewandowska/som-monitor/internal/logger"
)

// SurveyFunc runs one full survey cycle: dispatch queries, persist results,
// append history rows.
type SurveyFunc func(ctx context.Context) error

// Scheduler runs recurring surveys on a cron expression.
type Scheduler struct {
	cron    *cron.Cron
	survey  SurveyFunc
	running bool
	busy    bool
	mu      sync.Mutex
}

// New creates a new scheduler
func New(survey SurveyFunc) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		survey: survey,
	}
}

// Start registers the cron expression and begins scheduling. Overlapping
// ticks are skipped: a survey that outlasts its interval is not doubled up.
func (s *Scheduler) Start(ctx context.Context, cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	_, err := s.cron.AddFunc(cronExpr, func() {
		s.mu.Lock()
		if s.busy {
			s.mu.Unlock()
			logger.Warning("Previous survey still running, skipping this tick")
			return
		}
		s.busy = true
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.busy = false
			s.mu.Unlock()
		}()

		logger.Info("Starting scheduled survey")
		if err := s.survey(ctx); err != nil {
			logger.Error("Scheduled survey failed: %v", err)
			return
		}
		logger.Info("Scheduled survey complete")
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	logger.Info("Scheduler started with cron expression: %s", cronExpr)
	return nil
}

// Stop stops the scheduler and waits for a running survey to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	// Stop returns a context that is done once in-flight jobs complete; the
	// mutex must not be held here because jobs re-take it on exit.
	<-s.cron.Stop().Done()

	logger.Info("Scheduler stopped")
}
