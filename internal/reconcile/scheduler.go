package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler triggers full reconciliation runs on a cron schedule.
type Scheduler struct {
	service  *Service
	schedule string
	cron     *cron.Cron
	logger   zerolog.Logger
	mu       sync.Mutex
	running  bool
}

// NewScheduler creates a scheduler that calls ReconcileAll on the given
// cron expression (standard five-field syntax).
func NewScheduler(service *Service, schedule string, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With().Str("component", "reconcile_scheduler").Logger(),
	}
}

// Start registers the cron entry and begins firing runs. The context is
// carried into every triggered run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("register reconcile schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().Str("schedule", s.schedule).Msg("reconcile scheduler started")
	return nil
}

// Stop stops the scheduler gracefully. The returned context is done once
// any in-flight run triggered by the scheduler has finished.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	s.running = false
	s.logger.Info().Msg("stopping reconcile scheduler")
	return s.cron.Stop()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.logger.Info().Msg("scheduled reconciliation starting")

	results, err := s.service.ReconcileAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled reconciliation failed")
		return
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	s.logger.Info().
		Int("vendors", len(results)).
		Int("failed", failed).
		Msg("scheduled reconciliation finished")
}
