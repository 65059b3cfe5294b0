package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"veogallery/internal/domain"
	"veogallery/internal/infra/metrics"
)

// StaleFactor multiplies the retention window to get how long an unfinished
// job may go without an update before it is treated as abandoned.
const StaleFactor = 6

// Sweeper periodically removes terminal jobs older than the retention window
// and unfinished jobs that stopped receiving updates.
type Sweeper struct {
	store      domain.JobStore
	retention  time.Duration
	staleAfter time.Duration
	logger     zerolog.Logger
	now       func() time.Time
	cron      *cron.Cron
}

func NewSweeper(store domain.JobStore, retention time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:      store,
		retention:  retention,
		staleAfter: StaleFactor * retention,
		logger:     logger.With().Str("component", "sweeper").Logger(),
		now:        time.Now,
		cron:       cron.New(),
	}
}

// SweepOnce runs a single retention pass.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now()
	cutoffs := domain.SweepCutoffs{
		Terminal: now.Add(-s.retention),
		Stale:    now.Add(-s.staleAfter),
	}
	n, err := s.store.Sweep(ctx, cutoffs)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep failed")
		return n, err
	}
	metrics.AddJobsSwept(n)
	if n > 0 {
		s.logger.Info().
			Int("removed", n).
			Time("terminal_cutoff", cutoffs.Terminal).
			Time("stale_cutoff", cutoffs.Stale).
			Msg("swept expired jobs")
	}
	return n, nil
}

// Start schedules SweepOnce on the given cron spec (e.g. "@every 5m").
func (s *Sweeper) Start(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		_, _ = s.SweepOnce(runCtx)
	})
	if err != nil {
		return fmt.Errorf("schedule sweep %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info().
		Str("schedule", spec).
		Dur("retention", s.retention).
		Dur("stale_after", s.staleAfter).
		Msg("sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
