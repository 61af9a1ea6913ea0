package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/usecase/membership"
)

// AccrualConfig controls the periodic penalty sweep.
type AccrualConfig struct {
	Interval time.Duration
}

// AccrualSweeper ticks penalty accrual for every member on a schedule, so
// lapsed subscriptions accumulate penalties even while a member is idle.
// Commitment still triggers its own synchronous tick; this sweep only keeps
// the records from going stale between commitments.
type AccrualSweeper struct {
	registry *membership.Registry
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      AccrualConfig
}

func NewAccrualSweeper(registry *membership.Registry, logger *zap.Logger, cfg AccrualConfig) *AccrualSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &AccrualSweeper{
		registry: registry,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("accrual sweep failed", zap.Error(err))
		}
	})

	return s
}

// Start launches the cron scheduler.
func (s *AccrualSweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("accrual sweeper started")
}

// Stop gracefully stops the scheduler.
func (s *AccrualSweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("accrual sweeper stopped")
}

// Sweep runs one accrual pass over all members.
func (s *AccrualSweeper) Sweep(ctx context.Context) error {
	members, err := s.registry.List(ctx)
	if err != nil {
		return err
	}
	for _, member := range members {
		if err := s.registry.Accrue(ctx, member.Handle); err != nil {
			s.logger.Warn("accrual failed for member",
				zap.String("handle", member.Handle),
				zap.Error(err))
		}
	}
	return nil
}
