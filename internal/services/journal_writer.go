package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/internal/infrastructure/journal"
	"github.com/commonfund/ledgerd/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// WriterConfig controls how frequently the journal is drained.
type WriterConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// JournalWriter buffers audit events the ledger could not write to the
// primary event store and replays them once Postgres is reachable again.
// Event ids are stable uuids, so replaying an already-written event is a
// no-op on the store side.
type JournalWriter struct {
	store   *journal.Store
	monitor ConnectionHealth
	events  repository.EventRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     WriterConfig
}

func NewJournalWriter(
	store *journal.Store,
	monitor ConnectionHealth,
	events repository.EventRepository,
	logger *zap.Logger,
	cfg WriterConfig,
) *JournalWriter {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &JournalWriter{
		store:   store,
		monitor: monitor,
		events:  events,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = w.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := w.Drain(ctx); err != nil {
			w.logger.Error("journal drain failed", zap.Error(err))
		}
	})

	return w
}

// Publish implements usecase.EventSink.
func (w *JournalWriter) Publish(event domain.Event) {
	if w == nil || w.store == nil {
		return
	}
	if err := w.store.Append(journal.Entry{Event: event}); err != nil {
		w.logger.Error("journal append failed",
			zap.String("kind", event.Kind),
			zap.Int64("effort_id", event.EffortID),
			zap.Error(err))
	}
}

// Start launches the cron scheduler.
func (w *JournalWriter) Start() {
	if w == nil || w.cron == nil {
		return
	}
	w.cron.Start()
	w.logger.Info("journal writer started")
}

// Stop gracefully stops the scheduler.
func (w *JournalWriter) Stop(ctx context.Context) {
	if w == nil || w.cron == nil {
		return
	}
	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	w.logger.Info("journal writer stopped")
}

// Drain replays buffered events into the primary store.
func (w *JournalWriter) Drain(ctx context.Context) error {
	if w == nil || w.store == nil {
		return nil
	}
	if w.monitor != nil && !w.monitor.IsOnline() {
		w.logger.Debug("skipping journal drain (offline)")
		return nil
	}

	entries, err := w.store.Batch(w.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := w.events.Append(ctx, entry.Event); err != nil {
			w.logger.Error("failed to replay journal entry",
				zap.String("event_id", entry.Event.ID),
				zap.String("kind", entry.Event.Kind),
				zap.Error(err))

			entry.Retries++
			if entry.Retries >= w.cfg.MaxRetries {
				w.logger.Warn("dropping journal entry (max retries reached)",
					zap.String("event_id", entry.Event.ID))
				_ = w.store.Remove(entry)
				continue
			}

			if err := w.store.Remove(entry); err != nil {
				w.logger.Warn("failed to remove journal entry", zap.Error(err))
			}
			if err := w.store.Requeue(entry); err != nil {
				w.logger.Error("failed to requeue journal entry", zap.Error(err))
			}
			continue
		}

		if err := w.store.Remove(entry); err != nil {
			w.logger.Warn("failed to purge replayed journal entry", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of buffered entries.
func (w *JournalWriter) Size() int {
	if w == nil || w.store == nil {
		return 0
	}
	size, err := w.store.Size()
	if err != nil {
		return 0
	}
	return size
}
