package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vadim/infra-metric/internal/domain/sync/entity"
)

// Trigger starts a sync on behalf of the scheduler
type Trigger interface {
	Trigger(ctx context.Context, source entity.TriggerSource) (*entity.SyncResult, error)
}

// Scheduler refreshes account data on a fixed interval
type Scheduler struct {
	trigger      Trigger
	interval     time.Duration
	initialDelay time.Duration
	stopTimeout  time.Duration
	logger       *slog.Logger
	stopCh       chan struct{}
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	jobs         sync.WaitGroup
	busy         atomic.Bool
	running      bool
	mu           sync.Mutex
}

// Config holds configuration for the sync scheduler
type Config struct {
	Interval     time.Duration
	InitialDelay time.Duration
	// StopTimeout bounds how long Stop waits for a scheduled sync in flight
	StopTimeout time.Duration
}

// New creates a new sync scheduler
func New(trigger Trigger, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = 15 * time.Second
	}
	if cfg.StopTimeout == 0 {
		cfg.StopTimeout = 5 * time.Second
	}

	return &Scheduler{
		trigger:      trigger,
		interval:     cfg.Interval,
		initialDelay: cfg.InitialDelay,
		stopTimeout:  cfg.StopTimeout,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("sync scheduler started", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the scheduler and waits for the loop to exit. A scheduled sync
// in flight gets up to StopTimeout to finish; after that Stop returns and the
// remote job is left to the orchestrator.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	close(s.stopCh)
	s.wg.Wait()

	done := make(chan struct{})
	go func() {
		s.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sync scheduler stopped")
	case <-time.After(s.stopTimeout):
		s.logger.Warn("sync scheduler stopped with a scheduled sync still running", "waited", s.stopTimeout)
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// let the app finish booting before the first sync
	select {
	case <-time.After(s.initialDelay):
		s.dispatch(ctx)
	case <-s.stopCh:
		return
	case <-ctx.Done():
		return
	}

	for {
		select {
		case <-ticker.C:
			s.dispatch(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// dispatch runs a sync off the loop so Stop is never held by the remote job.
// A tick that lands while the previous scheduled sync runs is skipped.
func (s *Scheduler) dispatch(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Debug("skipping scheduled sync, previous one still running")
		return
	}

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		defer s.busy.Store(false)
		s.process(ctx)
	}()
}

func (s *Scheduler) process(ctx context.Context) {
	s.logger.Debug("running scheduled sync")

	result, err := s.trigger.Trigger(ctx, entity.TriggerScheduled)
	switch {
	case errors.Is(err, entity.ErrSyncInProgress):
		s.logger.Debug("skipping scheduled sync, another sync is running")
	case err != nil:
		s.logger.Error("scheduled sync failed", "error", err)
	default:
		s.logger.Info("scheduled sync finished",
			"accounts", result.TotalAccountsSynced,
			"partial", result.IsPartial(),
		)
	}
}
