package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vadim/infra-metric/internal/domain/account/store"
	"github.com/vadim/infra-metric/internal/domain/sync/entity"
)

// BatchSyncer runs the external batched synchronization job
type BatchSyncer interface {
	RunSync(ctx context.Context) (*entity.SyncResult, error)
}

// SnapshotStore is the account record store the orchestrator refreshes
type SnapshotStore interface {
	Load(ctx context.Context, src store.RecordSource, syncedAt time.Time) (store.Snapshot, error)
	Current() store.Snapshot
}

// StatusRepository reads the status rows written by the sync job and records our own attempts
type StatusRepository interface {
	LatestStatus(ctx context.Context, jobName string) (*entity.StatusRow, error)
	LatestCompleted(ctx context.Context, jobName string) (*entity.StatusRow, error)
	SaveAttempt(ctx context.Context, status entity.SyncJobStatus) error
}

// Recorder receives sync metrics
type Recorder interface {
	ObserveSync(status entity.JobStatus, source entity.TriggerSource, duration time.Duration)
	ObserveSnapshot(snap store.Snapshot)
}

// Config holds orchestrator settings
type Config struct {
	JobName  string
	Cooldown time.Duration
	Timeout  time.Duration
	Now      func() time.Time
}

// Orchestrator triggers the external sync job, tracks its lifecycle and
// replaces the account snapshot when it completes
type Orchestrator struct {
	syncer   BatchSyncer
	records  store.RecordSource
	snaps    SnapshotStore
	statuses StatusRepository
	recorder Recorder
	logger   *slog.Logger

	jobName  string
	cooldown time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu            sync.Mutex
	inFlight      bool
	lastManual    time.Time
	current       entity.SyncJobStatus
	snapshotSync  *entity.SyncJobStatus // attempt that produced the current snapshot
	subscribers   map[int]chan entity.SyncJobStatus
	nextSubscript int
}

// New creates a sync orchestrator
func New(
	syncer BatchSyncer,
	records store.RecordSource,
	snaps SnapshotStore,
	statuses StatusRepository,
	recorder Recorder,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	if cfg.JobName == "" {
		cfg.JobName = "account_sync"
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 300 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Orchestrator{
		syncer:      syncer,
		records:     records,
		snaps:       snaps,
		statuses:    statuses,
		recorder:    recorder,
		logger:      logger,
		jobName:     cfg.JobName,
		cooldown:    cfg.Cooldown,
		timeout:     cfg.Timeout,
		now:         cfg.Now,
		current:     entity.SyncJobStatus{JobName: cfg.JobName, Status: entity.JobStatusIdle},
		subscribers: make(map[int]chan entity.SyncJobStatus),
	}
}

// Bootstrap loads the snapshot left by the last completed sync, stamping it
// with that sync's completion time. A newer failed or running attempt does
// not change the snapshot's age.
func (o *Orchestrator) Bootstrap(ctx context.Context) error {
	row, err := o.statuses.LatestStatus(ctx, o.jobName)
	if err != nil {
		o.logger.Warn("failed to read last sync status", "job", o.jobName, "error", err)
		row = nil
	}

	completed := row
	if row != nil && !isCompleted(row.Status) {
		completed, err = o.statuses.LatestCompleted(ctx, o.jobName)
		if err != nil {
			o.logger.Warn("failed to read last completed sync", "job", o.jobName, "error", err)
			completed = nil
		}
	}

	var syncedAt time.Time
	if completed != nil && isCompleted(completed.Status) {
		syncedAt = completed.LastUpdatedAt
	}

	snap, err := o.snaps.Load(ctx, o.records, syncedAt)
	if err != nil {
		return fmt.Errorf("bootstrapping snapshot: %w", err)
	}
	o.recorder.ObserveSnapshot(snap)

	if row != nil {
		o.mu.Lock()
		o.current = statusFromRow(*row)
		if !syncedAt.IsZero() {
			last := statusFromRow(*completed)
			o.snapshotSync = &last
		}
		o.mu.Unlock()
	}

	o.logger.Info("account snapshot loaded",
		"version", snap.Version,
		"records", snap.Len(),
		"synced_at", syncedAt,
	)
	return nil
}

// Trigger starts a sync and blocks until the external job returns.
// Manual triggers are refused during the cooldown; any trigger is refused while
// another sync is in flight. Neither refusal reaches the network.
func (o *Orchestrator) Trigger(ctx context.Context, source entity.TriggerSource) (*entity.SyncResult, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, entity.ErrSyncInProgress
	}
	startedAt := o.now()
	if source == entity.TriggerManual {
		if remaining := o.cooldownRemainingLocked(startedAt); remaining > 0 {
			o.mu.Unlock()
			return nil, &entity.CooldownError{Remaining: remaining}
		}
		o.lastManual = startedAt
	}

	running, err := entity.SyncJobStatus{
		ID:        uuid.New().String(),
		JobName:   o.jobName,
		Source:    source,
		Status:    entity.JobStatusIdle,
		StartedAt: startedAt,
	}.Transition(entity.JobStatusRunning, startedAt)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.inFlight = true
	o.publishLocked(running)
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	o.logger.Info("sync started", "job", o.jobName, "id", running.ID, "source", source)
	o.persist(running)

	// The remote job cannot be cancelled once started, so it outlives the caller's context.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	result, err := o.syncer.RunSync(runCtx)
	if err != nil {
		return nil, o.fail(running, &entity.SyncError{Message: "sync request failed", Err: err})
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "sync job reported failure"
		}
		return result, o.fail(running, &entity.SyncError{Message: msg})
	}

	return result, o.complete(runCtx, running, *result)
}

func (o *Orchestrator) complete(ctx context.Context, running entity.SyncJobStatus, result entity.SyncResult) error {
	finishedAt := o.now()

	var (
		snap store.Snapshot
		row  *entity.StatusRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = o.snaps.Load(gctx, o.records, finishedAt)
		return err
	})
	g.Go(func() error {
		var err error
		row, err = o.statuses.LatestStatus(gctx, o.jobName)
		if err != nil {
			o.logger.Warn("failed to read sync status row", "job", o.jobName, "error", err)
			row = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return o.fail(running, fmt.Errorf("%w: %v", entity.ErrSnapshotRefresh, err))
	}

	next := running
	next.TotalAccountsSynced = result.TotalAccountsSynced
	next.SuccessfulBatches = result.SuccessfulBatches
	next.TotalBatches = result.TotalBatches
	next.TotalWorkspaces = result.TotalWorkspaces
	next.WorkspacesProcessed = result.TotalWorkspaces

	partial := result.IsPartial()
	if row != nil && !row.StartedAt.Before(running.StartedAt.Add(-time.Minute)) {
		next.WorkspacesProcessed = row.WorkspacesProcessed
		next.TotalWorkspaces = row.TotalWorkspaces
		next.WorkspacesSkipped = row.WorkspacesSkipped
		next.ErrorMessage = row.ErrorMessage
		partial = partial || row.Status == entity.JobStatusPartial || row.WorkspacesSkipped > 0
	} else if partial && result.TotalBatches > 0 {
		// estimated from batch counts when the job wrote no status row
		next.WorkspacesProcessed = result.TotalWorkspaces * result.SuccessfulBatches / result.TotalBatches
		next.WorkspacesSkipped = result.TotalWorkspaces - next.WorkspacesProcessed
	}

	status := entity.JobStatusSuccess
	if partial {
		status = entity.JobStatusPartial
	}
	done, err := next.Transition(status, finishedAt)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.snapshotSync = &done
	o.publishLocked(done)
	o.mu.Unlock()

	o.persist(done)
	o.recorder.ObserveSync(done.Status, done.Source, finishedAt.Sub(done.StartedAt))
	o.recorder.ObserveSnapshot(snap)

	o.logger.Info("sync completed",
		"job", o.jobName,
		"id", done.ID,
		"status", done.Status,
		"accounts", result.TotalAccountsSynced,
		"batches", fmt.Sprintf("%d/%d", result.SuccessfulBatches, result.TotalBatches),
		"workspaces_skipped", done.WorkspacesSkipped,
		"snapshot_version", snap.Version,
	)
	return nil
}

func (o *Orchestrator) fail(running entity.SyncJobStatus, cause error) error {
	finishedAt := o.now()

	failed, err := running.Transition(entity.JobStatusFailed, finishedAt)
	if err != nil {
		return errors.Join(cause, err)
	}
	failed.ErrorMessage = cause.Error()

	o.mu.Lock()
	o.publishLocked(failed)
	o.mu.Unlock()

	o.persist(failed)
	o.recorder.ObserveSync(failed.Status, failed.Source, finishedAt.Sub(failed.StartedAt))
	o.logger.Error("sync failed", "job", o.jobName, "id", failed.ID, "error", cause)
	return cause
}

// persist records the attempt; failures only get logged
func (o *Orchestrator) persist(status entity.SyncJobStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.statuses.SaveAttempt(ctx, status); err != nil {
		o.logger.Warn("failed to persist sync status", "id", status.ID, "status", status.Status, "error", err)
	}
}

// Status returns the latest sync attempt
func (o *Orchestrator) Status() entity.SyncJobStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// InFlight reports whether a sync is running
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// CooldownRemaining returns the time until a manual trigger is allowed again, in whole seconds
func (o *Orchestrator) CooldownRemaining() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cooldownRemainingLocked(o.now())
}

func (o *Orchestrator) cooldownRemainingLocked(now time.Time) time.Duration {
	if o.lastManual.IsZero() {
		return 0
	}
	remaining := o.lastManual.Add(o.cooldown).Sub(now)
	if remaining <= 0 {
		return 0
	}
	return remaining.Round(time.Second)
}

// Freshness classifies the current snapshot and carries a standing warning
// when it came from a partial sync
func (o *Orchestrator) Freshness() entity.FreshnessReport {
	snap := o.snaps.Current()
	now := o.now()

	report := entity.FreshnessReport{
		Classification: entity.Classify(now, snap.SyncedAt),
	}
	if !snap.SyncedAt.IsZero() {
		syncedAt := snap.SyncedAt
		report.LastSyncedAt = &syncedAt
		report.AgeSeconds = int64(now.Sub(syncedAt).Seconds())
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.snapshotSync != nil && o.snapshotSync.Status == entity.JobStatusPartial {
		report.Partial = &entity.PartialWarning{
			WorkspacesProcessed: o.snapshotSync.WorkspacesProcessed,
			TotalWorkspaces:     o.snapshotSync.TotalWorkspaces,
			WorkspacesSkipped:   o.snapshotSync.WorkspacesSkipped,
		}
	}
	return report
}

// Subscribe returns a channel receiving every status transition. Slow
// subscribers miss transitions rather than block the sync.
func (o *Orchestrator) Subscribe() (<-chan entity.SyncJobStatus, func()) {
	ch := make(chan entity.SyncJobStatus, 8)

	o.mu.Lock()
	id := o.nextSubscript
	o.nextSubscript++
	o.subscribers[id] = ch
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subscribers, id)
			o.mu.Unlock()
			close(ch)
		})
	}
}

func (o *Orchestrator) publishLocked(status entity.SyncJobStatus) {
	o.current = status
	for _, ch := range o.subscribers {
		select {
		case ch <- status:
		default:
		}
	}
}

func isCompleted(s entity.JobStatus) bool {
	return s == entity.JobStatusSuccess || s == entity.JobStatusPartial
}

func statusFromRow(row entity.StatusRow) entity.SyncJobStatus {
	return entity.SyncJobStatus{
		ID:                  row.ID,
		JobName:             row.JobName,
		Status:              row.Status,
		WorkspacesProcessed: row.WorkspacesProcessed,
		TotalWorkspaces:     row.TotalWorkspaces,
		WorkspacesSkipped:   row.WorkspacesSkipped,
		ErrorMessage:        row.ErrorMessage,
		StartedAt:           row.StartedAt,
		LastUpdatedAt:       row.LastUpdatedAt,
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveSync(entity.JobStatus, entity.TriggerSource, time.Duration) {}
func (nopRecorder) ObserveSnapshot(store.Snapshot)                                    {}
