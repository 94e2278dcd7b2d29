package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/infra-metric/internal/domain/sync/entity"
)

// StatusPostgres reads sync_job_status rows written by the batch job and
// records our own attempts in sync_attempts
type StatusPostgres struct {
	pool *pgxpool.Pool
}

// NewStatusPostgres creates a new sync status repository
func NewStatusPostgres(pool *pgxpool.Pool) *StatusPostgres {
	return &StatusPostgres{pool: pool}
}

const statusColumns = `
	SELECT id::text, job_name, started_at, status,
	       COALESCE(workspaces_processed, 0), COALESCE(total_workspaces, 0),
	       COALESCE(workspaces_skipped, 0), error_message,
	       COALESCE(last_updated_at, started_at)
	FROM sync_job_status
`

// LatestStatus returns the most recent status row for a job, or nil if the job never ran
func (r *StatusPostgres) LatestStatus(ctx context.Context, jobName string) (*entity.StatusRow, error) {
	query := statusColumns + `
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	row, err := r.queryRow(ctx, query, jobName)
	if err != nil {
		return nil, fmt.Errorf("getting latest sync status: %w", err)
	}
	return row, nil
}

// LatestCompleted returns the most recent success or partial row for a job,
// or nil if no sync ever completed
func (r *StatusPostgres) LatestCompleted(ctx context.Context, jobName string) (*entity.StatusRow, error) {
	query := statusColumns + `
		WHERE job_name = $1 AND status IN ('success', 'partial')
		ORDER BY started_at DESC
		LIMIT 1
	`

	row, err := r.queryRow(ctx, query, jobName)
	if err != nil {
		return nil, fmt.Errorf("getting last completed sync: %w", err)
	}
	return row, nil
}

func (r *StatusPostgres) queryRow(ctx context.Context, query string, args ...any) (*entity.StatusRow, error) {
	var row entity.StatusRow
	var status string
	var errorMessage *string

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&row.ID,
		&row.JobName,
		&row.StartedAt,
		&status,
		&row.WorkspacesProcessed,
		&row.TotalWorkspaces,
		&row.WorkspacesSkipped,
		&errorMessage,
		&row.LastUpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	row.Status = entity.JobStatus(status)
	if errorMessage != nil {
		row.ErrorMessage = *errorMessage
	}

	return &row, nil
}

// SaveAttempt inserts or updates one orchestrated sync attempt
func (r *StatusPostgres) SaveAttempt(ctx context.Context, status entity.SyncJobStatus) error {
	query := `
		INSERT INTO sync_attempts (
			id, job_name, source, status,
			workspaces_processed, total_workspaces, workspaces_skipped,
			total_accounts_synced, successful_batches, total_batches,
			error_message, started_at, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			workspaces_processed = EXCLUDED.workspaces_processed,
			total_workspaces = EXCLUDED.total_workspaces,
			workspaces_skipped = EXCLUDED.workspaces_skipped,
			total_accounts_synced = EXCLUDED.total_accounts_synced,
			successful_batches = EXCLUDED.successful_batches,
			total_batches = EXCLUDED.total_batches,
			error_message = EXCLUDED.error_message,
			last_updated_at = EXCLUDED.last_updated_at
	`

	var errorMessage *string
	if status.ErrorMessage != "" {
		errorMessage = &status.ErrorMessage
	}

	_, err := r.pool.Exec(ctx, query,
		status.ID,
		status.JobName,
		string(status.Source),
		string(status.Status),
		status.WorkspacesProcessed,
		status.TotalWorkspaces,
		status.WorkspacesSkipped,
		status.TotalAccountsSynced,
		status.SuccessfulBatches,
		status.TotalBatches,
		errorMessage,
		status.StartedAt,
		status.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving sync attempt: %w", err)
	}

	return nil
}

// RecentAttempts lists the latest orchestrated attempts, newest first
func (r *StatusPostgres) RecentAttempts(ctx context.Context, limit int) ([]entity.SyncJobStatus, error) {
	query := `
		SELECT id::text, job_name, source, status,
		       workspaces_processed, total_workspaces, workspaces_skipped,
		       total_accounts_synced, successful_batches, total_batches,
		       error_message, started_at, last_updated_at
		FROM sync_attempts
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync attempts: %w", err)
	}
	defer rows.Close()

	var attempts []entity.SyncJobStatus
	for rows.Next() {
		var a entity.SyncJobStatus
		var source, status string
		var errorMessage *string
		if err := rows.Scan(
			&a.ID,
			&a.JobName,
			&source,
			&status,
			&a.WorkspacesProcessed,
			&a.TotalWorkspaces,
			&a.WorkspacesSkipped,
			&a.TotalAccountsSynced,
			&a.SuccessfulBatches,
			&a.TotalBatches,
			&errorMessage,
			&a.StartedAt,
			&a.LastUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning sync attempt: %w", err)
		}
		a.Source = entity.TriggerSource(source)
		a.Status = entity.JobStatus(status)
		if errorMessage != nil {
			a.ErrorMessage = *errorMessage
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync attempts: %w", err)
	}

	return attempts, nil
}
