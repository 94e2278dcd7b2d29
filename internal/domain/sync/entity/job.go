package entity

import "time"

// JobStatus is the lifecycle state of a sync attempt
type JobStatus string

const (
	JobStatusIdle    JobStatus = "idle"
	JobStatusRunning JobStatus = "running"
	JobStatusSuccess JobStatus = "success"
	JobStatusPartial JobStatus = "partial"
	JobStatusFailed  JobStatus = "failed"
)

// IsTerminal reports whether the status ends an attempt
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSuccess || s == JobStatusPartial || s == JobStatusFailed
}

// CanTransitionTo reports whether the state machine allows moving from s to next
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusIdle, JobStatusSuccess, JobStatusPartial, JobStatusFailed:
		return next == JobStatusRunning
	case JobStatusRunning:
		return next.IsTerminal()
	default:
		return false
	}
}

// TriggerSource tells whether a sync was requested by a user or the background scheduler
type TriggerSource string

const (
	TriggerManual    TriggerSource = "manual"
	TriggerScheduled TriggerSource = "scheduled"
)

// SyncJobStatus is one sync attempt. A new value is produced on every transition.
type SyncJobStatus struct {
	ID                  string        `json:"id"`
	JobName             string        `json:"job_name"`
	Source              TriggerSource `json:"source"`
	Status              JobStatus     `json:"status"`
	WorkspacesProcessed int           `json:"workspaces_processed"`
	TotalWorkspaces     int           `json:"total_workspaces"`
	WorkspacesSkipped   int           `json:"workspaces_skipped"`
	TotalAccountsSynced int           `json:"total_accounts_synced"`
	SuccessfulBatches   int           `json:"successful_batches"`
	TotalBatches        int           `json:"total_batches"`
	ErrorMessage        string        `json:"error_message,omitempty"`
	StartedAt           time.Time     `json:"started_at"`
	LastUpdatedAt       time.Time     `json:"last_updated_at"`
}

// Transition returns a copy of s moved to next, stamped at now
func (s SyncJobStatus) Transition(next JobStatus, now time.Time) (SyncJobStatus, error) {
	if !s.Status.CanTransitionTo(next) {
		return s, &TransitionError{From: s.Status, To: next}
	}
	s.Status = next
	s.LastUpdatedAt = now
	return s, nil
}

// SyncResult is the response of the external batch sync job
type SyncResult struct {
	Success             bool   `json:"success"`
	TotalAccountsSynced int    `json:"total_accounts_synced" validate:"gte=0"`
	TotalWorkspaces     int    `json:"total_workspaces" validate:"gte=0"`
	SuccessfulBatches   int    `json:"successful_batches" validate:"gte=0,ltefield=TotalBatches"`
	TotalBatches        int    `json:"total_batches" validate:"gte=0"`
	Error               string `json:"error,omitempty"`
}

// IsPartial reports whether some batches failed
func (r SyncResult) IsPartial() bool {
	return r.SuccessfulBatches < r.TotalBatches
}

// StatusRow is a sync status row as written by the external job
type StatusRow struct {
	ID                  string
	JobName             string
	StartedAt           time.Time
	Status              JobStatus
	WorkspacesProcessed int
	TotalWorkspaces     int
	WorkspacesSkipped   int
	ErrorMessage        string
	LastUpdatedAt       time.Time
}
