package entity

import "time"

// Freshness classifies how old the current snapshot is
type Freshness string

const (
	FreshnessNever     Freshness = "never"
	FreshnessFresh     Freshness = "fresh"
	FreshnessStale     Freshness = "stale"
	FreshnessVeryStale Freshness = "very_stale"
)

// Freshness boundaries
const (
	StaleAfter     = 6 * time.Hour
	VeryStaleAfter = 24 * time.Hour
)

// Classify returns the freshness of data last synced at lastSyncedAt.
// A zero lastSyncedAt means the data was never synced.
func Classify(now, lastSyncedAt time.Time) Freshness {
	if lastSyncedAt.IsZero() {
		return FreshnessNever
	}
	age := now.Sub(lastSyncedAt)
	switch {
	case age < StaleAfter:
		return FreshnessFresh
	case age < VeryStaleAfter:
		return FreshnessStale
	default:
		return FreshnessVeryStale
	}
}

// PartialWarning is surfaced while the last completed sync was partial
type PartialWarning struct {
	WorkspacesProcessed int `json:"workspaces_processed"`
	TotalWorkspaces     int `json:"total_workspaces"`
	WorkspacesSkipped   int `json:"workspaces_skipped"`
}

// FreshnessReport describes the data age as shown next to every report
type FreshnessReport struct {
	Classification Freshness       `json:"classification"`
	LastSyncedAt   *time.Time      `json:"last_synced_at,omitempty"`
	AgeSeconds     int64           `json:"age_seconds"`
	Partial        *PartialWarning `json:"partial_warning,omitempty"`
}
