package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Boundaries(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		age  time.Duration
		want Freshness
	}{
		{0, FreshnessFresh},
		{5*time.Hour + 59*time.Minute, FreshnessFresh},
		{6 * time.Hour, FreshnessStale},
		{23*time.Hour + 59*time.Minute, FreshnessStale},
		{24 * time.Hour, FreshnessVeryStale},
		{72 * time.Hour, FreshnessVeryStale},
	}

	for _, tt := range tests {
		t.Run(tt.age.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(now, now.Add(-tt.age)))
		})
	}
}

func TestClassify_NeverSynced(t *testing.T) {
	assert.Equal(t, FreshnessNever, Classify(time.Now(), time.Time{}))
}

func TestJobStatus_Transitions(t *testing.T) {
	assert.True(t, JobStatusIdle.CanTransitionTo(JobStatusRunning))
	assert.False(t, JobStatusIdle.CanTransitionTo(JobStatusSuccess))
	assert.True(t, JobStatusRunning.CanTransitionTo(JobStatusPartial))
	assert.False(t, JobStatusRunning.CanTransitionTo(JobStatusRunning))
	assert.True(t, JobStatusFailed.CanTransitionTo(JobStatusRunning))

	now := time.Now()
	s := SyncJobStatus{Status: JobStatusIdle}
	running, err := s.Transition(JobStatusRunning, now)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRunning, running.Status)
	assert.Equal(t, JobStatusIdle, s.Status)

	_, err = s.Transition(JobStatusFailed, now)
	var te *TransitionError
	assert.ErrorAs(t, err, &te)
}

func TestSyncResult_IsPartial(t *testing.T) {
	assert.False(t, SyncResult{SuccessfulBatches: 4, TotalBatches: 4}.IsPartial())
	assert.True(t, SyncResult{SuccessfulBatches: 3, TotalBatches: 4}.IsPartial())
}
