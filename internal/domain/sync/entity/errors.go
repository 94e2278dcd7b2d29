package entity

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors for sync orchestration
var (
	ErrSyncInProgress  = errors.New("Another sync already running")
	ErrCooldownActive  = errors.New("sync cooldown is active")
	ErrRemoteSync      = errors.New("remote sync failed")
	ErrSnapshotRefresh = errors.New("sync completed but records could not be reloaded")
)

// CooldownError carries the remaining cooldown for display
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("sync cooldown is active, retry in %ds", int(e.Remaining.Seconds()))
}

// Is makes errors.Is(err, ErrCooldownActive) true
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// SyncError is a failed remote sync with the message reported by the job
type SyncError struct {
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote sync failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("remote sync failed: %s", e.Message)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRemoteSync) true
func (e *SyncError) Is(target error) bool {
	return target == ErrRemoteSync
}

// TransitionError is an illegal state machine move
type TransitionError struct {
	From JobStatus
	To   JobStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid sync transition %s -> %s", e.From, e.To)
}
