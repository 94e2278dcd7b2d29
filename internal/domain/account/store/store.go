package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
)

// Snapshot is an immutable view of all account records from one sync
type Snapshot struct {
	Version  uint64
	Records  []entity.AccountRecord
	SyncedAt time.Time
}

// Len returns the number of records in the snapshot
func (s Snapshot) Len() int {
	return len(s.Records)
}

// RecordSource reads the current records from the external store
type RecordSource interface {
	ListRecords(ctx context.Context) ([]entity.RawAccount, error)
}

// Store owns the current snapshot. Readers always see a complete snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex // serializes writers so versions stay monotonic
}

// New creates an empty store at version 0
func New() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{})
	return s
}

// Current returns the snapshot visible right now
func (s *Store) Current() Snapshot {
	return *s.current.Load()
}

// Replace swaps in a new snapshot and returns it
func (s *Store) Replace(records []entity.AccountRecord, syncedAt time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	owned := make([]entity.AccountRecord, len(records))
	copy(owned, records)

	next := &Snapshot{
		Version:  prev.Version + 1,
		Records:  owned,
		SyncedAt: syncedAt,
	}
	s.current.Store(next)
	return *next
}

// Load reads every record from the source, normalizes it and replaces the snapshot
func (s *Store) Load(ctx context.Context, src RecordSource, syncedAt time.Time) (Snapshot, error) {
	raws, err := src.ListRecords(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading account records: %w", err)
	}
	return s.Replace(entity.NormalizeAll(raws), syncedAt), nil
}
