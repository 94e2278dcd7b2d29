package analytics

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
)

// MemoKey identifies a derived report for one snapshot version
type MemoKey struct {
	Version   uint64
	Report    string
	Dimension entity.Dimension
	View      entity.View
	Threshold int64
}

func (k MemoKey) String() string {
	return fmt.Sprintf("%d/%s/%s/%s/%d", k.Version, k.Report, k.Dimension, k.View, k.Threshold)
}

// Memo caches derived reports for the newest snapshot version only.
// Values are shared between callers and must be treated as read-only.
type Memo[V any] struct {
	mu      sync.Mutex
	version uint64
	entries map[MemoKey]V
	group   singleflight.Group
	hits    uint64
	misses  uint64
}

// NewMemo creates an empty memo
func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{entries: make(map[MemoKey]V)}
}

// Get returns the cached value for key or computes it. Entries from older
// versions are dropped once a newer version is requested; requests for an
// older version are computed but not cached.
func (m *Memo[V]) Get(key MemoKey, compute func() V) V {
	m.mu.Lock()
	if key.Version > m.version {
		m.version = key.Version
		m.entries = make(map[MemoKey]V)
	}
	if v, ok := m.entries[key]; ok {
		m.hits++
		m.mu.Unlock()
		return v
	}
	m.misses++
	m.mu.Unlock()

	v, _, _ := m.group.Do(key.String(), func() (any, error) {
		value := compute()

		m.mu.Lock()
		if key.Version == m.version {
			m.entries[key] = value
		}
		m.mu.Unlock()

		return value, nil
	})
	return v.(V)
}

// Stats returns hit and miss counters
func (m *Memo[V]) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Len returns the number of cached entries
func (m *Memo[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
