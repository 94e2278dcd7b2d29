package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vadim/infra-metric/internal/domain/account/store"
	"github.com/vadim/infra-metric/internal/domain/sync/entity"
)

// SyncRecorder records sync attempts and snapshot replacements
type SyncRecorder struct {
	duration        *prometheus.HistogramVec
	attempts        *prometheus.CounterVec
	snapshotVersion prometheus.Gauge
	snapshotRecords prometheus.Gauge
	snapshotSynced  prometheus.Gauge
}

// NewSyncRecorder creates the sync collectors and registers them on reg
func NewSyncRecorder(reg prometheus.Registerer) *SyncRecorder {
	r := &SyncRecorder{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_sync_duration_seconds",
			Help:    "Duration of account sync attempts",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"status", "source"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_sync_attempts_total",
			Help: "Finished account sync attempts by outcome",
		}, []string{"status", "source"}),
		snapshotVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "account_snapshot_version",
			Help: "Version of the account snapshot being served",
		}),
		snapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "account_snapshot_records",
			Help: "Number of account records in the current snapshot",
		}),
		snapshotSynced: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "account_snapshot_synced_timestamp_seconds",
			Help: "Unix time the current snapshot was synced, 0 if never",
		}),
	}

	reg.MustRegister(r.duration, r.attempts, r.snapshotVersion, r.snapshotRecords, r.snapshotSynced)
	return r
}

// ObserveSync records one finished sync attempt
func (r *SyncRecorder) ObserveSync(status entity.JobStatus, source entity.TriggerSource, duration time.Duration) {
	r.duration.WithLabelValues(string(status), string(source)).Observe(duration.Seconds())
	r.attempts.WithLabelValues(string(status), string(source)).Inc()
}

// ObserveSnapshot records the snapshot now being served
func (r *SyncRecorder) ObserveSnapshot(snap store.Snapshot) {
	r.snapshotVersion.Set(float64(snap.Version))
	r.snapshotRecords.Set(float64(snap.Len()))
	if snap.SyncedAt.IsZero() {
		r.snapshotSynced.Set(0)
		return
	}
	r.snapshotSynced.Set(float64(snap.SyncedAt.Unix()))
}
