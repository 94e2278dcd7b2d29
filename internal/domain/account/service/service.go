package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vadim/infra-metric/internal/domain/account/analytics"
	"github.com/vadim/infra-metric/internal/domain/account/entity"
	"github.com/vadim/infra-metric/internal/domain/account/store"
)

// SnapshotReader exposes the snapshot currently being served
type SnapshotReader interface {
	Current() store.Snapshot
}

// TargetRepository stores daily sending targets per client workspace
type TargetRepository interface {
	DailyTargets(ctx context.Context) (map[string]int64, error)
	SetDailyTarget(ctx context.Context, workspace string, target int64) error
}

// Service answers analytics queries over the current account snapshot
type Service struct {
	snaps   SnapshotReader
	targets TargetRepository
	memo    *analytics.Memo[any] // nil disables memoization
}

// New creates a new analytics service
func New(snaps SnapshotReader, targets TargetRepository, memoEnabled bool) *Service {
	s := &Service{
		snaps:   snaps,
		targets: targets,
	}
	if memoEnabled {
		s.memo = analytics.NewMemo[any]()
	}
	return s
}

// Stats returns memo hit and miss counters
func (s *Service) Stats() (hits, misses uint64) {
	if s.memo == nil {
		return 0, 0
	}
	return s.memo.Stats()
}

// Snapshot returns the snapshot queries currently run against
func (s *Service) Snapshot() store.Snapshot {
	return s.snaps.Current()
}

func cached[V any](s *Service, key analytics.MemoKey, compute func() V) V {
	if s.memo == nil {
		return compute()
	}
	return s.memo.Get(key, func() any { return compute() }).(V)
}

// Summary returns snapshot-wide totals
func (s *Service) Summary() entity.Summary {
	snap := s.snaps.Current()
	return cached(s, analytics.MemoKey{Version: snap.Version, Report: "summary"}, func() entity.Summary {
		return analytics.Summarize(snap.Records)
	})
}

// Groups returns the grouped report for a dimension ordered by view.
// A zero threshold selects the per-dimension default.
func (s *Service) Groups(dim entity.Dimension, view entity.View, threshold int64) ([]entity.GroupAggregate, error) {
	threshold, err := resolveThreshold(threshold, entity.ProviderNoReplyThreshold)
	if err != nil {
		return nil, err
	}

	snap := s.snaps.Current()
	key := analytics.MemoKey{
		Version:   snap.Version,
		Report:    "groups",
		Dimension: dim,
		View:      view,
		Threshold: threshold,
	}
	return cached(s, key, func() []entity.GroupAggregate {
		return analytics.Report(snap.Records, dim, view, analytics.WithNoReplyThreshold(threshold))
	}), nil
}

// NoReplies returns the cross-cutting no-reply report.
// A zero threshold selects the cross-report default.
func (s *Service) NoReplies(dim entity.Dimension, threshold int64) (entity.NoReplyReport, error) {
	threshold, err := resolveThreshold(threshold, entity.CrossReportNoReplyThreshold)
	if err != nil {
		return entity.NoReplyReport{}, err
	}

	snap := s.snaps.Current()
	key := analytics.MemoKey{
		Version:   snap.Version,
		Report:    "no_replies",
		Dimension: dim,
		Threshold: threshold,
	}
	return cached(s, key, func() entity.NoReplyReport {
		return analytics.BuildNoReplyReport(snap.Records, dim, threshold)
	}), nil
}

// CapacityPlan is a capacity plan with its totals
type CapacityPlan struct {
	Clients []entity.ClientCapacity  `json:"clients"`
	Totals  analytics.CapacityTotals `json:"totals"`
}

// Capacity plans capacity against the stored daily targets
func (s *Service) Capacity(ctx context.Context) (CapacityPlan, error) {
	targets, err := s.targets.DailyTargets(ctx)
	if err != nil {
		return CapacityPlan{}, fmt.Errorf("loading sending targets: %w", err)
	}
	return s.PlanCapacity(targets), nil
}

// SetDailyTarget stores the daily sending target for a client.
// Capacity is never memoized, so the next plan picks it up.
func (s *Service) SetDailyTarget(ctx context.Context, client string, target int64) error {
	client = strings.TrimSpace(client)
	if client == "" || target < 0 {
		return entity.ErrInvalidTarget
	}
	if err := s.targets.SetDailyTarget(ctx, client, target); err != nil {
		return fmt.Errorf("saving sending target: %w", err)
	}
	return nil
}

// PlanCapacity plans capacity against the supplied daily targets
func (s *Service) PlanCapacity(targets map[string]int64) CapacityPlan {
	snap := s.snaps.Current()
	clients := analytics.PlanCapacity(snap.Records, targets)
	return CapacityPlan{
		Clients: clients,
		Totals:  analytics.TotalCapacity(clients),
	}
}

// Search runs the capped free-text search
func (s *Service) Search(query string) []entity.AccountRecord {
	return analytics.Search(s.snaps.Current().Records, query)
}

// Drill-down filters
const (
	FilterNone         = ""
	FilterZeroReplies  = "zero_replies"
	FilterConnected    = "connected"
	FilterDisconnected = "disconnected"
	FilterFailed       = "failed"
	FilterNotConnected = "not_connected"
)

// DrilldownQuery scopes the account list behind a report row
type DrilldownQuery struct {
	Dimension entity.Dimension
	Key       string
	Filter    string
	MinSent   int64
	Query     string
}

// Drilldown lists the accounts of one group matching the filter and the text query
func (s *Service) Drilldown(q DrilldownQuery) ([]entity.AccountRecord, error) {
	var preds []analytics.Predicate
	if q.Dimension != "" {
		preds = append(preds, analytics.InGroup(q.Dimension, q.Key))
	}

	switch q.Filter {
	case FilterNone:
	case FilterZeroReplies:
		minSent := q.MinSent
		if minSent <= 0 {
			minSent = entity.QualifyingSentThreshold
		}
		preds = append(preds, analytics.ZeroReplies(minSent))
	case FilterConnected:
		preds = append(preds, analytics.WithStatus(entity.StatusConnected))
	case FilterDisconnected:
		preds = append(preds, analytics.WithStatus(entity.StatusDisconnected))
	case FilterFailed:
		preds = append(preds, analytics.WithStatus(entity.StatusFailed))
	case FilterNotConnected:
		preds = append(preds, analytics.WithStatus(entity.StatusNotConnected))
	default:
		return nil, entity.ErrUnknownFilter
	}

	return analytics.Filter(s.snaps.Current().Records, analytics.All(preds...), q.Query), nil
}

func resolveThreshold(threshold, def int64) (int64, error) {
	switch {
	case threshold < 0:
		return 0, entity.ErrInvalidThreshold
	case threshold == 0:
		return def, nil
	default:
		return threshold, nil
	}
}
