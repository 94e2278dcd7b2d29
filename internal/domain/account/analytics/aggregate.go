package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
)

type aggregateOptions struct {
	noReplyThreshold int64
}

// Option configures AggregateBy
type Option func(*aggregateOptions)

// WithNoReplyThreshold sets the minimum sends for an account to count as a no-reply account
func WithNoReplyThreshold(threshold int64) Option {
	return func(o *aggregateOptions) {
		if threshold > 0 {
			o.noReplyThreshold = threshold
		}
	}
}

// AggregateBy groups records by the dimension and computes per-group rates.
// Output is in first-seen order; apply SortView for a report ordering.
func AggregateBy(records []entity.AccountRecord, dim entity.Dimension, opts ...Option) []entity.GroupAggregate {
	o := aggregateOptions{noReplyThreshold: entity.ProviderNoReplyThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	keys, groups := GroupBy(records, dim.KeyOf,
		func(k string) entity.GroupAggregate {
			return entity.GroupAggregate{Key: k, TotalPrice: decimal.Zero}
		},
		func(g entity.GroupAggregate, r entity.AccountRecord) entity.GroupAggregate {
			return accumulate(g, r, o.noReplyThreshold)
		},
	)

	out := make([]entity.GroupAggregate, 0, len(keys))
	for _, g := range Ordered(keys, groups) {
		if g.AccountCount == 0 {
			continue
		}
		out = append(out, finalize(g))
	}
	return out
}

func accumulate(g entity.GroupAggregate, r entity.AccountRecord, noReplyThreshold int64) entity.GroupAggregate {
	g.AccountCount++
	if r.IsConnected() {
		g.ConnectedCount++
	}
	g.TotalSent += r.TotalSent
	g.TotalReplied += r.TotalReplied
	g.TotalBounced += r.TotalBounced
	if r.IsQualifying() {
		g.QualifyingCount++
		g.QualifyingSentSum += r.TotalSent
		g.QualifyingRepliedSum += r.TotalReplied
	}
	if r.IsNoReply(noReplyThreshold) {
		g.NoReplyAccountCount++
		g.NoReplySentSum += r.TotalSent
	}
	g.CurrentDailyLimitSum += r.DailyLimit
	g.MaxVolumeSum += r.VolumePerAccount
	g.TotalPrice = g.TotalPrice.Add(r.Price)
	return g
}

func finalize(g entity.GroupAggregate) entity.GroupAggregate {
	g.OverallReplyRate = entity.Percent(float64(g.TotalReplied), float64(g.TotalSent))
	g.WeightedReplyRate = roundTo(entity.Percent(float64(g.QualifyingRepliedSum), float64(g.QualifyingSentSum)), 1)
	g.BounceRate = entity.Percent(float64(g.TotalBounced), float64(g.TotalSent))
	g.UtilizationRate = entity.Percent(g.CurrentDailyLimitSum, g.MaxVolumeSum)
	return g
}

// SortView orders groups for a report view, descending by the view's metric.
// Ties keep their incoming order.
func SortView(groups []entity.GroupAggregate, view entity.View) []entity.GroupAggregate {
	sorted := slices.Clone(groups)

	var metric func(entity.GroupAggregate) float64
	switch view {
	case entity.ViewAccounts50:
		metric = func(g entity.GroupAggregate) float64 { return g.WeightedReplyRate }
	case entity.ViewNoReplies:
		metric = func(g entity.GroupAggregate) float64 { return float64(g.NoReplyAccountCount) }
	case entity.ViewDailyAvailability:
		metric = func(g entity.GroupAggregate) float64 { return g.MaxVolumeSum }
	default:
		metric = func(g entity.GroupAggregate) float64 { return float64(g.TotalSent) }
	}

	slices.SortStableFunc(sorted, func(a, b entity.GroupAggregate) int {
		return cmp.Compare(metric(b), metric(a))
	})
	return sorted
}

// Report aggregates and sorts in one call
func Report(records []entity.AccountRecord, dim entity.Dimension, view entity.View, opts ...Option) []entity.GroupAggregate {
	return SortView(AggregateBy(records, dim, opts...), view)
}

// NoReplyAccounts returns the accounts with at least threshold sends and no replies,
// highest volume first
func NoReplyAccounts(records []entity.AccountRecord, threshold int64) []entity.AccountRecord {
	out := make([]entity.AccountRecord, 0)
	for _, r := range records {
		if r.IsNoReply(threshold) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b entity.AccountRecord) int {
		return cmp.Compare(b.TotalSent, a.TotalSent)
	})
	return out
}

// BuildNoReplyReport builds the cross-cutting no-reply report for a dimension
func BuildNoReplyReport(records []entity.AccountRecord, dim entity.Dimension, threshold int64) entity.NoReplyReport {
	if threshold <= 0 {
		threshold = entity.CrossReportNoReplyThreshold
	}

	groups := make([]entity.GroupAggregate, 0)
	for _, g := range Report(records, dim, entity.ViewNoReplies, WithNoReplyThreshold(threshold)) {
		if g.NoReplyAccountCount > 0 {
			groups = append(groups, g)
		}
	}

	accounts := NoReplyAccounts(records, threshold)
	var sent int64
	for _, a := range accounts {
		sent += a.TotalSent
	}

	return entity.NoReplyReport{
		Dimension: dim,
		Threshold: threshold,
		Groups:    groups,
		Accounts:  accounts,
		TotalSent: sent,
	}
}

// Summarize computes snapshot-wide totals
func Summarize(records []entity.AccountRecord) entity.Summary {
	g := entity.GroupAggregate{TotalPrice: decimal.Zero}
	for _, r := range records {
		g = accumulate(g, r, entity.ProviderNoReplyThreshold)
	}
	g = finalize(g)

	return entity.Summary{
		AccountCount:         g.AccountCount,
		ConnectedCount:       g.ConnectedCount,
		TotalSent:            g.TotalSent,
		TotalReplied:         g.TotalReplied,
		TotalBounced:         g.TotalBounced,
		OverallReplyRate:     g.OverallReplyRate,
		WeightedReplyRate:    g.WeightedReplyRate,
		BounceRate:           g.BounceRate,
		CurrentDailyLimitSum: g.CurrentDailyLimitSum,
		MaxVolumeSum:         g.MaxVolumeSum,
		UtilizationRate:      g.UtilizationRate,
		TotalPrice:           g.TotalPrice,
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
