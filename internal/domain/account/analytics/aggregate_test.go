package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
)

func acct(provider string, sent, replied int64) entity.AccountRecord {
	return entity.AccountRecord{
		Email:        provider + "@example.com",
		Provider:     provider,
		Reseller:     entity.UnknownTag,
		ClientName:   entity.UnknownClient,
		AccountType:  entity.UnknownTag,
		Status:       entity.StatusConnected,
		TotalSent:    sent,
		TotalReplied: replied,
	}
}

func findGroup(t *testing.T, groups []entity.GroupAggregate, key string) entity.GroupAggregate {
	t.Helper()
	for _, g := range groups {
		if g.Key == key {
			return g
		}
	}
	require.Failf(t, "group not found", "key %q", key)
	return entity.GroupAggregate{}
}

func TestAggregateBy_ProviderExample(t *testing.T) {
	records := []entity.AccountRecord{
		acct("Acme", 200, 10),
		acct("Acme", 40, 5),
		acct("Acme", 0, 0),
	}

	groups := AggregateBy(records, entity.DimensionProvider)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, 3, g.AccountCount)
	assert.InDelta(t, 6.25, g.OverallReplyRate, 1e-9)
	assert.Equal(t, 5.0, g.WeightedReplyRate)
	assert.Equal(t, int64(200), g.QualifyingSentSum)
	assert.Equal(t, int64(10), g.QualifyingRepliedSum)
	assert.Equal(t, 1, g.QualifyingCount)
}

func TestAggregateBy_ZeroSentAccountsAreSafe(t *testing.T) {
	groups := AggregateBy([]entity.AccountRecord{acct("Idle", 0, 0), acct("Idle", 0, 0)}, entity.DimensionProvider)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Zero(t, g.OverallReplyRate)
	assert.Zero(t, g.WeightedReplyRate)
	assert.Zero(t, g.BounceRate)
	assert.Zero(t, g.UtilizationRate)
	assert.Zero(t, g.QualifyingSentSum)
}

func TestAggregateBy_OnlyLowVolumeAccounts(t *testing.T) {
	groups := AggregateBy([]entity.AccountRecord{acct("Low", 49, 20), acct("Low", 10, 5)}, entity.DimensionProvider)
	require.Len(t, groups, 1)
	assert.Zero(t, groups[0].WeightedReplyRate)
	assert.Greater(t, groups[0].OverallReplyRate, 0.0)
}

func TestAggregateBy_WeightedRateRoundsToOneDecimal(t *testing.T) {
	groups := AggregateBy([]entity.AccountRecord{acct("R", 300, 10)}, entity.DimensionProvider)
	require.Len(t, groups, 1)
	// 10/300 = 3.333...%
	assert.Equal(t, 3.3, groups[0].WeightedReplyRate)
}

func TestAggregateBy_ExhaustiveGroupingCountsEveryRecord(t *testing.T) {
	records := []entity.AccountRecord{
		acct("A", 10, 1), acct("B", 100, 0), acct("A", 60, 6), acct("C", 0, 0), acct("B", 500, 2),
	}
	records[1].Reseller = "R1"
	records[3].ClientName = "Globex"
	records[4].AccountType = "Google"

	for _, dim := range entity.Dimensions {
		total := 0
		for _, g := range AggregateBy(records, dim) {
			total += g.AccountCount
		}
		assert.Equal(t, len(records), total, "dimension %s", dim)
	}
}

func TestAggregateBy_NoReplyThreshold(t *testing.T) {
	records := []entity.AccountRecord{
		acct("A", 120, 0),
		acct("A", 160, 0),
		acct("A", 200, 1),
		acct("A", 99, 0),
	}

	provider := AggregateBy(records, entity.DimensionProvider)
	assert.Equal(t, 2, provider[0].NoReplyAccountCount)
	assert.Equal(t, int64(280), provider[0].NoReplySentSum)

	cross := AggregateBy(records, entity.DimensionProvider, WithNoReplyThreshold(entity.CrossReportNoReplyThreshold))
	assert.Equal(t, 1, cross[0].NoReplyAccountCount)
	assert.Equal(t, int64(160), cross[0].NoReplySentSum)
}

func TestAggregateBy_CapacityAndPrice(t *testing.T) {
	a := acct("A", 0, 0)
	a.DailyLimit = 20
	a.VolumePerAccount = 50
	a.Price = decimal.RequireFromString("3.50")
	b := acct("A", 0, 0)
	b.DailyLimit = 30
	b.VolumePerAccount = 50
	b.Price = decimal.RequireFromString("1.25")
	b.Status = entity.StatusFailed

	g := AggregateBy([]entity.AccountRecord{a, b}, entity.DimensionProvider)[0]
	assert.Equal(t, 50.0, g.CurrentDailyLimitSum)
	assert.Equal(t, 100.0, g.MaxVolumeSum)
	assert.Equal(t, 50.0, g.UtilizationRate)
	assert.Equal(t, 1, g.ConnectedCount)
	assert.Equal(t, "4.75", g.TotalPrice.String())
}

func TestAggregateBy_Empty(t *testing.T) {
	assert.Empty(t, AggregateBy(nil, entity.DimensionReseller))
}

func TestSortView(t *testing.T) {
	groups := []entity.GroupAggregate{
		{Key: "a", TotalSent: 10, WeightedReplyRate: 3, NoReplyAccountCount: 1, MaxVolumeSum: 500},
		{Key: "b", TotalSent: 30, WeightedReplyRate: 1, NoReplyAccountCount: 5, MaxVolumeSum: 100},
		{Key: "c", TotalSent: 20, WeightedReplyRate: 3, NoReplyAccountCount: 0, MaxVolumeSum: 300},
	}

	keys := func(gs []entity.GroupAggregate) []string {
		out := make([]string, len(gs))
		for i, g := range gs {
			out[i] = g.Key
		}
		return out
	}

	assert.Equal(t, []string{"b", "c", "a"}, keys(SortView(groups, entity.ViewTotalSent)))
	assert.Equal(t, []string{"a", "c", "b"}, keys(SortView(groups, entity.ViewAccounts50)))
	assert.Equal(t, []string{"b", "a", "c"}, keys(SortView(groups, entity.ViewNoReplies)))
	assert.Equal(t, []string{"a", "c", "b"}, keys(SortView(groups, entity.ViewDailyAvailability)))

	// input untouched
	assert.Equal(t, []string{"a", "b", "c"}, keys(groups))
}

func TestBuildNoReplyReport(t *testing.T) {
	records := []entity.AccountRecord{
		acct("A", 150, 0),
		acct("B", 400, 0),
		acct("B", 149, 0),
		acct("C", 1000, 3),
	}

	report := BuildNoReplyReport(records, entity.DimensionProvider, entity.CrossReportNoReplyThreshold)

	require.Len(t, report.Groups, 2)
	assert.Equal(t, int64(150), report.Threshold)
	require.Len(t, report.Accounts, 2)
	assert.Equal(t, int64(400), report.Accounts[0].TotalSent)
	assert.Equal(t, int64(550), report.TotalSent)
	findGroup(t, report.Groups, "A")
	findGroup(t, report.Groups, "B")
}

func TestSummarize(t *testing.T) {
	s := Summarize([]entity.AccountRecord{acct("A", 200, 10), acct("B", 40, 5), acct("C", 0, 0)})

	assert.Equal(t, 3, s.AccountCount)
	assert.Equal(t, int64(240), s.TotalSent)
	assert.InDelta(t, 6.25, s.OverallReplyRate, 1e-9)
	assert.Equal(t, 5.0, s.WeightedReplyRate)
}

func TestGroupBy_FirstSeenOrder(t *testing.T) {
	keys, groups := GroupBy([]string{"b", "a", "b", "c"},
		func(s string) string { return s },
		func(string) int { return 0 },
		func(n int, _ string) int { return n + 1 },
	)

	assert.Equal(t, []string{"b", "a", "c"}, keys)
	assert.Equal(t, 2, groups["b"])
	assert.Equal(t, []int{2, 1, 1}, Ordered(keys, groups))
}
