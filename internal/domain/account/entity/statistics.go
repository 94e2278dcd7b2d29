package entity

import "github.com/shopspring/decimal"

// Dimension is the record attribute a report groups by
type Dimension string

const (
	DimensionProvider    Dimension = "provider"
	DimensionReseller    Dimension = "reseller"
	DimensionClient      Dimension = "client"
	DimensionAccountType Dimension = "accountType"
)

// Dimensions lists every supported grouping dimension
var Dimensions = []Dimension{DimensionProvider, DimensionReseller, DimensionClient, DimensionAccountType}

// ParseDimension validates a dimension name
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	if s == "account_type" {
		return DimensionAccountType, nil
	}
	return "", ErrUnknownDimension
}

// KeyOf returns the value of the dimension for a record
func (d Dimension) KeyOf(r AccountRecord) string {
	switch d {
	case DimensionProvider:
		return r.Provider
	case DimensionReseller:
		return r.Reseller
	case DimensionClient:
		return r.ClientName
	case DimensionAccountType:
		return r.AccountType
	default:
		return UnknownTag
	}
}

// View selects the ordering of a grouped report
type View string

const (
	ViewTotalSent         View = "total_sent"
	ViewAccounts50        View = "accounts_50"
	ViewNoReplies         View = "no_replies"
	ViewDailyAvailability View = "daily_availability"
)

// ParseView validates a view name, defaulting to the total sent view
func ParseView(s string) (View, error) {
	switch View(s) {
	case "":
		return ViewTotalSent, nil
	case ViewTotalSent, ViewAccounts50, ViewNoReplies, ViewDailyAvailability:
		return View(s), nil
	default:
		return "", ErrUnknownView
	}
}

// No-reply thresholds. The provider breakdown and the cross-provider report
// use different minimum send counts.
const (
	ProviderNoReplyThreshold    int64 = 100
	CrossReportNoReplyThreshold int64 = 150
)

// GroupAggregate holds the rollup of every account sharing a dimension value.
// Rates are percentages.
type GroupAggregate struct {
	Key                  string          `json:"key"`
	AccountCount         int             `json:"account_count"`
	ConnectedCount       int             `json:"connected_count"`
	TotalSent            int64           `json:"total_sent"`
	TotalReplied         int64           `json:"total_replied"`
	TotalBounced         int64           `json:"total_bounced"`
	QualifyingCount      int             `json:"qualifying_count"`
	QualifyingSentSum    int64           `json:"qualifying_sent_sum"`
	QualifyingRepliedSum int64           `json:"qualifying_replied_sum"`
	NoReplyAccountCount  int             `json:"no_reply_account_count"`
	NoReplySentSum       int64           `json:"no_reply_sent_sum"`
	CurrentDailyLimitSum float64         `json:"current_daily_limit_sum"`
	MaxVolumeSum         float64         `json:"max_volume_sum"`
	TotalPrice           decimal.Decimal `json:"total_price"`

	OverallReplyRate  float64 `json:"overall_reply_rate"`
	WeightedReplyRate float64 `json:"weighted_reply_rate"`
	BounceRate        float64 `json:"bounce_rate"`
	UtilizationRate   float64 `json:"utilization_rate"`
}

// NoReplyReport lists groups and accounts that keep sending without replies
type NoReplyReport struct {
	Dimension Dimension        `json:"dimension"`
	Threshold int64            `json:"threshold"`
	Groups    []GroupAggregate `json:"groups"`
	Accounts  []AccountRecord  `json:"accounts"`
	TotalSent int64            `json:"total_sent"`
}

// Summary is the snapshot-wide overview
type Summary struct {
	AccountCount         int             `json:"account_count"`
	ConnectedCount       int             `json:"connected_count"`
	TotalSent            int64           `json:"total_sent"`
	TotalReplied         int64           `json:"total_replied"`
	TotalBounced         int64           `json:"total_bounced"`
	OverallReplyRate     float64         `json:"overall_reply_rate"`
	WeightedReplyRate    float64         `json:"weighted_reply_rate"`
	BounceRate           float64         `json:"bounce_rate"`
	CurrentDailyLimitSum float64         `json:"current_daily_limit_sum"`
	MaxVolumeSum         float64         `json:"max_volume_sum"`
	UtilizationRate      float64         `json:"utilization_rate"`
	TotalPrice           decimal.Decimal `json:"total_price"`
}

// CapacityBand classifies whether a client's available capacity covers its target
type CapacityBand string

const (
	BandSufficient   CapacityBand = "sufficient"
	BandInsufficient CapacityBand = "insufficient"
)

// ClientCapacity compares a client's capacity with its daily sending target
type ClientCapacity struct {
	ClientName            string          `json:"client_name"`
	AccountCount          int             `json:"account_count"`
	ConnectedCount        int             `json:"connected_count"`
	TotalPrice            decimal.Decimal `json:"total_price"`
	MaxSendingVolume      float64         `json:"max_sending_volume"`
	AvailableSending      float64         `json:"available_sending"`
	DailyTarget           int64           `json:"daily_target"`
	UtilizationPercentage float64         `json:"utilization_percentage"`
	Shortfall             float64         `json:"shortfall"`
	ShortfallPercentage   float64         `json:"shortfall_percentage"`
}

// Band returns the presentation band for the client
func (c ClientCapacity) Band() CapacityBand {
	if float64(c.DailyTarget) > c.AvailableSending {
		return BandInsufficient
	}
	return BandSufficient
}
