package export

import (
	"github.com/vadim/infra-metric/internal/domain/account/entity"
)

// AccountColumns is the column set of the account list export
var AccountColumns = []Column[entity.AccountRecord]{
	{Header: "Email", Value: func(r entity.AccountRecord) any { return r.Email }},
	{Header: "Display Name", Value: func(r entity.AccountRecord) any { return r.DisplayName }},
	{Header: "Domain", Value: func(r entity.AccountRecord) any { return r.DomainName }},
	{Header: "Client", Value: func(r entity.AccountRecord) any { return r.ClientName }},
	{Header: "Provider", Value: func(r entity.AccountRecord) any { return r.Provider }},
	{Header: "Reseller", Value: func(r entity.AccountRecord) any { return r.Reseller }},
	{Header: "Account Type", Value: func(r entity.AccountRecord) any { return r.AccountType }},
	{Header: "Status", Value: func(r entity.AccountRecord) any { return string(r.Status) }},
	{Header: "Daily Limit", Format: FormatDecimal, Value: func(r entity.AccountRecord) any { return r.DailyLimit }},
	{Header: "Volume Per Account", Format: FormatDecimal, Value: func(r entity.AccountRecord) any { return r.VolumePerAccount }},
	{Header: "Price", Format: FormatCurrency, Value: func(r entity.AccountRecord) any { return r.Price }},
	{Header: "Total Sent", Format: FormatInteger, Value: func(r entity.AccountRecord) any { return r.TotalSent }},
	{Header: "Total Replied", Format: FormatInteger, Value: func(r entity.AccountRecord) any { return r.TotalReplied }},
	{Header: "Total Bounced", Format: FormatInteger, Value: func(r entity.AccountRecord) any { return r.TotalBounced }},
	{Header: "Reply Rate %", Format: FormatPercent, Value: func(r entity.AccountRecord) any { return r.ReplyRate() }},
}

// AggregateColumns is the column set of grouped report exports
var AggregateColumns = []Column[entity.GroupAggregate]{
	{Header: "Group", Value: func(g entity.GroupAggregate) any { return g.Key }},
	{Header: "Accounts", Format: FormatInteger, Value: func(g entity.GroupAggregate) any { return g.AccountCount }},
	{Header: "Connected", Format: FormatInteger, Value: func(g entity.GroupAggregate) any { return g.ConnectedCount }},
	{Header: "Total Sent", Format: FormatInteger, Value: func(g entity.GroupAggregate) any { return g.TotalSent }},
	{Header: "Total Replied", Format: FormatInteger, Value: func(g entity.GroupAggregate) any { return g.TotalReplied }},
	{Header: "Total Bounced", Format: FormatInteger, Value: func(g entity.GroupAggregate) any { return g.TotalBounced }},
	{Header: "Reply Rate %", Format: FormatPercent, Value: func(g entity.GroupAggregate) any { return g.OverallReplyRate }},
	{Header: "Reply Rate 50+ %", Format: FormatPercent, Value: func(g entity.GroupAggregate) any { return g.WeightedReplyRate }},
	{Header: "Bounce Rate %", Format: FormatPercent, Value: func(g entity.GroupAggregate) any { return g.BounceRate }},
	{Header: "No Reply Accounts", Format: FormatInteger, Value: func(g entity.GroupAggregate) any { return g.NoReplyAccountCount }},
	{Header: "No Reply Sent", Format: FormatInteger, Value: func(g entity.GroupAggregate) any { return g.NoReplySentSum }},
	{Header: "Current Daily Limit", Format: FormatDecimal, Value: func(g entity.GroupAggregate) any { return g.CurrentDailyLimitSum }},
	{Header: "Max Volume", Format: FormatDecimal, Value: func(g entity.GroupAggregate) any { return g.MaxVolumeSum }},
	{Header: "Utilization %", Format: FormatPercent, Value: func(g entity.GroupAggregate) any { return g.UtilizationRate }},
	{Header: "Total Price", Format: FormatCurrency, Value: func(g entity.GroupAggregate) any { return g.TotalPrice }},
}

// CapacityColumns is the column set of the capacity plan export
var CapacityColumns = []Column[entity.ClientCapacity]{
	{Header: "Client", Value: func(c entity.ClientCapacity) any { return c.ClientName }},
	{Header: "Accounts", Format: FormatInteger, Value: func(c entity.ClientCapacity) any { return c.AccountCount }},
	{Header: "Connected", Format: FormatInteger, Value: func(c entity.ClientCapacity) any { return c.ConnectedCount }},
	{Header: "Total Price", Format: FormatCurrency, Value: func(c entity.ClientCapacity) any { return c.TotalPrice }},
	{Header: "Max Sending Volume", Format: FormatDecimal, Value: func(c entity.ClientCapacity) any { return c.MaxSendingVolume }},
	{Header: "Available Sending", Format: FormatDecimal, Value: func(c entity.ClientCapacity) any { return c.AvailableSending }},
	{Header: "Daily Target", Format: FormatInteger, Value: func(c entity.ClientCapacity) any { return c.DailyTarget }},
	{Header: "Utilization %", Format: FormatPercent, Value: func(c entity.ClientCapacity) any { return c.UtilizationPercentage }},
	{Header: "Shortfall", Format: FormatDecimal, Value: func(c entity.ClientCapacity) any { return c.Shortfall }},
	{Header: "Shortfall %", Format: FormatPercent, Value: func(c entity.ClientCapacity) any { return c.ShortfallPercentage }},
	{Header: "Status", Value: func(c entity.ClientCapacity) any { return string(c.Band()) }},
}
