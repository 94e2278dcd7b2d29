package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Status represents the connection state of a sending account
type Status string

const (
	StatusConnected    Status = "Connected"
	StatusDisconnected Status = "Disconnected"
	StatusFailed       Status = "Failed"
	StatusNotConnected Status = "NotConnected"
)

// ParseStatus maps a raw status label to a Status. Unrecognized labels are NotConnected.
func ParseStatus(s string) Status {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s))
	switch key {
	case "connected":
		return StatusConnected
	case "disconnected":
		return StatusDisconnected
	case "failed":
		return StatusFailed
	default:
		return StatusNotConnected
	}
}

// Default tag values applied during normalization
const (
	UnknownTag    = "Unknown"
	UnknownClient = "Unknown Client"
)

// QualifyingSentThreshold is the minimum lifetime sends for an account's reply rate to count
const QualifyingSentThreshold = 50

// AccountRecord is a normalized sending account. Records are immutable once part of a snapshot.
type AccountRecord struct {
	Email            string          `json:"email"`
	DomainName       string          `json:"domain_name"`
	DisplayName      string          `json:"display_name"`
	Status           Status          `json:"status"`
	AccountType      string          `json:"account_type"`
	Provider         string          `json:"provider"`
	Reseller         string          `json:"reseller"`
	ClientName       string          `json:"client_name"`
	DailyLimit       float64         `json:"daily_limit"`
	VolumePerAccount float64         `json:"volume_per_account"`
	Price            decimal.Decimal `json:"price"`
	TotalSent        int64           `json:"total_sent"`
	TotalReplied     int64           `json:"total_replied"`
	TotalBounced     int64           `json:"total_bounced"`
}

// IsConnected reports whether the account is currently connected
func (r AccountRecord) IsConnected() bool {
	return r.Status == StatusConnected
}

// IsQualifying reports whether the account has enough sends for a meaningful reply rate
func (r AccountRecord) IsQualifying() bool {
	return r.TotalSent >= QualifyingSentThreshold
}

// IsNoReply reports whether the account sent at least threshold emails without a single reply
func (r AccountRecord) IsNoReply(threshold int64) bool {
	return r.TotalSent >= threshold && r.TotalReplied == 0
}

// ReplyRate returns replied/sent as a percentage, 0 when nothing was sent
func (r AccountRecord) ReplyRate() float64 {
	return Percent(float64(r.TotalReplied), float64(r.TotalSent))
}

// BounceRate returns bounced/sent as a percentage, 0 when nothing was sent
func (r AccountRecord) BounceRate() float64 {
	return Percent(float64(r.TotalBounced), float64(r.TotalSent))
}

// Ratio divides num by den, returning 0 for a zero denominator
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percent returns num/den*100, returning 0 for a zero denominator
func Percent(num, den float64) float64 {
	return Ratio(num, den) * 100
}
