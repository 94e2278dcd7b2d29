package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RawAccount is an account record as supplied by the external store
type RawAccount map[string]any

// Field aliases accepted from the external store, camelCase first
var (
	keyEmail            = []string{"email", "Email"}
	keyDomainName       = []string{"domainName", "domain_name", "domain"}
	keyDisplayName      = []string{"displayName", "display_name", "name"}
	keyStatus           = []string{"status", "Status"}
	keyAccountType      = []string{"accountType", "account_type", "type"}
	keyProvider         = []string{"provider", "esp"}
	keyReseller         = []string{"reseller", "Reseller"}
	keyClientName       = []string{"clientName", "client_name", "client", "workspace"}
	keyDailyLimit       = []string{"dailyLimit", "daily_limit"}
	keyVolumePerAccount = []string{"volumePerAccount", "volume_per_account"}
	keyPrice            = []string{"price", "Price"}
	keyTotalSent        = []string{"totalSent", "total_sent"}
	keyTotalReplied     = []string{"totalReplied", "total_replied"}
	keyTotalBounced     = []string{"totalBounced", "total_bounced"}
)

// Normalize maps a raw external record into an AccountRecord with every default applied
func Normalize(raw RawAccount) AccountRecord {
	return AccountRecord{
		Email:            raw.text(keyEmail),
		DomainName:       raw.text(keyDomainName),
		DisplayName:      raw.text(keyDisplayName),
		Status:           ParseStatus(raw.text(keyStatus)),
		AccountType:      raw.tag(keyAccountType, UnknownTag),
		Provider:         raw.tag(keyProvider, UnknownTag),
		Reseller:         raw.tag(keyReseller, UnknownTag),
		ClientName:       raw.tag(keyClientName, UnknownClient),
		DailyLimit:       nonNegative(raw.number(keyDailyLimit)),
		VolumePerAccount: nonNegative(raw.number(keyVolumePerAccount)),
		Price:            raw.money(keyPrice),
		TotalSent:        raw.counter(keyTotalSent),
		TotalReplied:     raw.counter(keyTotalReplied),
		TotalBounced:     raw.counter(keyTotalBounced),
	}
}

// NormalizeAll normalizes a batch of raw records, preserving order
func NormalizeAll(raws []RawAccount) []AccountRecord {
	records := make([]AccountRecord, len(raws))
	for i, raw := range raws {
		records[i] = Normalize(raw)
	}
	return records
}

// DecodeRawAccount decodes one JSON object into a RawAccount, keeping numbers as json.Number
func DecodeRawAccount(data []byte) (RawAccount, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding account record: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrInvalidRecord
	}
	return RawAccount(obj), nil
}

// DecodeRawAccounts decodes stored records in order, skipping any that are
// malformed or not JSON objects. Positions of skipped records are returned.
func DecodeRawAccounts(blobs [][]byte) ([]RawAccount, []int) {
	records := make([]RawAccount, 0, len(blobs))
	var skipped []int
	for i, data := range blobs {
		raw, err := DecodeRawAccount(data)
		if err != nil {
			skipped = append(skipped, i)
			continue
		}
		records = append(records, raw)
	}
	return records, skipped
}

func (r RawAccount) lookup(keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r RawAccount) text(keys []string) string {
	v, ok := r.lookup(keys)
	if !ok {
		return ""
	}
	return strings.TrimSpace(firstString(v))
}

func (r RawAccount) tag(keys []string, def string) string {
	if s := r.text(keys); s != "" {
		return s
	}
	return def
}

func (r RawAccount) number(keys []string) float64 {
	v, ok := r.lookup(keys)
	if !ok {
		return 0
	}
	return toFloat(v)
}

func (r RawAccount) counter(keys []string) int64 {
	return int64(math.Round(nonNegative(r.number(keys))))
}

func (r RawAccount) money(keys []string) decimal.Decimal {
	v, ok := r.lookup(keys)
	if !ok {
		return decimal.Zero
	}
	switch t := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d
		}
	}
	return decimal.NewFromFloat(toFloat(v))
}

// firstString unwraps multi-valued fields, returning the first non-empty string value
func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	case []string:
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// toFloat coerces a loosely typed numeric value, returning 0 for anything non-finite or non-numeric
func toFloat(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case []any:
		if len(t) == 0 {
			return 0
		}
		return toFloat(t[0])
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
