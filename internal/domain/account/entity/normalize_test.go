package entity

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_AppliesDefaults(t *testing.T) {
	rec := Normalize(RawAccount{"email": "a@example.com"})

	assert.Equal(t, "a@example.com", rec.Email)
	assert.Equal(t, UnknownTag, rec.Provider)
	assert.Equal(t, UnknownTag, rec.Reseller)
	assert.Equal(t, UnknownTag, rec.AccountType)
	assert.Equal(t, UnknownClient, rec.ClientName)
	assert.Equal(t, StatusNotConnected, rec.Status)
	assert.Zero(t, rec.TotalSent)
	assert.Zero(t, rec.DailyLimit)
	assert.True(t, rec.Price.IsZero())
}

func TestNormalize_ClientNameMultiValued(t *testing.T) {
	rec := Normalize(RawAccount{"clientName": []any{"", "Globex", "Initech"}})
	assert.Equal(t, "Globex", rec.ClientName)

	rec = Normalize(RawAccount{"clientName": []any{}})
	assert.Equal(t, UnknownClient, rec.ClientName)

	rec = Normalize(RawAccount{"clientName": 42.0})
	assert.Equal(t, UnknownClient, rec.ClientName)
}

func TestNormalize_CoercesNumbers(t *testing.T) {
	rec := Normalize(RawAccount{
		"totalSent":        "120",
		"totalReplied":     "abc",
		"totalBounced":     math.NaN(),
		"dailyLimit":       math.Inf(1),
		"volumePerAccount": 30.0,
		"price":            "3.505",
	})

	assert.Equal(t, int64(120), rec.TotalSent)
	assert.Zero(t, rec.TotalReplied)
	assert.Zero(t, rec.TotalBounced)
	assert.Zero(t, rec.DailyLimit)
	assert.Equal(t, 30.0, rec.VolumePerAccount)
	assert.True(t, decimal.RequireFromString("3.505").Equal(rec.Price))
}

func TestNormalize_NegativeCountersBecomeZero(t *testing.T) {
	rec := Normalize(RawAccount{"totalSent": -5.0})
	assert.Zero(t, rec.TotalSent)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusConnected, ParseStatus("connected"))
	assert.Equal(t, StatusDisconnected, ParseStatus("Disconnected"))
	assert.Equal(t, StatusFailed, ParseStatus("FAILED"))
	assert.Equal(t, StatusNotConnected, ParseStatus("Not Connected"))
	assert.Equal(t, StatusNotConnected, ParseStatus("weird"))
}

func TestDecodeRawAccount(t *testing.T) {
	raw, err := DecodeRawAccount([]byte(`{"email":"x@y.io","totalSent":75,"provider":"Acme","clientName":["Globex"]}`))
	require.NoError(t, err)

	rec := Normalize(raw)
	assert.Equal(t, int64(75), rec.TotalSent)
	assert.Equal(t, "Acme", rec.Provider)
	assert.Equal(t, "Globex", rec.ClientName)

	_, err = DecodeRawAccount([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDecodeRawAccounts_SkipsMalformedRows(t *testing.T) {
	records, skipped := DecodeRawAccounts([][]byte{
		[]byte(`{"email":"a@x.io","totalSent":10}`),
		[]byte(`"not an object"`),
		[]byte(`{"email":"b@x.io"}`),
		[]byte(`{broken`),
		[]byte(`null`),
	})

	require.Len(t, records, 2)
	assert.Equal(t, "a@x.io", Normalize(records[0]).Email)
	assert.Equal(t, "b@x.io", Normalize(records[1]).Email)
	assert.Equal(t, []int{1, 3, 4}, skipped)
}

func TestDecodeRawAccounts_AllValid(t *testing.T) {
	records, skipped := DecodeRawAccounts([][]byte{[]byte(`{}`)})
	assert.Len(t, records, 1)
	assert.Empty(t, skipped)
}

func TestPercent_ZeroDenominator(t *testing.T) {
	assert.Zero(t, Percent(10, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
}
