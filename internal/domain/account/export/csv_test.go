package export

import (
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
)

func parse(t *testing.T, out string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestToCSV_RoundTripsAccounts(t *testing.T) {
	records := []entity.AccountRecord{
		{
			Email: "jane@globex.com", DisplayName: "Jane Doe", DomainName: "globex.com",
			ClientName: "Globex", Provider: "Acme", Reseller: "R1", AccountType: "Google",
			Status: entity.StatusConnected, DailyLimit: 30, VolumePerAccount: 50,
			Price: decimal.RequireFromString("3.5"), TotalSent: 200, TotalReplied: 10, TotalBounced: 2,
		},
		{
			Email: "bob@initech.io", DisplayName: "Bob", DomainName: "initech.io",
			ClientName: "Initech", Provider: "Unknown", Reseller: "Unknown", AccountType: "Unknown",
			Status: entity.StatusFailed, Price: decimal.RequireFromString("1.005"),
		},
	}

	rows := parse(t, ToCSV(records, AccountColumns))
	require.Len(t, rows, 3)
	assert.Equal(t, "Email", rows[0][0])
	assert.Len(t, rows[0], len(AccountColumns))

	assert.Equal(t, []string{
		"jane@globex.com", "Jane Doe", "globex.com", "Globex", "Acme", "R1", "Google", "Connected",
		"30", "50", "3.50", "200", "10", "2", "5.00",
	}, rows[1])
	assert.Equal(t, "1.01", rows[2][10])
	assert.Equal(t, "0.00", rows[2][14])
}

func TestToCSV_QuotesEveryField(t *testing.T) {
	out := ToCSV([]entity.AccountRecord{{Email: "a@b.c"}}, AccountColumns[:2])
	assert.Equal(t, "\"Email\",\"Display Name\"\n\"a@b.c\",\"\"\n", out)
}

func TestToCSV_EscapesQuotesAndNewlines(t *testing.T) {
	records := []entity.AccountRecord{{Email: "x@y.z", DisplayName: "The \"Boss\"\nSecond line, with comma"}}

	out := ToCSV(records, AccountColumns[:2])
	assert.Contains(t, out, `"The ""Boss""`)

	rows := parse(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "The \"Boss\"\nSecond line, with comma", rows[1][1])
}

func TestToCSV_Aggregates(t *testing.T) {
	groups := []entity.GroupAggregate{{
		Key: "Acme", AccountCount: 3, TotalSent: 240, TotalReplied: 15,
		OverallReplyRate: 6.25, WeightedReplyRate: 5, TotalPrice: decimal.RequireFromString("12"),
	}}

	rows := parse(t, ToCSV(groups, AggregateColumns))
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[1][0])
	assert.Equal(t, "6.25", rows[1][6])
	assert.Equal(t, "5.00", rows[1][7])
	assert.Equal(t, "12.00", rows[1][14])
}

func TestToCSV_FractionalVolumesRoundTrip(t *testing.T) {
	records := []entity.AccountRecord{{Email: "w@warm.io", DailyLimit: 12.5, VolumePerAccount: 37.25}}

	rows := parse(t, ToCSV(records, AccountColumns))
	require.Len(t, rows, 2)
	assert.Equal(t, "12.5", rows[1][8])
	assert.Equal(t, "37.25", rows[1][9])

	clients := []entity.ClientCapacity{{
		ClientName: "Warm", MaxSendingVolume: 1000.5, AvailableSending: 400.25,
		DailyTarget: 500, Shortfall: 99.75,
	}}

	rows = parse(t, ToCSV(clients, CapacityColumns))
	require.Len(t, rows, 2)
	for col, want := range map[int]float64{4: 1000.5, 5: 400.25, 8: 99.75} {
		got, err := strconv.ParseFloat(rows[1][col], 64)
		require.NoError(t, err)
		assert.Equal(t, want, got, CapacityColumns[col].Header)
	}
	assert.Equal(t, "500", rows[1][6])
}

func TestToCSV_EmptyRows(t *testing.T) {
	rows := parse(t, ToCSV([]entity.ClientCapacity{}, CapacityColumns))
	require.Len(t, rows, 1)
	assert.Equal(t, "Client", rows[0][0])
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 7, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, "capacity_2026-03-07.csv", Filename("capacity", now))
}
