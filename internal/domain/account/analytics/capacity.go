package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
)

// PlanCapacity compares each client's maximum and currently available sending
// capacity with its daily target. Clients without a target get 0.
// Result is sorted by maximum sending volume, largest first.
func PlanCapacity(records []entity.AccountRecord, targets map[string]int64) []entity.ClientCapacity {
	keys, groups := GroupBy(records,
		func(r entity.AccountRecord) string { return r.ClientName },
		func(name string) entity.ClientCapacity {
			return entity.ClientCapacity{ClientName: name, TotalPrice: decimal.Zero}
		},
		func(c entity.ClientCapacity, r entity.AccountRecord) entity.ClientCapacity {
			c.AccountCount++
			if r.IsConnected() {
				c.ConnectedCount++
			}
			c.TotalPrice = c.TotalPrice.Add(r.Price)
			c.MaxSendingVolume += r.VolumePerAccount
			c.AvailableSending += r.DailyLimit
			return c
		},
	)

	out := make([]entity.ClientCapacity, 0, len(keys))
	for _, c := range Ordered(keys, groups) {
		if c.AccountCount == 0 {
			continue
		}
		out = append(out, applyTarget(c, targets[c.ClientName]))
	}

	slices.SortStableFunc(out, func(a, b entity.ClientCapacity) int {
		return cmp.Compare(b.MaxSendingVolume, a.MaxSendingVolume)
	})
	return out
}

func applyTarget(c entity.ClientCapacity, target int64) entity.ClientCapacity {
	if target < 0 {
		target = 0
	}
	c.DailyTarget = target
	c.UtilizationPercentage = entity.Percent(c.AvailableSending, c.MaxSendingVolume)
	c.Shortfall = math.Max(0, float64(target)-c.AvailableSending)
	c.ShortfallPercentage = entity.Percent(c.Shortfall, c.MaxSendingVolume)
	return c
}

// CapacityTotals sums the plan across clients
type CapacityTotals struct {
	MaxSendingVolume      float64 `json:"max_sending_volume"`
	AvailableSending      float64 `json:"available_sending"`
	DailyTarget           int64   `json:"daily_target"`
	Shortfall             float64 `json:"shortfall"`
	InsufficientClients   int     `json:"insufficient_clients"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
}

// TotalCapacity sums a capacity plan
func TotalCapacity(plan []entity.ClientCapacity) CapacityTotals {
	var t CapacityTotals
	for _, c := range plan {
		t.MaxSendingVolume += c.MaxSendingVolume
		t.AvailableSending += c.AvailableSending
		t.DailyTarget += c.DailyTarget
		t.Shortfall += c.Shortfall
		if c.Band() == entity.BandInsufficient {
			t.InsufficientClients++
		}
	}
	t.UtilizationPercentage = entity.Percent(t.AvailableSending, t.MaxSendingVolume)
	return t
}
