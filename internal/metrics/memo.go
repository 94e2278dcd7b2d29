package metrics

import "github.com/prometheus/client_golang/prometheus"

// MemoStats reports cumulative memo hits and misses
type MemoStats interface {
	Stats() (hits, misses uint64)
}

// RegisterMemoMetrics exposes report memo effectiveness as counters
func RegisterMemoMetrics(reg prometheus.Registerer, memo MemoStats) {
	reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "analytics_memo_hits_total",
			Help: "Report computations served from the memo",
		}, func() float64 {
			hits, _ := memo.Stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "analytics_memo_misses_total",
			Help: "Report computations that had to run",
		}, func() float64 {
			_, misses := memo.Stats()
			return float64(misses)
		}),
	)
}
