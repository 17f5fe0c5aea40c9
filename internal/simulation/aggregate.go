package simulation

import (
	"github.com/iwvelando/signal-timing/internal/traffic"
	"github.com/iwvelando/signal-timing/pkg/mathutil"
	"github.com/samber/lo"
)

// AggregateMetrics summarizes a whole intersection for one pass.
type AggregateMetrics struct {
	AvgDelay                float64 `json:"avgDelay"`
	TotalQueue              int     `json:"totalQueue"`
	TotalThroughput         int     `json:"totalThroughput"`
	AvgCongestion           int     `json:"avgCongestion"`
	AvgLoadBalance          int     `json:"avgLoadBalance"`
	TotalWaitVehicleSeconds int     `json:"totalWaitVehicleSeconds"`
	DemandRate              int     `json:"demandRate"`
}

// Improvements are whole-percent changes from the original plan to the
// optimized one. Positive values are always better: delay, queue,
// congestion and wait improve when they fall, throughput and load balance
// when they rise.
type Improvements struct {
	DelayReduction         int `json:"delayReduction"`
	QueueReduction         int `json:"queueReduction"`
	ThroughputIncrease     int `json:"throughputIncrease"`
	CongestionReduction    int `json:"congestionReduction"`
	WaitTimeReduction      int `json:"waitTimeReduction"`
	LoadBalanceImprovement int `json:"loadBalanceImprovement"`
}

// Aggregate combines per-direction metrics. Delay is weighted by each
// approach's initial vehicle count; congestion and load balance are plain
// means over the four approaches.
func Aggregate(perDirection map[traffic.Direction]DirectionMetrics) AggregateMetrics {
	metrics := lo.Map(traffic.Directions, func(dir traffic.Direction, _ int) DirectionMetrics {
		return perDirection[dir]
	})

	totalVehicles := lo.SumBy(metrics, func(m DirectionMetrics) int { return m.TotalVehicles })
	weightedDelay := lo.SumBy(metrics, func(m DirectionMetrics) float64 {
		return m.AvgDelay * float64(m.TotalVehicles)
	})
	phases := float64(len(metrics))

	return AggregateMetrics{
		AvgDelay:                mathutil.Round(weightedDelay/float64(max(totalVehicles, 1)), 1),
		TotalQueue:              lo.SumBy(metrics, func(m DirectionMetrics) int { return m.QueueLength }),
		TotalThroughput:         lo.SumBy(metrics, func(m DirectionMetrics) int { return m.Throughput }),
		AvgCongestion:           mathutil.RoundInt(float64(lo.SumBy(metrics, func(m DirectionMetrics) int { return m.CongestionIndex })) / phases),
		AvgLoadBalance:          mathutil.RoundInt(float64(lo.SumBy(metrics, func(m DirectionMetrics) int { return m.LoadBalanceScore })) / phases),
		TotalWaitVehicleSeconds: lo.SumBy(metrics, func(m DirectionMetrics) int { return m.WaitVehicleSeconds }),
		DemandRate:              lo.SumBy(metrics, func(m DirectionMetrics) int { return m.DemandRate }),
	}
}

// Compare computes the improvements of after over before.
func Compare(before, after AggregateMetrics) Improvements {
	return Improvements{
		DelayReduction:         mathutil.PercentChange(before.AvgDelay, after.AvgDelay, true),
		QueueReduction:         mathutil.PercentChange(float64(before.TotalQueue), float64(after.TotalQueue), true),
		ThroughputIncrease:     mathutil.PercentChange(float64(before.TotalThroughput), float64(after.TotalThroughput), false),
		CongestionReduction:    mathutil.PercentChange(float64(before.AvgCongestion), float64(after.AvgCongestion), true),
		WaitTimeReduction:      mathutil.PercentChange(float64(before.TotalWaitVehicleSeconds), float64(after.TotalWaitVehicleSeconds), true),
		LoadBalanceImprovement: mathutil.PercentChange(float64(before.AvgLoadBalance), float64(after.AvgLoadBalance), false),
	}
}
