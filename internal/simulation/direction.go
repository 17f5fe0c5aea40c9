package simulation

import (
	"github.com/iwvelando/signal-timing/internal/traffic"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/iwvelando/signal-timing/pkg/mathutil"
	"github.com/samber/lo"
)

// LaneMetrics is the rounded per-lane outcome reported for one pass.
type LaneMetrics struct {
	LaneType           traffic.LaneType `json:"laneType"`
	Density            traffic.Density  `json:"density"`
	InitialVehicles    int              `json:"initialVehicles"`
	GreenShare         float64          `json:"greenShare"`
	AvgDelay           float64          `json:"avgDelay"`
	AvgQueue           float64          `json:"avgQueue"`
	MaxQueue           float64          `json:"maxQueue"`
	Throughput         float64          `json:"throughput"`
	DemandRate         float64          `json:"demandRate"`
	VolumeToCapacity   float64          `json:"volumeToCapacity"`
	QueueEnd           float64          `json:"queueEnd"`
	WaitVehicleSeconds float64          `json:"waitVehicleSeconds"`
}

// DirectionMetrics rolls an approach's lanes up into approach-level scores.
type DirectionMetrics struct {
	AvgDelay           float64              `json:"avgDelay"`
	QueueLength        int                  `json:"queueLength"`
	Throughput         int                  `json:"throughput"`
	CongestionIndex    int                  `json:"congestionIndex"`
	LoadBalanceScore   int                  `json:"loadBalanceScore"`
	TotalVehicles      int                  `json:"totalVehicles"`
	DemandRate         int                  `json:"demandRate"`
	WaitVehicleSeconds int                  `json:"waitVehicleSeconds"`
	LaneBreakdown      []LaneMetrics        `json:"laneBreakdown"`
	Timing             traffic.SignalTiming `json:"timing"`
	CycleLength        float64              `json:"cycleLength"`
}

// SimulateDirection splits the approach's green across its lanes, simulates
// every lane over the fixed horizon and rolls the lanes up. An approach
// without lanes yields zero metrics.
func SimulateDirection(lanes []traffic.Lane, timing traffic.SignalTiming, cycleLength float64) DirectionMetrics {
	metrics := DirectionMetrics{
		LaneBreakdown: []LaneMetrics{},
		Timing:        timing,
		CycleLength:   cycleLength,
	}
	if len(lanes) == 0 {
		return metrics
	}

	laneTimings := AllocateLaneShares(lanes, timing.Green, cycleLength)
	breakdown := make([]LaneMetrics, len(lanes))
	for i, lane := range lanes {
		sim := SimulateLane(lane, laneTimings[i], cycleLength, constants.HorizonCycles)
		breakdown[i] = LaneMetrics{
			LaneType:           lane.LaneType,
			Density:            lane.Density,
			InitialVehicles:    lane.VehicleCount,
			GreenShare:         mathutil.Round(laneTimings[i].Share*constants.PercentageMultiplier, 1),
			AvgDelay:           mathutil.Round(sim.AvgDelay, 1),
			AvgQueue:           mathutil.Round(sim.AvgQueue, 1),
			MaxQueue:           mathutil.Round(sim.MaxQueue, 1),
			Throughput:         mathutil.Round(sim.ThroughputPerHour, 1),
			DemandRate:         mathutil.Round(sim.DemandRate, 1),
			VolumeToCapacity:   mathutil.Round(sim.VolumeToCapacity, 2),
			QueueEnd:           mathutil.Round(sim.QueueEnd, 1),
			WaitVehicleSeconds: sim.WaitVehicleSeconds,
		}
	}

	totalDemandRate := lo.SumBy(breakdown, func(l LaneMetrics) float64 { return l.DemandRate })
	totalThroughput := lo.SumBy(breakdown, func(l LaneMetrics) float64 { return l.Throughput })
	totalInitial := lo.SumBy(breakdown, func(l LaneMetrics) int { return l.InitialVehicles })
	totalQueueEnd := lo.SumBy(breakdown, func(l LaneMetrics) float64 { return l.QueueEnd })
	totalWait := lo.SumBy(breakdown, func(l LaneMetrics) float64 { return l.WaitVehicleSeconds })

	// Throughput is hourly, so convert it back to vehicles served over the horizon.
	avgDelay := 0.0
	if totalThroughput > 0 {
		horizonHours := float64(constants.HorizonCycles) * cycleLength / constants.SecondsPerHour
		avgDelay = totalWait / (totalThroughput * horizonHours)
	}

	meanVolumeToCapacity := mathutil.Mean(lo.Map(breakdown, func(l LaneMetrics, _ int) float64 { return l.VolumeToCapacity }))
	queueCV := mathutil.CoefficientOfVariation(lo.Map(breakdown, func(l LaneMetrics, _ int) float64 { return l.AvgQueue }))
	vcCV := mathutil.CoefficientOfVariation(lo.Map(breakdown, func(l LaneMetrics, _ int) float64 { return l.VolumeToCapacity }))

	queuePressure := 0.0
	if totalInitial > 0 {
		queuePressure = totalQueueEnd / float64(totalInitial)
	}

	metrics.AvgDelay = mathutil.Round(avgDelay, 1)
	metrics.QueueLength = mathutil.RoundInt(totalQueueEnd)
	metrics.Throughput = mathutil.RoundInt(totalThroughput)
	metrics.CongestionIndex = CongestionIndex(meanVolumeToCapacity, avgDelay, queuePressure)
	metrics.LoadBalanceScore = LoadBalanceScore(queueCV, vcCV)
	metrics.TotalVehicles = totalInitial
	metrics.DemandRate = mathutil.RoundInt(totalDemandRate)
	metrics.WaitVehicleSeconds = mathutil.RoundInt(totalWait)
	metrics.LaneBreakdown = breakdown
	return metrics
}

// CongestionIndex blends V/C (50 points), delay (30 points) and queue
// pressure (20 points per unit, capped at 2) into a 0-100 score.
func CongestionIndex(meanVolumeToCapacity, avgDelay, queuePressure float64) int {
	score := (mathutil.Min(meanVolumeToCapacity, constants.VolumeToCapacityCap)/constants.VolumeToCapacityCap)*50 +
		(mathutil.Min(avgDelay, constants.DelayCap)/constants.DelayCap)*30 +
		mathutil.Min(queuePressure, constants.QueuePressureCap)*20
	return mathutil.ClampInt(mathutil.RoundInt(score), 0, 100)
}

// LoadBalanceScore is 100 for lanes that drain evenly, reduced by the
// dispersion of lane queues and lane V/C ratios.
func LoadBalanceScore(queueCV, volumeToCapacityCV float64) int {
	score := 100 - ((queueCV * 50) + (volumeToCapacityCV * 50))
	return mathutil.ClampInt(mathutil.RoundInt(score), 0, 100)
}
