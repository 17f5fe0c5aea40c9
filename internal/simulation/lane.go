package simulation

import (
	"github.com/iwvelando/signal-timing/internal/traffic"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/iwvelando/signal-timing/pkg/mathutil"
	"github.com/samber/lo"
)

// LaneTiming is one lane's slice of its approach's green, converted into
// per-cycle arrivals and per-cycle discharge capacity.
type LaneTiming struct {
	Share           float64
	GreenSeconds    float64
	ServicePerCycle float64
	ArrivalPerCycle float64
	Saturation      float64
}

// LaneSimulation is the unrounded outcome of simulating one lane.
type LaneSimulation struct {
	AvgDelay           float64
	AvgQueue           float64
	MaxQueue           float64
	ThroughputPerHour  float64
	DemandRate         float64
	CapacityRate       float64
	VolumeToCapacity   float64
	QueueEnd           float64
	WaitVehicleSeconds float64
}

// LanePressure weighs a lane's arrivals and starting queue for green splits.
func LanePressure(lane traffic.Lane) float64 {
	return lane.ArrivalRate() + float64(lane.VehicleCount)*constants.LaneQueueWeight
}

// AllocateLaneShares splits directionGreen across lanes by pressure. When no
// lane has any pressure the split is uniform.
func AllocateLaneShares(lanes []traffic.Lane, directionGreen, cycleLength float64) []LaneTiming {
	if len(lanes) == 0 {
		return nil
	}

	pressures := lo.Map(lanes, func(lane traffic.Lane, _ int) float64 { return LanePressure(lane) })
	totalPressure := lo.Sum(pressures)

	timings := make([]LaneTiming, len(lanes))
	for i, lane := range lanes {
		share := 1 / float64(len(lanes))
		if totalPressure > 0 {
			share = pressures[i] / totalPressure
		}
		greenSeconds := directionGreen * share
		saturation := lane.Saturation()
		timings[i] = LaneTiming{
			Share:           share,
			GreenSeconds:    greenSeconds,
			ServicePerCycle: (saturation * greenSeconds * constants.DischargeEfficiency) / constants.SecondsPerHour,
			ArrivalPerCycle: (lane.ArrivalRate() / constants.SecondsPerHour) * cycleLength,
			Saturation:      saturation,
		}
	}
	return timings
}

// SimulateLane runs a deterministic cycle-by-cycle queue for horizonCycles
// cycles. Each cycle the queue grows by the cycle's arrivals and drains by at
// most the cycle's service capacity. Waiting time is the trapezoidal area
// under the queue curve.
func SimulateLane(lane traffic.Lane, timing LaneTiming, cycleLength float64, horizonCycles int) LaneSimulation {
	queue := float64(lane.VehicleCount)
	maxQueue := queue
	totalWait := 0.0
	totalDeparted := 0.0
	queueSum := 0.0

	for cycle := 0; cycle < horizonCycles; cycle++ {
		queueStart := queue
		demand := queueStart + timing.ArrivalPerCycle
		discharged := mathutil.Min(demand, timing.ServicePerCycle)

		queue = mathutil.Max(demand-discharged, 0)
		totalDeparted += discharged
		maxQueue = mathutil.Max(maxQueue, queue)

		totalWait += ((queueStart + queue) / 2) * cycleLength
		queueSum += queue
	}

	result := LaneSimulation{
		MaxQueue:           maxQueue,
		QueueEnd:           queue,
		WaitVehicleSeconds: totalWait,
		VolumeToCapacity:   constants.UnservedVolumeToCapacity,
	}
	if totalDeparted > 0 {
		result.AvgDelay = totalWait / totalDeparted
	}
	if horizonCycles > 0 {
		result.AvgQueue = queueSum / float64(horizonCycles)
		result.ThroughputPerHour = totalDeparted * (constants.SecondsPerHour / (cycleLength * float64(horizonCycles)))
	}
	result.DemandRate = timing.ArrivalPerCycle * (constants.SecondsPerHour / cycleLength)
	result.CapacityRate = timing.ServicePerCycle * (constants.SecondsPerHour / cycleLength)
	if result.CapacityRate > 0 {
		result.VolumeToCapacity = result.DemandRate / result.CapacityRate
	}
	return result
}
