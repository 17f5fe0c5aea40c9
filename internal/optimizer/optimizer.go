// Package optimizer derives a signal timing plan from approach demand using
// Webster's optimal cycle formula and a constrained proportional green split.
package optimizer

import (
	"math"
	"sort"

	"github.com/iwvelando/signal-timing/internal/traffic"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/iwvelando/signal-timing/pkg/mathutil"
	"github.com/iwvelando/signal-timing/pkg/optimization"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Options tunes the optimizer.
type Options struct {
	Allocation optimization.Allocation
}

// Runner optimizes one normalized configuration.
type Runner struct {
	logger  *zap.Logger
	conf    traffic.Configuration
	options Options
}

// Result is the proposed timing plan and the values that produced it.
type Result struct {
	Plan        traffic.TimingPlan
	Diagnostics optimization.Diagnostics
}

type approach struct {
	dir    traffic.Direction
	demand float64
}

// NewRunner constructs a Runner. The configuration is expected to be
// normalized; it is copied and never modified.
func NewRunner(logger *zap.Logger, conf traffic.Configuration, options Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Allocation == "" {
		options.Allocation = optimization.AllocationSequential
	}
	return &Runner{logger: logger, conf: conf.Clone(), options: options}
}

// Optimize is shorthand for NewRunner(...).Run().
func Optimize(logger *zap.Logger, conf traffic.Configuration, options Options) Result {
	return NewRunner(logger, conf, options).Run()
}

// DirectionDemand is an approach's demand: hourly arrivals plus a weight per
// queued vehicle, summed over its lanes.
func DirectionDemand(lanes []traffic.Lane) float64 {
	return lo.SumBy(lanes, func(lane traffic.Lane) float64 {
		return lane.ArrivalRate() + float64(lane.VehicleCount)*constants.DirectionQueueWeight
	})
}

// CriticalRatio is demand over inflated base capacity, or 0 without capacity.
func CriticalRatio(lanes []traffic.Lane) float64 {
	capacity := lo.SumBy(lanes, func(lane traffic.Lane) float64 {
		return lane.Saturation()
	})
	if capacity <= 0 {
		return 0
	}
	return DirectionDemand(lanes) / (capacity * constants.CapacityHeadroom)
}

// WebsterCycle returns the bounded Webster cycle for the given lost time and
// summed critical ratio, before clamping to the cycle range.
func WebsterCycle(lostTime, criticalRatioSum float64) float64 {
	denominator := mathutil.Max(1-mathutil.Min(criticalRatioSum, constants.MaxCriticalRatioSum), constants.MinCycleDenominator)
	return (1.5*lostTime + 5) / denominator
}

// Run computes the optimized plan.
func (r *Runner) Run() Result {
	approaches := make([]approach, 0, len(traffic.Directions))
	totalCriticalRatio := 0.0
	yellowSum := 0.0
	for _, dir := range traffic.Directions {
		lanes := r.conf.Lanes[dir]
		approaches = append(approaches, approach{dir: dir, demand: DirectionDemand(lanes)})
		totalCriticalRatio += CriticalRatio(lanes)
		yellowSum += r.currentYellow(dir)
	}

	phases := float64(len(traffic.Directions))
	lostTime := (yellowSum/phases + constants.LostTimeExtra) * phases

	cycleLength := mathutil.Clamp(
		mathutil.RoundHalfUp(WebsterCycle(lostTime, totalCriticalRatio)),
		constants.MinCycleLength,
		constants.MaxCycleLength,
	)
	usableGreen := mathutil.Max(cycleLength-mathutil.RoundHalfUp(lostTime), phases*constants.MinGreen)

	var greens map[traffic.Direction]float64
	switch r.options.Allocation {
	case optimization.AllocationLargestRemainder:
		greens = allocateLargestRemainder(approaches, usableGreen)
	default:
		greens = allocateSequential(approaches, usableGreen)
	}

	plan := traffic.TimingPlan{
		SignalTiming: make(map[traffic.Direction]traffic.SignalTiming, len(approaches)),
		CycleLength:  cycleLength,
	}
	demand := make(map[string]int, len(approaches))
	for _, a := range approaches {
		green := greens[a.dir]
		yellow := mathutil.Clamp(mathutil.RoundHalfUp(r.currentYellow(a.dir)), constants.MinYellow, constants.MaxYellow)
		plan.SignalTiming[a.dir] = traffic.SignalTiming{
			Green:  green,
			Yellow: yellow,
			Red:    mathutil.Max(cycleLength-green-yellow, constants.MinRed),
		}
		demand[string(a.dir)] = mathutil.RoundInt(a.demand)
	}

	diagnostics := optimization.Diagnostics{
		TotalCriticalRatio: mathutil.Round(totalCriticalRatio, 2),
		UsableGreen:        usableGreen,
		LostTime:           mathutil.Round(lostTime, 1),
		DirectionalDemand:  demand,
		Allocation:         r.options.Allocation,
	}

	r.logger.Debug("optimized signal timing",
		zap.String("op", "optimizer.Run"),
		zap.String("allocation", string(r.options.Allocation)),
		zap.Float64("criticalRatioSum", totalCriticalRatio),
		zap.Float64("lostTime", lostTime),
		zap.Float64("cycleLength", cycleLength),
		zap.Float64("usableGreen", usableGreen),
	)

	return Result{Plan: plan, Diagnostics: diagnostics}
}

func (r *Runner) currentYellow(dir traffic.Direction) float64 {
	yellow := r.conf.SignalTiming[dir].Yellow
	if yellow == 0 {
		return constants.MinYellow
	}
	return yellow
}

func demandWeights(approaches []approach) []float64 {
	total := lo.SumBy(approaches, func(a approach) float64 { return a.demand })
	return lo.Map(approaches, func(a approach, _ int) float64 {
		if total <= 0 {
			return 1 / float64(len(approaches))
		}
		return a.demand / total
	})
}

// allocateSequential splits usable green proportionally in fixed approach
// order. Each approach is clamped so every later one can still get the
// minimum green; under heavily skewed demand this favors later approaches.
func allocateSequential(approaches []approach, usableGreen float64) map[traffic.Direction]float64 {
	weights := demandWeights(approaches)
	greens := make(map[traffic.Direction]float64, len(approaches))
	allocated := 0.0
	for i, a := range approaches {
		proposed := mathutil.Max(mathutil.RoundHalfUp(usableGreen*weights[i]), constants.MinGreen)
		remaining := float64(len(approaches) - i - 1)
		maxCurrent := usableGreen - allocated - remaining*constants.MinGreen
		green := mathutil.Clamp(proposed, constants.MinGreen, mathutil.Max(maxCurrent, constants.MinGreen))
		greens[a.dir] = green
		allocated += green
	}
	return greens
}

// allocateLargestRemainder reserves the minimum green for every approach and
// splits the whole seconds left over by demand share. Seconds lost to
// flooring go to the largest fractional parts, ties resolved in approach order.
func allocateLargestRemainder(approaches []approach, usableGreen float64) map[traffic.Direction]float64 {
	weights := demandWeights(approaches)
	spare := math.Floor(usableGreen - float64(len(approaches))*constants.MinGreen)
	if spare < 0 {
		spare = 0
	}

	base := make([]float64, len(approaches))
	fractions := make([]float64, len(approaches))
	assigned := 0.0
	for i := range approaches {
		exact := spare * weights[i]
		base[i] = math.Floor(exact)
		fractions[i] = exact - base[i]
		assigned += base[i]
	}

	order := make([]int, len(approaches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fractions[order[a]] > fractions[order[b]]
	})
	leftover := int(spare - assigned)
	for k := 0; k < leftover && k < len(order); k++ {
		base[order[k]]++
	}

	greens := make(map[traffic.Direction]float64, len(approaches))
	for i, a := range approaches {
		greens[a.dir] = constants.MinGreen + base[i]
	}
	return greens
}
