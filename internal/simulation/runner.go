// Package simulation runs the intersection queue model under the current
// signal timing and under an optimized plan, and compares the two.
package simulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/signal-timing/internal/optimizer"
	"github.com/iwvelando/signal-timing/internal/traffic"
	"github.com/iwvelando/signal-timing/pkg/optimization"
	"go.uber.org/zap"
)

// Result is one complete before/after comparison. It is never modified after
// Run returns it.
type Result struct {
	ID           string                   `json:"id"`
	Timestamp    time.Time                `json:"timestamp"`
	Config       RunConfig                `json:"config"`
	Before       Pass                     `json:"before"`
	After        Pass                     `json:"after"`
	Improvements Improvements             `json:"improvements"`
	Optimization optimization.Diagnostics `json:"optimization"`
}

// RunConfig records the normalized lanes together with both timing plans.
type RunConfig struct {
	Lanes     map[traffic.Direction][]traffic.Lane `json:"lanes"`
	Original  traffic.TimingPlan                   `json:"original"`
	Optimized traffic.TimingPlan                   `json:"optimized"`
}

// Pass holds the metrics of one simulated timing plan.
type Pass struct {
	PerDirection map[traffic.Direction]DirectionMetrics `json:"perDirection"`
	Aggregate    AggregateMetrics                       `json:"aggregate"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the source of result timestamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithIDGenerator overrides the source of result IDs.
func WithIDGenerator(newID func() string) Option {
	return func(r *Runner) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// WithOptimizerOptions sets the options passed to the timing optimizer.
func WithOptimizerOptions(options optimizer.Options) Option {
	return func(r *Runner) {
		r.optimizerOptions = options
	}
}

// Runner orchestrates a simulation run. It keeps no per-run state, so one
// Runner may serve concurrent Run calls.
type Runner struct {
	logger           *zap.Logger
	clock            func() time.Time
	newID            func() string
	optimizerOptions optimizer.Options
}

// NewRunner returns a Runner with the given options applied.
func NewRunner(logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunSimulation runs raw with a default Runner.
func RunSimulation(raw traffic.RawConfig) Result {
	return NewRunner(nil).Run(raw)
}

// Run normalizes raw, simulates the current plan, optimizes, simulates the
// optimized plan and compares both passes. It never fails: invalid input is
// sanitized by normalization.
func (r *Runner) Run(raw traffic.RawConfig) Result {
	conf := traffic.Normalize(raw)

	before := SimulatePass(conf.Lanes, conf.Plan())
	r.logger.Debug("simulated current timing",
		zap.String("op", "simulation.Run"),
		zap.Float64("cycleLength", conf.CycleLength),
		zap.Float64("avgDelay", before.Aggregate.AvgDelay),
		zap.Int("totalQueue", before.Aggregate.TotalQueue),
	)

	optimized := optimizer.Optimize(r.logger, conf, r.optimizerOptions)

	after := SimulatePass(conf.Lanes, optimized.Plan)
	r.logger.Debug("simulated optimized timing",
		zap.String("op", "simulation.Run"),
		zap.Float64("cycleLength", optimized.Plan.CycleLength),
		zap.Float64("avgDelay", after.Aggregate.AvgDelay),
		zap.Int("totalQueue", after.Aggregate.TotalQueue),
	)

	result := Result{
		ID:        r.newID(),
		Timestamp: r.clock(),
		Config: RunConfig{
			Lanes:     conf.Clone().Lanes,
			Original:  conf.Plan(),
			Optimized: optimized.Plan.Clone(),
		},
		Before:       before,
		After:        after,
		Improvements: Compare(before.Aggregate, after.Aggregate),
		Optimization: optimized.Diagnostics,
	}

	r.logger.Info("simulation completed",
		zap.String("op", "simulation.Run"),
		zap.String("id", result.ID),
		zap.Float64("originalCycle", result.Config.Original.CycleLength),
		zap.Float64("optimizedCycle", result.Config.Optimized.CycleLength),
		zap.Int("delayReduction", result.Improvements.DelayReduction),
		zap.Int("throughputIncrease", result.Improvements.ThroughputIncrease),
	)
	return result
}

// SimulatePass simulates every approach under plan and aggregates the result.
func SimulatePass(lanes map[traffic.Direction][]traffic.Lane, plan traffic.TimingPlan) Pass {
	perDirection := make(map[traffic.Direction]DirectionMetrics, len(traffic.Directions))
	for _, dir := range traffic.Directions {
		perDirection[dir] = SimulateDirection(lanes[dir], plan.SignalTiming[dir], plan.CycleLength)
	}
	return Pass{
		PerDirection: perDirection,
		Aggregate:    Aggregate(perDirection),
	}
}
