package traffic

import (
	"github.com/iwvelando/signal-timing/pkg/coerce"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/iwvelando/signal-timing/pkg/mathutil"
)

// Normalize produces a fully valid configuration from arbitrary input. It
// never fails: anything missing or malformed falls back to a default.
//
// For every approach the result satisfies green+yellow+red == cycleLength,
// green in [8,130], yellow in [3,8], red >= 1, with cycleLength in [48,170].
func Normalize(raw RawConfig) Configuration {
	cycleLength := mathutil.Clamp(
		coerce.Number(raw.CycleLength, constants.DefaultCycleLength),
		constants.MinCycleLength,
		constants.MaxCycleLength,
	)

	conf := Configuration{
		Lanes:        make(map[Direction][]Lane, len(Directions)),
		SignalTiming: make(map[Direction]SignalTiming, len(Directions)),
		CycleLength:  cycleLength,
	}
	for _, dir := range Directions {
		conf.Lanes[dir] = normalizeLanes(raw.lanesFor(dir))
		conf.SignalTiming[dir] = NormalizeTiming(raw.timingFor(dir), cycleLength)
	}
	return conf
}

// Normalized re-applies Normalize to an already typed configuration.
func (c Configuration) Normalized() Configuration {
	return Normalize(c.Raw())
}

func normalizeLanes(raw []RawLane) []Lane {
	if len(raw) == 0 {
		return []Lane{{VehicleCount: 0, LaneType: Straight, Density: Low}}
	}
	if len(raw) > constants.MaxLanesPerDirection {
		raw = raw[:constants.MaxLanesPerDirection]
	}

	lanes := make([]Lane, 0, len(raw))
	for _, r := range raw {
		lanes = append(lanes, NormalizeLane(r))
	}
	return lanes
}

// NormalizeLane sanitizes a single lane.
func NormalizeLane(raw RawLane) Lane {
	count := mathutil.RoundInt(coerce.Number(raw.VehicleCount, 0))
	lane := Lane{
		VehicleCount: mathutil.ClampInt(count, 0, constants.MaxVehiclesPerLane),
		LaneType:     Straight,
		Density:      Moderate,
	}
	if s, ok := coerce.String(raw.LaneType); ok && LaneType(s).Valid() {
		lane.LaneType = LaneType(s)
	}
	if s, ok := coerce.String(raw.Density); ok && Density(s).Valid() {
		lane.Density = Density(s)
	}
	return lane
}

// NormalizeTiming sanitizes one approach's timing against a cycle length that
// is already within bounds. Yellow is bounded first so that green can leave
// room for it and at least one second of red; red is always derived.
func NormalizeTiming(raw RawTiming, cycleLength float64) SignalTiming {
	yellow := mathutil.Clamp(coerce.Number(raw.Yellow, constants.MinYellow), constants.MinYellow, constants.MaxYellow)
	maxGreen := mathutil.Min(constants.MaxGreen, cycleLength-yellow-constants.MinRed)
	green := mathutil.Clamp(coerce.Number(raw.Green, 0), constants.MinGreen, maxGreen)
	red := mathutil.Max(cycleLength-green-yellow, constants.MinRed)
	return SignalTiming{Green: green, Yellow: yellow, Red: red}
}
