// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iwvelando/signal-timing/internal/traffic"
	"github.com/iwvelando/signal-timing/pkg/coerce"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/iwvelando/signal-timing/pkg/mathutil"
)

// ValidateCycleLength reports how a raw cycle length will be adjusted.
func ValidateCycleLength(value interface{}) []string {
	if value == nil {
		return nil
	}
	cycle := coerce.Number(value, math.NaN())
	if math.IsNaN(cycle) {
		return []string{fmt.Sprintf("cycleLength %v is not a number, %v will be used",
			value, constants.DefaultCycleLength)}
	}
	if cycle < constants.MinCycleLength || cycle > constants.MaxCycleLength {
		return []string{fmt.Sprintf("cycleLength %v is outside [%v, %v] and will be clamped to %v",
			cycle, constants.MinCycleLength, constants.MaxCycleLength,
			mathutil.Clamp(cycle, constants.MinCycleLength, constants.MaxCycleLength))}
	}
	return nil
}

// ValidateLaneCount reports missing or surplus lanes on an approach.
func ValidateLaneCount(direction string, count int) []string {
	if count == 0 {
		return []string{fmt.Sprintf("%s has no lanes, a single empty lane will be simulated", direction)}
	}
	if count > constants.MaxLanesPerDirection {
		return []string{fmt.Sprintf("%s has %d lanes, only the first %d will be simulated",
			direction, count, constants.MaxLanesPerDirection)}
	}
	return nil
}

// ValidateLane reports lane values that will be replaced or clamped.
func ValidateLane(name string, lane traffic.RawLane) []string {
	var warnings []string

	if lane.VehicleCount != nil {
		count := coerce.Number(lane.VehicleCount, math.NaN())
		switch {
		case math.IsNaN(count):
			warnings = append(warnings, fmt.Sprintf("%s vehicleCount %v is not a number, 0 will be used", name, lane.VehicleCount))
		case count < 0 || count > constants.MaxVehiclesPerLane:
			warnings = append(warnings, fmt.Sprintf("%s vehicleCount %v is outside [0, %d] and will be clamped",
				name, count, constants.MaxVehiclesPerLane))
		case count != math.Floor(count):
			warnings = append(warnings, fmt.Sprintf("%s vehicleCount %v will be rounded to %d",
				name, count, mathutil.RoundInt(count)))
		}
	}

	if value, ok := coerce.String(lane.LaneType); ok && !traffic.LaneType(value).Valid() {
		names := make([]string, len(traffic.LaneTypes))
		for i, lt := range traffic.LaneTypes {
			names[i] = string(lt)
		}
		warnings = append(warnings, fmt.Sprintf("%s laneType %q is not one of %s, %s will be used",
			name, value, strings.Join(names, ", "), traffic.Straight))
	}
	if value, ok := coerce.String(lane.Density); ok && !traffic.Density(value).Valid() {
		warnings = append(warnings, fmt.Sprintf("%s density %q is unknown, %s will be used", name, value, traffic.Moderate))
	}

	return warnings
}

// ValidateTiming reports signal timing values that fall outside their bounds
// for the given (already clamped) cycle length.
func ValidateTiming(direction string, timing traffic.RawTiming, cycleLength float64) []string {
	var warnings []string

	yellow := coerce.Number(timing.Yellow, constants.MinYellow)
	if timing.Yellow != nil && (yellow < constants.MinYellow || yellow > constants.MaxYellow) {
		warnings = append(warnings, fmt.Sprintf("%s yellow %v is outside [%v, %v] and will be clamped",
			direction, yellow, constants.MinYellow, constants.MaxYellow))
	}
	yellow = mathutil.Clamp(yellow, constants.MinYellow, constants.MaxYellow)

	if timing.Green != nil {
		green := coerce.Number(timing.Green, 0)
		maxGreen := mathutil.Min(constants.MaxGreen, cycleLength-yellow-constants.MinRed)
		if green < constants.MinGreen || green > maxGreen {
			warnings = append(warnings, fmt.Sprintf("%s green %v is outside [%v, %v] and will be clamped",
				direction, green, constants.MinGreen, maxGreen))
		}
	}

	return warnings
}

// IntersectionValidator checks a raw intersection before it is normalized.
type IntersectionValidator struct {
	Raw traffic.RawConfig
}

// ValidateAll returns every adjustment normalization will make, in a stable
// order: cycle length, unknown approaches, then each approach's lanes and
// timing.
func (iv *IntersectionValidator) ValidateAll() []string {
	var warnings []string

	warnings = append(warnings, ValidateCycleLength(iv.Raw.CycleLength)...)
	cycleLength := mathutil.Clamp(
		coerce.Number(iv.Raw.CycleLength, constants.DefaultCycleLength),
		constants.MinCycleLength,
		constants.MaxCycleLength,
	)

	for _, key := range unknownDirections(iv.Raw) {
		warnings = append(warnings, fmt.Sprintf("approach %q is not one of north, south, east, west and will be ignored", key))
	}

	for _, dir := range traffic.Directions {
		lanes := lookupLanes(iv.Raw, dir)
		warnings = append(warnings, ValidateLaneCount(string(dir), len(lanes))...)
		for i, lane := range lanes {
			if i >= constants.MaxLanesPerDirection {
				break
			}
			warnings = append(warnings, ValidateLane(fmt.Sprintf("%s lane %d", dir, i+1), lane)...)
		}
		if timing, ok := lookupTiming(iv.Raw, dir); ok {
			warnings = append(warnings, ValidateTiming(string(dir), timing, cycleLength)...)
		}
	}

	return warnings
}

func matchDirection(key string) (traffic.Direction, bool) {
	for _, dir := range traffic.Directions {
		if strings.EqualFold(strings.TrimSpace(key), string(dir)) {
			return dir, true
		}
	}
	return "", false
}

func unknownDirections(raw traffic.RawConfig) []string {
	seen := map[string]bool{}
	for key := range raw.Lanes {
		if _, ok := matchDirection(key); !ok {
			seen[key] = true
		}
	}
	for key := range raw.SignalTiming {
		if _, ok := matchDirection(key); !ok {
			seen[key] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func lookupLanes(raw traffic.RawConfig, dir traffic.Direction) []traffic.RawLane {
	for key, lanes := range raw.Lanes {
		if match, ok := matchDirection(key); ok && match == dir {
			return lanes
		}
	}
	return nil
}

func lookupTiming(raw traffic.RawConfig, dir traffic.Direction) (traffic.RawTiming, bool) {
	for key, timing := range raw.SignalTiming {
		if match, ok := matchDirection(key); ok && match == dir {
			return timing, true
		}
	}
	return traffic.RawTiming{}, false
}
