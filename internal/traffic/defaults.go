package traffic

import (
	"strings"
)

// Preset is a named, complete configuration that can be loaded verbatim.
type Preset struct {
	Key         string        `json:"key" yaml:"key"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Config      Configuration `json:"config" yaml:"config"`
}

// DefaultLane is the lane added when a user extends an approach.
func DefaultLane() Lane {
	return Lane{VehicleCount: 18, LaneType: Straight, Density: Moderate}
}

// DefaultSignalTiming gives north/south a longer green than east/west.
func DefaultSignalTiming(cycleLength float64) map[Direction]SignalTiming {
	return map[Direction]SignalTiming{
		North: {Green: 28, Yellow: 4, Red: cycleLength - 32},
		South: {Green: 28, Yellow: 4, Red: cycleLength - 32},
		East:  {Green: 20, Yellow: 4, Red: cycleLength - 24},
		West:  {Green: 20, Yellow: 4, Red: cycleLength - 24},
	}
}

// DefaultConfig is the balanced midday intersection.
func DefaultConfig() Configuration {
	cycleLength := 96.0
	return Configuration{
		Lanes: map[Direction][]Lane{
			North: {
				{VehicleCount: 24, LaneType: Straight, Density: Moderate},
				{VehicleCount: 10, LaneType: LeftTurn, Density: Moderate},
			},
			South: {
				{VehicleCount: 22, LaneType: Straight, Density: Moderate},
				{VehicleCount: 12, LaneType: LeftTurn, Density: High},
			},
			East: {
				{VehicleCount: 30, LaneType: Straight, Density: High},
				{VehicleCount: 8, LaneType: RightTurn, Density: Moderate},
			},
			West: {
				{VehicleCount: 14, LaneType: Straight, Density: Low},
			},
		},
		SignalTiming: DefaultSignalTiming(cycleLength),
		CycleLength:  cycleLength,
	}
}

// Presets returns the preset catalog in display order. Each call returns
// fresh copies, so callers may modify them freely.
func Presets() []Preset {
	return []Preset{
		{
			Key:         "rushHour",
			Name:        "Rush Hour Peak",
			Description: "Heavy arrivals on all approaches with high residual queues",
			Config: Configuration{
				Lanes: map[Direction][]Lane{
					North: {
						{VehicleCount: 52, LaneType: Straight, Density: High},
						{VehicleCount: 24, LaneType: LeftTurn, Density: High},
					},
					South: {
						{VehicleCount: 58, LaneType: Straight, Density: Gridlock},
						{VehicleCount: 20, LaneType: LeftTurn, Density: High},
					},
					East: {
						{VehicleCount: 45, LaneType: Straight, Density: High},
						{VehicleCount: 14, LaneType: RightTurn, Density: Moderate},
					},
					West: {
						{VehicleCount: 40, LaneType: Straight, Density: High},
						{VehicleCount: 12, LaneType: LeftTurn, Density: Moderate},
					},
				},
				CycleLength: 120,
				SignalTiming: map[Direction]SignalTiming{
					North: {Green: 30, Yellow: 5, Red: 85},
					South: {Green: 30, Yellow: 5, Red: 85},
					East:  {Green: 25, Yellow: 5, Red: 90},
					West:  {Green: 25, Yellow: 5, Red: 90},
				},
			},
		},
		{
			Key:         "normalDay",
			Name:        "Normal Midday",
			Description: "Balanced daytime traffic demand",
			Config:      DefaultConfig(),
		},
		{
			Key:         "lightTraffic",
			Name:        "Late Night",
			Description: "Light traffic with short cycle demand",
			Config: Configuration{
				Lanes: map[Direction][]Lane{
					North: {{VehicleCount: 6, LaneType: Straight, Density: Low}},
					South: {{VehicleCount: 9, LaneType: Straight, Density: Low}},
					East:  {{VehicleCount: 4, LaneType: Combined, Density: Low}},
					West:  {{VehicleCount: 5, LaneType: Combined, Density: Low}},
				},
				CycleLength: 64,
				SignalTiming: map[Direction]SignalTiming{
					North: {Green: 18, Yellow: 3, Red: 43},
					South: {Green: 18, Yellow: 3, Red: 43},
					East:  {Green: 14, Yellow: 3, Red: 47},
					West:  {Green: 14, Yellow: 3, Red: 47},
				},
			},
		},
		{
			Key:         "unevenFlow",
			Name:        "Uneven Corridor",
			Description: "North-South oversaturated while East-West remains light",
			Config: Configuration{
				Lanes: map[Direction][]Lane{
					North: {
						{VehicleCount: 58, LaneType: Straight, Density: Gridlock},
						{VehicleCount: 28, LaneType: LeftTurn, Density: High},
					},
					South: {
						{VehicleCount: 50, LaneType: Straight, Density: High},
						{VehicleCount: 24, LaneType: LeftTurn, Density: High},
					},
					East: {{VehicleCount: 10, LaneType: Straight, Density: Low}},
					West: {{VehicleCount: 8, LaneType: Combined, Density: Low}},
				},
				CycleLength: 100,
				SignalTiming: map[Direction]SignalTiming{
					North: {Green: 25, Yellow: 4, Red: 71},
					South: {Green: 25, Yellow: 4, Red: 71},
					East:  {Green: 21, Yellow: 4, Red: 75},
					West:  {Green: 21, Yellow: 4, Red: 75},
				},
			},
		},
	}
}

// LookupPreset finds a preset by key or display name, ignoring case.
func LookupPreset(name string) (Preset, bool) {
	wanted := strings.TrimSpace(name)
	if wanted == "" {
		return Preset{}, false
	}
	for _, preset := range Presets() {
		if strings.EqualFold(preset.Key, wanted) || strings.EqualFold(preset.Name, wanted) {
			return preset, true
		}
	}
	return Preset{}, false
}
