// Package traffic defines the intersection domain model: approaches, lanes,
// signal timings and configurations, together with the static coefficient
// catalogs, defaults and presets used by the simulator.
package traffic

import (
	"github.com/iwvelando/signal-timing/pkg/constants"
)

// Direction identifies one of the four approaches.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions is the fixed iteration order for every per-approach computation.
var Directions = []Direction{North, South, East, West}

var directionLabels = map[Direction]string{
	North: "North",
	South: "South",
	East:  "East",
	West:  "West",
}

// Label returns the display name of the direction.
func (d Direction) Label() string {
	if label, ok := directionLabels[d]; ok {
		return label
	}
	return string(d)
}

// LaneType is the movement a lane serves.
type LaneType string

const (
	Straight  LaneType = "straight"
	LeftTurn  LaneType = "leftTurn"
	RightTurn LaneType = "rightTurn"
	Combined  LaneType = "combined"
)

// LaneTypeInfo holds the static properties of a lane type.
type LaneTypeInfo struct {
	Label          string
	Icon           string
	SaturationFlow float64 // vehicles per hour of green, before density penalty
}

var laneTypes = map[LaneType]LaneTypeInfo{
	Straight:  {Label: "Straight", Icon: "ST", SaturationFlow: 1800},
	LeftTurn:  {Label: "Left Turn", Icon: "LT", SaturationFlow: 1350},
	RightTurn: {Label: "Right Turn", Icon: "RT", SaturationFlow: 1550},
	Combined:  {Label: "Combined", Icon: "CB", SaturationFlow: 1650},
}

// LaneTypes lists lane types in catalog order.
var LaneTypes = []LaneType{Straight, LeftTurn, RightTurn, Combined}

// Valid reports whether the lane type is in the catalog.
func (t LaneType) Valid() bool {
	_, ok := laneTypes[t]
	return ok
}

// Info returns the catalog entry, falling back to straight for unknown types.
func (t LaneType) Info() LaneTypeInfo {
	if info, ok := laneTypes[t]; ok {
		return info
	}
	return laneTypes[Straight]
}

// Density is the traffic density level observed on a lane.
type Density string

const (
	Low      Density = "low"
	Moderate Density = "moderate"
	High     Density = "high"
	Gridlock Density = "gridlock"
)

// DensityInfo holds the static coefficients of a density level.
type DensityInfo struct {
	Label             string
	ArrivalMultiplier float64
	SaturationPenalty float64
}

var densities = map[Density]DensityInfo{
	Low:      {Label: "Low", ArrivalMultiplier: 0.4, SaturationPenalty: 0.95},
	Moderate: {Label: "Moderate", ArrivalMultiplier: 0.65, SaturationPenalty: 0.9},
	High:     {Label: "High", ArrivalMultiplier: 0.9, SaturationPenalty: 0.82},
	Gridlock: {Label: "Gridlock", ArrivalMultiplier: 1.15, SaturationPenalty: 0.72},
}

// Densities lists density levels from lightest to heaviest.
var Densities = []Density{Low, Moderate, High, Gridlock}

// Valid reports whether the density is in the catalog.
func (d Density) Valid() bool {
	_, ok := densities[d]
	return ok
}

// Info returns the catalog entry, falling back to moderate for unknown levels.
func (d Density) Info() DensityInfo {
	if info, ok := densities[d]; ok {
		return info
	}
	return densities[Moderate]
}

// Lane is one approach lane with its starting queue.
type Lane struct {
	VehicleCount int      `json:"vehicleCount" yaml:"vehicleCount"`
	LaneType     LaneType `json:"laneType" yaml:"laneType"`
	Density      Density  `json:"density" yaml:"density"`
}

// Saturation is the lane's effective saturation flow in vehicles per hour.
func (l Lane) Saturation() float64 {
	return l.LaneType.Info().SaturationFlow * l.Density.Info().SaturationPenalty
}

// ArrivalRate is the lane's hourly arrival rate.
func (l Lane) ArrivalRate() float64 {
	return l.LaneType.Info().SaturationFlow * l.Density.Info().ArrivalMultiplier * constants.ArrivalFactor
}

// SignalTiming is the green/yellow/red split of one approach, in seconds.
type SignalTiming struct {
	Green  float64 `json:"green" yaml:"green"`
	Yellow float64 `json:"yellow" yaml:"yellow"`
	Red    float64 `json:"red" yaml:"red"`
}

// Total is the sum of all three intervals.
func (s SignalTiming) Total() float64 {
	return s.Green + s.Yellow + s.Red
}

// TimingPlan is a cycle length with one timing per approach.
type TimingPlan struct {
	SignalTiming map[Direction]SignalTiming `json:"signalTiming" yaml:"signalTiming"`
	CycleLength  float64                    `json:"cycleLength" yaml:"cycleLength"`
}

// Clone returns a structural copy of the plan.
func (p TimingPlan) Clone() TimingPlan {
	return TimingPlan{
		SignalTiming: cloneTimings(p.SignalTiming),
		CycleLength:  p.CycleLength,
	}
}

// Configuration is the complete intersection description consumed by the engine.
type Configuration struct {
	Lanes        map[Direction][]Lane       `json:"lanes" yaml:"lanes"`
	SignalTiming map[Direction]SignalTiming `json:"signalTiming" yaml:"signalTiming"`
	CycleLength  float64                    `json:"cycleLength" yaml:"cycleLength"`
}

// Clone returns a structural copy sharing no slices or maps with c.
func (c Configuration) Clone() Configuration {
	lanes := make(map[Direction][]Lane, len(c.Lanes))
	for dir, list := range c.Lanes {
		lanes[dir] = append([]Lane(nil), list...)
	}
	return Configuration{
		Lanes:        lanes,
		SignalTiming: cloneTimings(c.SignalTiming),
		CycleLength:  c.CycleLength,
	}
}

// Plan returns the configuration's current timing plan.
func (c Configuration) Plan() TimingPlan {
	return TimingPlan{
		SignalTiming: cloneTimings(c.SignalTiming),
		CycleLength:  c.CycleLength,
	}
}

// TotalVehicles sums starting queues across all approaches.
func (c Configuration) TotalVehicles() int {
	total := 0
	for _, list := range c.Lanes {
		for _, lane := range list {
			total += lane.VehicleCount
		}
	}
	return total
}

func cloneTimings(in map[Direction]SignalTiming) map[Direction]SignalTiming {
	out := make(map[Direction]SignalTiming, len(in))
	for dir, timing := range in {
		out[dir] = timing
	}
	return out
}
