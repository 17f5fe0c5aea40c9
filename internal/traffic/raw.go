package traffic

import (
	"encoding/json"
	"strings"

	"github.com/iwvelando/signal-timing/pkg/coerce"
	"gopkg.in/yaml.v3"
)

// RawConfig is an untrusted configuration as decoded from JSON, YAML or a
// form. Leaves are left untyped; Normalize turns it into a Configuration.
type RawConfig struct {
	Lanes        map[string][]RawLane `json:"lanes,omitempty" yaml:"lanes,omitempty" mapstructure:"lanes"`
	SignalTiming map[string]RawTiming `json:"signalTiming,omitempty" yaml:"signalTiming,omitempty" mapstructure:"signalTiming"`
	CycleLength  interface{}          `json:"cycleLength,omitempty" yaml:"cycleLength,omitempty" mapstructure:"cycleLength"`
}

// RawLane is an untrusted lane description.
type RawLane struct {
	VehicleCount interface{} `json:"vehicleCount,omitempty" yaml:"vehicleCount,omitempty" mapstructure:"vehicleCount"`
	LaneType     interface{} `json:"laneType,omitempty" yaml:"laneType,omitempty" mapstructure:"laneType"`
	Density      interface{} `json:"density,omitempty" yaml:"density,omitempty" mapstructure:"density"`
}

// RawTiming is an untrusted signal timing. Red is accepted but always
// recomputed from the cycle length.
type RawTiming struct {
	Green  interface{} `json:"green,omitempty" yaml:"green,omitempty" mapstructure:"green"`
	Yellow interface{} `json:"yellow,omitempty" yaml:"yellow,omitempty" mapstructure:"yellow"`
	Red    interface{} `json:"red,omitempty" yaml:"red,omitempty" mapstructure:"red"`
}

// DecodeRaw reads a raw configuration out of a generically decoded document.
// Containers of the wrong shape are dropped rather than rejected: a lanes
// value that is not an array leaves that approach unset, and a lane or timing
// that is not an object becomes an empty one. Normalize fills in the rest.
func DecodeRaw(value interface{}) RawConfig {
	doc, ok := coerce.Object(value)
	if !ok {
		return RawConfig{}
	}

	raw := RawConfig{CycleLength: coerce.Field(doc, "cycleLength")}
	if lanes, ok := coerce.Object(coerce.Field(doc, "lanes")); ok {
		raw.Lanes = make(map[string][]RawLane, len(lanes))
		for key, entry := range lanes {
			items, ok := coerce.List(entry)
			if !ok {
				continue
			}
			list := make([]RawLane, 0, len(items))
			for _, item := range items {
				list = append(list, decodeRawLane(item))
			}
			raw.Lanes[key] = list
		}
	}
	if timings, ok := coerce.Object(coerce.Field(doc, "signalTiming")); ok {
		raw.SignalTiming = make(map[string]RawTiming, len(timings))
		for key, entry := range timings {
			raw.SignalTiming[key] = decodeRawTiming(entry)
		}
	}
	return raw
}

func decodeRawLane(value interface{}) RawLane {
	lane, ok := coerce.Object(value)
	if !ok {
		return RawLane{}
	}
	return RawLane{
		VehicleCount: coerce.Field(lane, "vehicleCount"),
		LaneType:     coerce.Field(lane, "laneType"),
		Density:      coerce.Field(lane, "density"),
	}
}

func decodeRawTiming(value interface{}) RawTiming {
	timing, ok := coerce.Object(value)
	if !ok {
		return RawTiming{}
	}
	return RawTiming{
		Green:  coerce.Field(timing, "green"),
		Yellow: coerce.Field(timing, "yellow"),
		Red:    coerce.Field(timing, "red"),
	}
}

// UnmarshalJSON decodes any well-formed JSON document through DecodeRaw.
func (r *RawConfig) UnmarshalJSON(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*r = DecodeRaw(doc)
	return nil
}

// UnmarshalYAML decodes any well-formed YAML node through DecodeRaw.
func (r *RawConfig) UnmarshalYAML(node *yaml.Node) error {
	var doc interface{}
	if err := node.Decode(&doc); err != nil {
		return err
	}
	*r = DecodeRaw(doc)
	return nil
}

// Empty reports whether nothing at all was supplied.
func (r RawConfig) Empty() bool {
	return len(r.Lanes) == 0 && len(r.SignalTiming) == 0 && r.CycleLength == nil
}

func (r RawConfig) lanesFor(dir Direction) []RawLane {
	if lanes, ok := r.Lanes[string(dir)]; ok {
		return lanes
	}
	for key, lanes := range r.Lanes {
		if strings.EqualFold(strings.TrimSpace(key), string(dir)) {
			return lanes
		}
	}
	return nil
}

func (r RawConfig) timingFor(dir Direction) RawTiming {
	if timing, ok := r.SignalTiming[string(dir)]; ok {
		return timing
	}
	for key, timing := range r.SignalTiming {
		if strings.EqualFold(strings.TrimSpace(key), string(dir)) {
			return timing
		}
	}
	return RawTiming{}
}

// Raw converts a typed configuration back to the raw boundary shape, so a
// preset or a previously normalized configuration can be run like user input.
func (c Configuration) Raw() RawConfig {
	raw := RawConfig{
		Lanes:        make(map[string][]RawLane, len(c.Lanes)),
		SignalTiming: make(map[string]RawTiming, len(c.SignalTiming)),
		CycleLength:  c.CycleLength,
	}
	for dir, lanes := range c.Lanes {
		list := make([]RawLane, 0, len(lanes))
		for _, lane := range lanes {
			list = append(list, RawLane{
				VehicleCount: lane.VehicleCount,
				LaneType:     string(lane.LaneType),
				Density:      string(lane.Density),
			})
		}
		raw.Lanes[string(dir)] = list
	}
	for dir, timing := range c.SignalTiming {
		raw.SignalTiming[string(dir)] = RawTiming{
			Green:  timing.Green,
			Yellow: timing.Yellow,
			Red:    timing.Red,
		}
	}
	return raw
}
