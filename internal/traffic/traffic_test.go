package traffic

import (
	"math"
	"testing"
)

func TestLaneCoefficients(t *testing.T) {
	tests := []struct {
		name        string
		lane        Lane
		arrivalRate float64
		saturation  float64
	}{
		{"Straight moderate", Lane{LaneType: Straight, Density: Moderate}, 1800 * 0.65 * 0.34, 1800 * 0.9},
		{"Left turn gridlock", Lane{LaneType: LeftTurn, Density: Gridlock}, 1350 * 1.15 * 0.34, 1350 * 0.72},
		{"Right turn low", Lane{LaneType: RightTurn, Density: Low}, 1550 * 0.4 * 0.34, 1550 * 0.95},
		{"Combined high", Lane{LaneType: Combined, Density: High}, 1650 * 0.9 * 0.34, 1650 * 0.82},
		{"Unknown falls back", Lane{LaneType: "tram", Density: "busy"}, 1800 * 0.65 * 0.34, 1800 * 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lane.ArrivalRate(); math.Abs(got-tt.arrivalRate) > 1e-9 {
				t.Errorf("ArrivalRate() = %v, expected %v", got, tt.arrivalRate)
			}
			if got := tt.lane.Saturation(); math.Abs(got-tt.saturation) > 1e-9 {
				t.Errorf("Saturation() = %v, expected %v", got, tt.saturation)
			}
		})
	}
}

func TestCatalogs(t *testing.T) {
	if len(Directions) != 4 || Directions[0] != North || Directions[3] != West {
		t.Fatalf("unexpected direction order %v", Directions)
	}
	for _, lt := range LaneTypes {
		if !lt.Valid() {
			t.Errorf("lane type %s not valid", lt)
		}
	}
	for _, d := range Densities {
		if !d.Valid() {
			t.Errorf("density %s not valid", d)
		}
	}
	if LaneType("bus").Valid() || Density("").Valid() {
		t.Error("unknown catalog values reported valid")
	}
	if North.Label() != "North" || Direction("up").Label() != "up" {
		t.Error("unexpected direction labels")
	}
}

func TestDefaultConfig(t *testing.T) {
	conf := DefaultConfig()
	if conf.CycleLength != 96 {
		t.Fatalf("expected cycle 96, got %v", conf.CycleLength)
	}
	if conf.TotalVehicles() != 120 {
		t.Errorf("expected 120 vehicles, got %d", conf.TotalVehicles())
	}
	for _, dir := range Directions {
		if conf.SignalTiming[dir].Total() != conf.CycleLength {
			t.Errorf("%s default timing does not sum to cycle", dir)
		}
	}
	if lane := DefaultLane(); lane.VehicleCount != 18 || lane.LaneType != Straight || lane.Density != Moderate {
		t.Errorf("unexpected default lane %+v", lane)
	}
}

func TestPresets(t *testing.T) {
	presets := Presets()
	expected := []struct {
		key   string
		name  string
		cycle float64
	}{
		{"rushHour", "Rush Hour Peak", 120},
		{"normalDay", "Normal Midday", 96},
		{"lightTraffic", "Late Night", 64},
		{"unevenFlow", "Uneven Corridor", 100},
	}
	if len(presets) != len(expected) {
		t.Fatalf("expected %d presets, got %d", len(expected), len(presets))
	}
	for i, want := range expected {
		p := presets[i]
		if p.Key != want.key || p.Name != want.name || p.Config.CycleLength != want.cycle {
			t.Errorf("preset %d = %s/%s/%v, expected %s/%s/%v", i, p.Key, p.Name, p.Config.CycleLength, want.key, want.name, want.cycle)
		}
		if p.Description == "" {
			t.Errorf("preset %s missing description", p.Key)
		}
		for _, dir := range Directions {
			if p.Config.SignalTiming[dir].Total() != p.Config.CycleLength {
				t.Errorf("preset %s %s timing does not sum to cycle", p.Key, dir)
			}
		}
	}

	presets[0].Config.Lanes[North][0].VehicleCount = 1
	if Presets()[0].Config.Lanes[North][0].VehicleCount != 52 {
		t.Error("Presets() returned shared storage")
	}
}

func TestLookupPreset(t *testing.T) {
	tests := []struct {
		input string
		key   string
		found bool
	}{
		{"rushHour", "rushHour", true},
		{"RUSHHOUR", "rushHour", true},
		{"Late Night", "lightTraffic", true},
		{" uneven corridor ", "unevenFlow", true},
		{"", "", false},
		{"weekend", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			preset, ok := LookupPreset(tt.input)
			if ok != tt.found || preset.Key != tt.key {
				t.Errorf("LookupPreset(%q) = %q, %v; expected %q, %v", tt.input, preset.Key, ok, tt.key, tt.found)
			}
		})
	}
}
