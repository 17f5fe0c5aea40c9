package traffic

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func assertTimingInvariants(t *testing.T, conf Configuration) {
	t.Helper()

	if conf.CycleLength < 48 || conf.CycleLength > 170 {
		t.Fatalf("cycle length %v outside [48,170]", conf.CycleLength)
	}
	for _, dir := range Directions {
		timing, ok := conf.SignalTiming[dir]
		if !ok {
			t.Fatalf("missing timing for %s", dir)
		}
		if timing.Green < 8 || timing.Green > 130 {
			t.Errorf("%s green %v outside [8,130]", dir, timing.Green)
		}
		if timing.Yellow < 3 || timing.Yellow > 8 {
			t.Errorf("%s yellow %v outside [3,8]", dir, timing.Yellow)
		}
		if timing.Red < 1 {
			t.Errorf("%s red %v below 1", dir, timing.Red)
		}
		if math.Abs(timing.Total()-conf.CycleLength) > 1e-9 {
			t.Errorf("%s timing sums to %v, expected %v", dir, timing.Total(), conf.CycleLength)
		}
		lanes := conf.Lanes[dir]
		if len(lanes) < 1 || len(lanes) > 4 {
			t.Errorf("%s has %d lanes, expected 1-4", dir, len(lanes))
		}
		for i, lane := range lanes {
			if lane.VehicleCount < 0 || lane.VehicleCount > 250 {
				t.Errorf("%s lane %d vehicle count %d outside [0,250]", dir, i, lane.VehicleCount)
			}
			if !lane.LaneType.Valid() || !lane.Density.Valid() {
				t.Errorf("%s lane %d has invalid type/density %+v", dir, i, lane)
			}
		}
	}
}

func TestNormalizeEmptyConfig(t *testing.T) {
	conf := Normalize(RawConfig{})

	if conf.CycleLength != 90 {
		t.Fatalf("expected default cycle length 90, got %v", conf.CycleLength)
	}
	for _, dir := range Directions {
		lanes := conf.Lanes[dir]
		expected := []Lane{{VehicleCount: 0, LaneType: Straight, Density: Low}}
		if !reflect.DeepEqual(lanes, expected) {
			t.Errorf("%s lanes = %+v, expected %+v", dir, lanes, expected)
		}
		timing := conf.SignalTiming[dir]
		if timing.Green != 8 || timing.Yellow != 3 || timing.Red != 79 {
			t.Errorf("%s timing = %+v, expected 8/3/79", dir, timing)
		}
	}
	assertTimingInvariants(t, conf)
}

func TestNormalizeCycleLength(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
	}{
		{"In range", 120, 120},
		{"Below minimum", 10, 48},
		{"Zero clamps to minimum", 0, 48},
		{"Above maximum", 400, 170},
		{"Numeric string", "100", 100},
		{"Garbage", "slow", 90},
		{"NaN", math.NaN(), 90},
		{"Infinity", math.Inf(-1), 90},
		{"Missing", nil, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Normalize(RawConfig{CycleLength: tt.input})
			if conf.CycleLength != tt.expected {
				t.Errorf("cycle length = %v, expected %v", conf.CycleLength, tt.expected)
			}
			assertTimingInvariants(t, conf)
		})
	}
}

func TestNormalizeLanes(t *testing.T) {
	raw := RawConfig{
		Lanes: map[string][]RawLane{
			"north": {
				{VehicleCount: 300, LaneType: "straight", Density: "high"},
				{VehicleCount: -5, LaneType: "uTurn", Density: "jammed"},
				{VehicleCount: "12", LaneType: "leftTurn", Density: "gridlock"},
				{VehicleCount: 7.6, LaneType: 4, Density: nil},
				{VehicleCount: 1, LaneType: "rightTurn", Density: "low"},
			},
			"South": {
				{VehicleCount: 9, LaneType: "combined", Density: "moderate"},
			},
		},
	}

	conf := Normalize(raw)

	expectedNorth := []Lane{
		{VehicleCount: 250, LaneType: Straight, Density: High},
		{VehicleCount: 0, LaneType: Straight, Density: Moderate},
		{VehicleCount: 12, LaneType: LeftTurn, Density: Gridlock},
		{VehicleCount: 8, LaneType: Straight, Density: Moderate},
	}
	if !reflect.DeepEqual(conf.Lanes[North], expectedNorth) {
		t.Errorf("north lanes = %+v, expected %+v", conf.Lanes[North], expectedNorth)
	}

	expectedSouth := []Lane{{VehicleCount: 9, LaneType: Combined, Density: Moderate}}
	if !reflect.DeepEqual(conf.Lanes[South], expectedSouth) {
		t.Errorf("south lanes = %+v, expected %+v", conf.Lanes[South], expectedSouth)
	}

	for _, dir := range []Direction{East, West} {
		if len(conf.Lanes[dir]) != 1 || conf.Lanes[dir][0].Density != Low {
			t.Errorf("%s expected one default lane, got %+v", dir, conf.Lanes[dir])
		}
	}
	assertTimingInvariants(t, conf)
}

func TestNormalizeTiming(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawTiming
		cycle    float64
		expected SignalTiming
	}{
		{"Valid timing kept", RawTiming{Green: 30, Yellow: 5, Red: 999}, 120, SignalTiming{Green: 30, Yellow: 5, Red: 85}},
		{"Green below minimum", RawTiming{Green: 2, Yellow: 4}, 90, SignalTiming{Green: 8, Yellow: 4, Red: 78}},
		{"Green above cycle room", RawTiming{Green: 100, Yellow: 8}, 60, SignalTiming{Green: 51, Yellow: 8, Red: 1}},
		{"Green above absolute maximum", RawTiming{Green: 160, Yellow: 3}, 170, SignalTiming{Green: 130, Yellow: 3, Red: 37}},
		{"Yellow defaults to minimum", RawTiming{Green: 20}, 90, SignalTiming{Green: 20, Yellow: 3, Red: 67}},
		{"Yellow clamped high", RawTiming{Green: 20, Yellow: 12}, 90, SignalTiming{Green: 20, Yellow: 8, Red: 62}},
		{"String values", RawTiming{Green: "25", Yellow: "4"}, 96, SignalTiming{Green: 25, Yellow: 4, Red: 67}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTiming(tt.raw, tt.cycle)
			if got != tt.expected {
				t.Errorf("NormalizeTiming() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestNormalizeInvariantsGrid(t *testing.T) {
	for _, cycle := range []interface{}{-10, 0, 48, 60, 96, 170, 1000, "x"} {
		for _, green := range []interface{}{nil, -1, 0, 8, 45, 129, 131, 500} {
			for _, yellow := range []interface{}{nil, 0, 3, 5.5, 8, 20} {
				raw := RawConfig{CycleLength: cycle, SignalTiming: map[string]RawTiming{}}
				for _, dir := range Directions {
					raw.SignalTiming[string(dir)] = RawTiming{Green: green, Yellow: yellow}
				}
				assertTimingInvariants(t, Normalize(raw))
			}
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []RawConfig{
		{},
		{CycleLength: "abc", Lanes: map[string][]RawLane{"east": {{VehicleCount: 999, LaneType: "x"}}}},
		{CycleLength: 30, SignalTiming: map[string]RawTiming{"west": {Green: 200, Yellow: 1}}},
		DefaultConfig().Raw(),
	}
	for _, preset := range Presets() {
		inputs = append(inputs, preset.Config.Raw())
	}

	for i, raw := range inputs {
		once := Normalize(raw)
		twice := Normalize(once.Raw())
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("input %d: normalize not idempotent\nonce:  %+v\ntwice: %+v", i, once, twice)
		}
		if !reflect.DeepEqual(once, once.Normalized()) {
			t.Errorf("input %d: Normalized() changed an already normalized configuration", i)
		}
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	original := DefaultConfig()
	raw := original.Raw()
	raw.Lanes["north"][0].VehicleCount = 500

	_ = Normalize(raw)

	if raw.Lanes["north"][0].VehicleCount != 500 {
		t.Fatal("Normalize mutated its input")
	}
	if original.Lanes[North][0].VehicleCount != 24 {
		t.Fatal("Raw() shares lane storage with the configuration")
	}
}

func TestConfigurationClone(t *testing.T) {
	conf := DefaultConfig()
	clone := conf.Clone()

	clone.Lanes[North][0].VehicleCount = 99
	clone.SignalTiming[North] = SignalTiming{Green: 1}

	if conf.Lanes[North][0].VehicleCount == 99 {
		t.Error("clone shares lane slices")
	}
	if conf.SignalTiming[North].Green == 1 {
		t.Error("clone shares timing map")
	}
}

func TestConfigurationJSONRoundTrip(t *testing.T) {
	for _, preset := range Presets() {
		conf := Normalize(preset.Config.Raw())
		data, err := json.Marshal(conf)
		if err != nil {
			t.Fatalf("marshal %s: %v", preset.Key, err)
		}
		var decoded Configuration
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", preset.Key, err)
		}
		if !reflect.DeepEqual(conf, decoded) {
			t.Errorf("%s did not round-trip", preset.Key)
		}

		var raw RawConfig
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("unmarshal raw %s: %v", preset.Key, err)
		}
		if !reflect.DeepEqual(Normalize(raw), conf) {
			t.Errorf("%s raw decode normalized differently", preset.Key)
		}
	}
}

func TestDecodeRawToleratesWrongShapes(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected RawConfig
	}{
		{name: "Not an object", input: 7, expected: RawConfig{}},
		{name: "Lanes not an object", input: map[string]interface{}{"lanes": "abc"}, expected: RawConfig{}},
		{
			name:     "Lane list not an array",
			input:    map[string]interface{}{"lanes": map[string]interface{}{"north": "abc", "south": nil}},
			expected: RawConfig{Lanes: map[string][]RawLane{}},
		},
		{
			name:     "Lane not an object",
			input:    map[string]interface{}{"lanes": map[string]interface{}{"north": []interface{}{5, map[string]interface{}{"vehiclecount": 9}}}},
			expected: RawConfig{Lanes: map[string][]RawLane{"north": {{}, {VehicleCount: 9}}}},
		},
		{
			name:     "Timing not an object",
			input:    map[string]interface{}{"signalTiming": map[string]interface{}{"north": 5, "east": map[string]interface{}{"green": "20"}}},
			expected: RawConfig{SignalTiming: map[string]RawTiming{"north": {}, "east": {Green: "20"}}},
		},
		{
			name:     "YAML style keys",
			input:    map[interface{}]interface{}{"cycleLength": 96, "signalTiming": map[interface{}]interface{}{"west": map[interface{}]interface{}{"yellow": 4}}},
			expected: RawConfig{CycleLength: 96, SignalTiming: map[string]RawTiming{"west": {Yellow: 4}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeRaw(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("DecodeRaw() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestRawConfigUnmarshalSanitizes(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var raw RawConfig
		body := `{"cycleLength": 100, "lanes": {"north": "abc", "east": [5]}, "signalTiming": {"north": 5}}`
		if err := json.Unmarshal([]byte(body), &raw); err != nil {
			t.Fatalf("json.Unmarshal() error = %v", err)
		}
		conf := Normalize(raw)
		if conf.CycleLength != 100 {
			t.Errorf("expected cycle 100, got %v", conf.CycleLength)
		}
		if lane := conf.Lanes[North][0]; lane.Density != Low || lane.VehicleCount != 0 {
			t.Errorf("expected the empty default lane on north, got %+v", lane)
		}
		if lane := conf.Lanes[East][0]; lane.Density != Moderate || lane.VehicleCount != 0 {
			t.Errorf("expected a blank sanitized lane on east, got %+v", lane)
		}
		if timing := conf.SignalTiming[North]; timing != (SignalTiming{Green: 8, Yellow: 3, Red: 89}) {
			t.Errorf("unexpected north timing %+v", timing)
		}

		if err := json.Unmarshal([]byte(`{"lanes": `), &raw); err == nil {
			t.Error("expected an error for malformed JSON")
		}
	})

	t.Run("YAML", func(t *testing.T) {
		var raw RawConfig
		body := "cycleLength: 64\nlanes:\n  west: 12\n  south:\n    - vehicleCount: 6\n      density: high\n"
		if err := yaml.Unmarshal([]byte(body), &raw); err != nil {
			t.Fatalf("yaml.Unmarshal() error = %v", err)
		}
		conf := Normalize(raw)
		if conf.CycleLength != 64 {
			t.Errorf("expected cycle 64, got %v", conf.CycleLength)
		}
		if lane := conf.Lanes[West][0]; lane.VehicleCount != 0 || lane.Density != Low {
			t.Errorf("expected the empty default lane on west, got %+v", lane)
		}
		if lane := conf.Lanes[South][0]; lane.VehicleCount != 6 || lane.Density != High {
			t.Errorf("unexpected south lane %+v", lane)
		}
	})
}
