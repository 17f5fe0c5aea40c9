package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/signal-timing/internal/simulation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var stdout bytes.Buffer
	if err := run(append([]string{"-log-level", "error"}, args...), &stdout); err != nil {
		t.Fatalf("run(%v) error = %v", args, err)
	}
	return stdout.String()
}

func TestRunExampleConfiguration(t *testing.T) {
	t.Setenv("SIGNAL_TIMING_HISTORY_DISABLED", "true")

	out := runCLI(t, "-config", "../../config.yaml.example", "-output-format", "json")

	var result simulation.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not a JSON result: %v", err)
	}
	if result.Config.Original.CycleLength != 96 {
		t.Errorf("expected the example cycle of 96, got %v", result.Config.Original.CycleLength)
	}
	if len(result.Config.Lanes["north"]) != 2 {
		t.Errorf("expected 2 north lanes, got %d", len(result.Config.Lanes["north"]))
	}
	if result.Config.Optimized.CycleLength < 48 || result.Config.Optimized.CycleLength > 170 {
		t.Errorf("optimized cycle %v out of range", result.Config.Optimized.CycleLength)
	}
}

func TestRunPresetOutputs(t *testing.T) {
	path := writeConfig(t, "output:\n  format: pretty\n")

	t.Run("Pretty", func(t *testing.T) {
		out := runCLI(t, "-config", path, "-preset", "lightTraffic")
		for _, fragment := range []string{"Cycle length: 64 s -> 117 s", "Current timing", "Optimized timing", "Improvements: delay +13%"} {
			if !strings.Contains(out, fragment) {
				t.Errorf("expected %q in output:\n%s", fragment, out)
			}
		}
	})

	t.Run("CSV", func(t *testing.T) {
		out := runCLI(t, "-config", path, "-preset", "rushHour", "-output-format", "csv")
		records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 11 {
			t.Fatalf("expected a header and 10 rows, got %d", len(records))
		}
		if records[1][4] != "120" || records[10][4] != "170" {
			t.Errorf("unexpected cycle lengths %s and %s", records[1][4], records[10][4])
		}
	})

	t.Run("Largest remainder allocation", func(t *testing.T) {
		path := writeConfig(t, "optimizer:\n  allocation: largestRemainder\n")
		out := runCLI(t, "-config", path, "-preset", "normalDay", "-output-format", "json")
		var result simulation.Result
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("output is not a JSON result: %v", err)
		}
		if result.Optimization.Allocation != "largestRemainder" {
			t.Errorf("expected largestRemainder allocation, got %q", result.Optimization.Allocation)
		}
	})
}

func TestRunWithoutDefaultConfigFile(t *testing.T) {
	// No config.yaml exists next to this test, so defaults apply.
	out := runCLI(t, "-preset", "Late Night", "-output-format", "json", "-no-save")

	var result simulation.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not a JSON result: %v", err)
	}
	if result.Config.Original.CycleLength != 64 {
		t.Errorf("expected the late night cycle of 64, got %v", result.Config.Original.CycleLength)
	}
}

func TestRunHistoryPersistsAcrossRuns(t *testing.T) {
	historyDir := filepath.Join(t.TempDir(), "history")
	path := writeConfig(t, "history:\n  path: "+historyDir+"\n  capacity: 2\n")

	for _, preset := range []string{"rushHour", "normalDay", "lightTraffic"} {
		runCLI(t, "-config", path, "-preset", preset, "-output-format", "json")
	}
	runCLI(t, "-config", path, "-preset", "unevenFlow", "-no-save")

	var stored []simulation.Result
	if err := json.Unmarshal([]byte(runCLI(t, "-config", path, "-history", "-output-format", "json")), &stored); err != nil {
		t.Fatalf("history is not a JSON list: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored runs, got %d", len(stored))
	}
	if stored[0].Config.Original.CycleLength != 64 || stored[1].Config.Original.CycleLength != 96 {
		t.Errorf("expected light traffic then normal day, got cycles %v and %v",
			stored[0].Config.Original.CycleLength, stored[1].Config.Original.CycleLength)
	}

	runCLI(t, "-config", path, "-clear-history")
	if out := runCLI(t, "-config", path, "-history"); out != "No simulation history\n" {
		t.Errorf("expected empty history, got %q", out)
	}
}

func TestRunErrors(t *testing.T) {
	path := writeConfig(t, "output:\n  format: pretty\n")

	tests := []struct {
		name string
		args []string
	}{
		{name: "Explicit missing config", args: []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}},
		{name: "Unknown output format", args: []string{"-config", path, "-output-format", "xml"}},
		{name: "Unknown preset", args: []string{"-config", path, "-preset", "gridlockFriday"}},
		{name: "Invalid log level", args: []string{"-config", path, "-log-level", "loud"}},
		{name: "Unknown flag", args: []string{"-speed", "fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			if err := run(tt.args, &stdout); err == nil {
				t.Errorf("run(%v) expected an error", tt.args)
			}
		})
	}
}
