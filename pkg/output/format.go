// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/signal-timing/internal/simulation"
	"github.com/iwvelando/signal-timing/internal/traffic"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/iwvelando/signal-timing/pkg/format"
	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Render writes result in the named output format.
func Render(w io.Writer, outputFormat string, result simulation.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, result)
	case constants.OutputFormatCSV:
		return CsvFormat(w, []simulation.Result{result})
	case constants.OutputFormatJSON:
		return JSONFormat(w, result)
	}
	return fmt.Errorf("unsupported output format %s", outputFormat)
}

// RenderHistory writes a history listing in the named output format.
func RenderHistory(w io.Writer, outputFormat string, results []simulation.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyHistory(w, results)
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	}
	return fmt.Errorf("unsupported output format %s", outputFormat)
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, result simulation.Result) error {
	p := message.NewPrinter(language.English)
	ew := &errWriter{w: w}

	ew.printf("--- Results for run %s (%s) ---\n", result.ID, result.Timestamp.UTC().Format(time.RFC3339))
	ew.printf("Cycle length: %s -> %s\n", format.Seconds(result.Config.Original.CycleLength), format.Seconds(result.Config.Optimized.CycleLength))
	ew.printf("Lost time %s, usable green %s, critical ratio %.2f, allocation %s\n",
		format.Seconds(result.Optimization.LostTime),
		format.Seconds(result.Optimization.UsableGreen),
		result.Optimization.TotalCriticalRatio,
		result.Optimization.Allocation,
	)

	lanes := traffic.Configuration{Lanes: result.Config.Lanes}
	ew.write(p.Sprintf("Starting vehicles: %d\n", lanes.TotalVehicles()))
	for _, dir := range traffic.Directions {
		parts := lo.Map(result.Config.Lanes[dir], func(lane traffic.Lane, _ int) string {
			return fmt.Sprintf("%s %d %s", lane.LaneType.Info().Icon, lane.VehicleCount, lane.Density)
		})
		ew.printf("  %-6s %s\n", dir.Label()+":", strings.Join(parts, ", "))
	}

	for _, pass := range []struct {
		title string
		plan  traffic.TimingPlan
		pass  simulation.Pass
	}{
		{"Current timing", result.Config.Original, result.Before},
		{"Optimized timing", result.Config.Optimized, result.After},
	} {
		ew.printf("\n%s\n", pass.title)
		ew.printf("Direction | Green | Yellow | Red   | Avg delay | Queue | Throughput | Congestion | Balance\n")
		ew.printf("_________ | _____ | ______ | _____ | _________ | _____ | __________ | __________ | _______\n")
		for _, dir := range traffic.Directions {
			timing := pass.plan.SignalTiming[dir]
			metrics := pass.pass.PerDirection[dir]
			ew.write(p.Sprintf("%-9s | %5.0f | %6.0f | %5.0f | %9s | %5d | %10d | %10d | %7d\n",
				dir.Label(), timing.Green, timing.Yellow, timing.Red,
				format.Number(metrics.AvgDelay, 1), metrics.QueueLength, metrics.Throughput,
				metrics.CongestionIndex, metrics.LoadBalanceScore))
		}
		agg := pass.pass.Aggregate
		ew.write(p.Sprintf("Overall: avg delay %s s, queue %d, throughput %d veh/h, congestion %d, balance %d, wait %d veh-s\n",
			format.Number(agg.AvgDelay, 1), agg.TotalQueue, agg.TotalThroughput,
			agg.AvgCongestion, agg.AvgLoadBalance, agg.TotalWaitVehicleSeconds))
	}

	imp := result.Improvements
	ew.printf("\nImprovements: delay %s, queue %s, throughput %s, congestion %s, wait %s, balance %s\n",
		format.SignedPercent(imp.DelayReduction),
		format.SignedPercent(imp.QueueReduction),
		format.SignedPercent(imp.ThroughputIncrease),
		format.SignedPercent(imp.CongestionReduction),
		format.SignedPercent(imp.WaitTimeReduction),
		format.SignedPercent(imp.LoadBalanceImprovement),
	)
	return ew.err
}

// PrettyHistory outputs one summary line per stored run, most recent first.
func PrettyHistory(w io.Writer, results []simulation.Result) error {
	ew := &errWriter{w: w}
	if len(results) == 0 {
		ew.printf("No simulation history\n")
		return ew.err
	}

	ew.printf("Timestamp            | Cycle       | Avg delay          | Delay | Throughput | ID\n")
	ew.printf("____________________ | ___________ | __________________ | _____ | __________ | __\n")
	for _, result := range results {
		ew.printf("%-20s | %-11s | %-18s | %5s | %10s | %s\n",
			result.Timestamp.UTC().Format(time.RFC3339),
			fmt.Sprintf("%.0f -> %.0f", result.Config.Original.CycleLength, result.Config.Optimized.CycleLength),
			fmt.Sprintf("%s -> %s", format.Number(result.Before.Aggregate.AvgDelay, 1), format.Number(result.After.Aggregate.AvgDelay, 1)),
			format.SignedPercent(result.Improvements.DelayReduction),
			format.SignedPercent(result.Improvements.ThroughputIncrease),
			result.ID,
		)
	}
	return ew.err
}

var csvHeader = []string{
	"id", "timestamp", "pass", "direction", "cycleLength", "green", "yellow", "red",
	"avgDelay", "queueLength", "throughput", "congestionIndex", "loadBalanceScore",
	"totalVehicles", "demandRate", "waitVehicleSeconds",
}

// CsvFormat outputs one row per run, pass and direction, followed by an
// "all" row carrying the aggregate of each pass.
func CsvFormat(w io.Writer, results []simulation.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, result := range results {
		for _, pass := range []struct {
			name string
			plan traffic.TimingPlan
			pass simulation.Pass
		}{
			{"before", result.Config.Original, result.Before},
			{"after", result.Config.Optimized, result.After},
		} {
			prefix := []string{result.ID, result.Timestamp.UTC().Format(time.RFC3339), pass.name}
			for _, dir := range traffic.Directions {
				timing := pass.plan.SignalTiming[dir]
				m := pass.pass.PerDirection[dir]
				row := append(append([]string{}, prefix...),
					string(dir), formatFloat(pass.plan.CycleLength),
					formatFloat(timing.Green), formatFloat(timing.Yellow), formatFloat(timing.Red),
					formatFloat(m.AvgDelay), strconv.Itoa(m.QueueLength), strconv.Itoa(m.Throughput),
					strconv.Itoa(m.CongestionIndex), strconv.Itoa(m.LoadBalanceScore),
					strconv.Itoa(m.TotalVehicles), strconv.Itoa(m.DemandRate), strconv.Itoa(m.WaitVehicleSeconds),
				)
				if err := cw.Write(row); err != nil {
					return err
				}
			}

			agg := pass.pass.Aggregate
			row := append(append([]string{}, prefix...),
				"all", formatFloat(pass.plan.CycleLength), "", "", "",
				formatFloat(agg.AvgDelay), strconv.Itoa(agg.TotalQueue), strconv.Itoa(agg.TotalThroughput),
				strconv.Itoa(agg.AvgCongestion), strconv.Itoa(agg.AvgLoadBalance),
				"", strconv.Itoa(agg.DemandRate), strconv.Itoa(agg.TotalWaitVehicleSeconds),
			)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs v as indented JSON.
func JSONFormat(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// errWriter keeps the first write error so a report can be written without
// checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(layout string, args ...interface{}) {
	ew.write(fmt.Sprintf(layout, args...))
}

func (ew *errWriter) write(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}
