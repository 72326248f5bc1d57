package engine

import (
	"fmt"
	"sort"
	"strings"

	"gaspipe/internal/result"
)

// TextReport renders one result as a fixed-width table for terminal output.
func TextReport(res *result.OptimizationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Algorithm: %s    Solver: %s    Status: %s\n", res.Algorithm, res.Solver, res.Status)
	fmt.Fprintf(&b, "Objective: %.4f    Elapsed: %d ms    Run: %s\n", res.ObjectiveValue, res.ElapsedMs, res.RunID)
	fmt.Fprintf(&b, "\n")

	if res.Status.Succeeded() {
		fmt.Fprintf(&b, "%-12s %12s %12s %10s %12s\n", "Segment", "Flow", "Capacity", "Util %", "Cost $/MMscf")
		for _, id := range sortedKeys(res.SegmentFlows) {
			sf := res.SegmentFlows[id]
			fmt.Fprintf(&b, "%-12s %12.2f %12.2f %10.1f %12.2f\n",
				sf.SegmentID, sf.Flow, sf.Capacity, sf.Utilization, sf.TransportationCost)
		}
		fmt.Fprintf(&b, "\n%-12s %12s %12s %8s %10s %10s\n", "Point", "Pressure", "P^2", "OK", "Boost", "Fuel")
		for _, id := range sortedKeys(res.PointPressures) {
			pp := res.PointPressures[id]
			fmt.Fprintf(&b, "%-12s %12.2f %12.0f %8t %10.2f %10.4f\n",
				pp.PointID, pp.Pressure, pp.PressureSquared, pp.WithinConstraints, pp.Boost, pp.FuelConsumption)
		}
		fmt.Fprintf(&b, "\nCosts: transportation %.2f  fuel %.2f  compressor %.2f  other %.2f  total %.2f\n",
			res.Costs.Transportation, res.Costs.Fuel, res.Costs.Compressor, res.Costs.Other, res.TotalCost)
		m := res.Metrics
		fmt.Fprintf(&b, "Throughput %.2f MMscfd  demand %.2f/%.2f  util avg %.1f%% peak %.1f%% var %.2f\n",
			m.TotalThroughput, m.DemandSatisfied, m.DemandRequired, m.AvgUtilization, m.PeakUtilization, m.UtilizationVar)
	}

	if len(res.ValidationErrors) > 0 {
		fmt.Fprintf(&b, "\nVALIDATION FAILURES (%d):\n", len(res.ValidationErrors))
		for _, v := range res.ValidationErrors {
			fmt.Fprintf(&b, "  - %s\n", v)
		}
	}
	for _, msg := range res.Messages {
		fmt.Fprintf(&b, "note: %s\n", msg)
	}
	return b.String()
}

// ComparisonReport renders a comparison batch as one table row per
// algorithm.
func ComparisonReport(cmp *Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Network: %s\n\n", cmp.NetworkName)
	fmt.Fprintf(&b, "%-22s %-10s %14s %14s %12s %10s\n",
		"Algorithm", "Status", "Objective", "Throughput", "Total Cost", "Elapsed")
	for _, res := range cmp.Results {
		fmt.Fprintf(&b, "%-22s %-10s %14.4f %14.2f %12.2f %8dms\n",
			res.Algorithm, res.Status, res.ObjectiveValue,
			res.Metrics.TotalThroughput, res.TotalCost, res.ElapsedMs)
	}
	return b.String()
}

// ScenarioReport renders a scenario batch.
func ScenarioReport(outcomes []ScenarioOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-28s %-10s %14s %14s %12s\n",
		"Scenario", "Status", "Objective", "Throughput", "Total Cost")
	for _, o := range outcomes {
		fmt.Fprintf(&b, "%-28s %-10s %14.4f %14.2f %12.2f\n",
			o.Scenario.Name, o.Result.Status, o.Result.ObjectiveValue,
			o.Result.Metrics.TotalThroughput, o.Result.TotalCost)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
