package optimize

import (
	"math"
	"sort"

	"gaspipe/internal/compressor"
	"gaspipe/internal/mathutil"
	"gaspipe/internal/network"
	"gaspipe/internal/pressure"
	"gaspipe/internal/result"
)

// solution is the formulation-independent raw output both strategies
// produce; buildResult turns it into the shared result object.
type solution struct {
	flows      map[string]float64
	pressures  map[string]float64 // nil: estimate from flows
	boosts     map[string]float64
	fuels      map[string]float64
	objective  float64
	status     result.Status
	solverName string
}

// saturationThreshold marks a segment as saturated in the metrics,
// in percent utilization.
const saturationThreshold = 95.0

// buildResult assembles the uniform result object: thresholded segment
// flows, point pressure records, cost breakdown and aggregate metrics.
func buildResult(net *network.Network, settings *Settings, algorithmName string, sol solution) *result.OptimizationResult {
	res := result.New(algorithmName)
	res.Status = sol.status
	res.Solver = sol.solverName
	res.ObjectiveValue = sol.objective

	if !sol.status.Succeeded() {
		return res
	}

	threshold := settings.MinimumFlowThreshold

	// Segment flow records. Flows below the reporting threshold are zeroed.
	flows := make(map[string]float64, len(sol.flows))
	for id, f := range sol.flows {
		if math.Abs(f) < threshold {
			f = 0
		}
		flows[id] = f
	}

	for _, seg := range net.ActiveSegments() {
		f := flows[seg.ID]
		res.SegmentFlows[seg.ID] = &result.SegmentFlow{
			SegmentID:          seg.ID,
			Flow:               f,
			Capacity:           seg.Capacity,
			TransportationCost: seg.TransportationCost,
			Utilization:        seg.Utilization(f),
		}
	}

	// Point pressure records. Without a pressure solution the independent
	// upstream estimate stands in.
	pressures := sol.pressures
	if pressures == nil {
		pressures = pressure.Estimate(net, flows)
	}
	compOpts := compressorOptions(settings)
	for _, p := range net.ActivePoints() {
		pr := pressures[p.ID]
		boost := sol.boosts[p.ID]
		fuel := sol.fuels[p.ID]
		if p.IsCompressor() && sol.fuels == nil && settings.EnableCompressorStations {
			// Graph strategies carry no fuel variables; estimate from
			// station throughput at the solved flows.
			throughput := 0.0
			for _, seg := range net.Incoming(p.ID) {
				if f := flows[seg.ID]; f > 0 {
					throughput += f
				}
			}
			fuel = compressor.FuelEstimate(p, throughput, boost, compOpts)
		}
		res.PointPressures[p.ID] = &result.PointPressure{
			PointID:           p.ID,
			Pressure:          pr,
			PressureSquared:   pr * pr,
			WithinConstraints: pr >= p.MinPressure-settings.FeasibilityTolerance && pr <= p.MaxPressure+settings.FeasibilityTolerance,
			Boost:             boost,
			FuelConsumption:   fuel,
		}
	}

	// Cost breakdown.
	fuelPrice := settings.ParamFloat(ParamFuelCostPerMMscf, 3.0)
	boostPrice := settings.ParamFloat(ParamCompressorCostPerPsi, 0.001)
	for _, seg := range net.ActiveSegments() {
		res.Costs.Transportation += math.Abs(flows[seg.ID]) * seg.TransportationCost
	}
	for _, p := range net.Compressors() {
		if rec := res.PointPressures[p.ID]; rec != nil {
			res.Costs.Fuel += rec.FuelConsumption * fuelPrice
			res.Costs.Compressor += rec.Boost * boostPrice
		}
	}
	res.FinalizeTotalCost()

	res.Metrics = computeMetrics(net, flows, res, threshold)
	return res
}

// computeMetrics aggregates throughput, utilization and activity counters.
func computeMetrics(net *network.Network, flows map[string]float64, res *result.OptimizationResult, threshold float64) result.Metrics {
	var m result.Metrics

	for _, p := range net.Receipts() {
		out := 0.0
		for _, seg := range net.Outgoing(p.ID) {
			if f := flows[seg.ID]; f > 0 {
				out += f
			}
		}
		in := 0.0
		for _, seg := range net.Incoming(p.ID) {
			if f := flows[seg.ID]; f > 0 {
				in += f
			}
		}
		m.TotalThroughput += out
		supplied := out - in
		if supplied > 0 {
			m.SupplyUsed += supplied
		}
	}

	for _, p := range net.Deliveries() {
		m.DemandRequired += p.DemandRequirement
		in := 0.0
		for _, seg := range net.Incoming(p.ID) {
			in += flows[seg.ID]
		}
		for _, seg := range net.Outgoing(p.ID) {
			in -= flows[seg.ID]
		}
		if in > 0 {
			m.DemandSatisfied += in
		}
	}

	var utilizations []float64
	for _, seg := range net.ActiveSegments() {
		f := flows[seg.ID]
		if math.Abs(f) < threshold {
			continue
		}
		u := seg.Utilization(f)
		utilizations = append(utilizations, u)
		m.ActiveSegments++
		if u >= saturationThreshold {
			m.SaturatedSegments++
		}
		if u > m.PeakUtilization {
			m.PeakUtilization = u
		}
	}
	sort.Float64s(utilizations)
	m.AvgUtilization = mathutil.Mean(utilizations)
	m.UtilizationVar = mathutil.Variance(utilizations)

	for _, p := range net.Compressors() {
		throughput := 0.0
		for _, seg := range net.Incoming(p.ID) {
			if f := flows[seg.ID]; f > 0 {
				throughput += f
			}
		}
		if throughput > threshold {
			m.ActiveCompressors++
		}
	}

	return m
}
