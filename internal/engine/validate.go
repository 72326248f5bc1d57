package engine

import (
	"fmt"
	"math"

	"gaspipe/internal/network"
	"gaspipe/internal/optimize"
	"gaspipe/internal/pressure"
	"gaspipe/internal/result"
)

// ValidateSolution cross-checks a claimed solution against the physical
// constraints, independent of whichever formulation produced it:
//
//   - flow conservation at every active point within the feasibility
//     tolerance (receipts may inject up to supply, deliveries absorb up to
//     demand, compressors balance exactly),
//   - no segment flow outside [MinFlow, Capacity] beyond the tolerance,
//   - with pressure constraints enabled, every point pressure inside its
//     window beyond the tolerance.
//
// The returned strings are human-readable violations; empty means the
// solution is physically consistent.
func ValidateSolution(net *network.Network, settings *optimize.Settings, res *result.OptimizationResult) []string {
	eps := settings.FeasibilityTolerance
	if eps <= 0 {
		eps = 1e-6
	}
	// Reported flows are thresholded for presentation; conservation noise
	// up to the reporting threshold is expected on zeroed segments.
	slack := eps + settings.MinimumFlowThreshold*float64(len(net.Segments))

	var violations []string

	flow := func(segID string) float64 { return res.Flow(segID) }

	for _, p := range net.ActivePoints() {
		in, out := 0.0, 0.0
		for _, seg := range net.Incoming(p.ID) {
			in += flow(seg.ID)
		}
		for _, seg := range net.Outgoing(p.ID) {
			out += flow(seg.ID)
		}
		netFlow := out - in
		switch {
		case p.IsReceipt():
			if netFlow < -slack || netFlow > p.SupplyCapacity+slack {
				violations = append(violations, fmt.Sprintf(
					"receipt %s: net injection %.4f outside [0, %.4f]", p.ID, netFlow, p.SupplyCapacity))
			}
		case p.IsDelivery():
			absorbed := -netFlow
			if absorbed < -slack || absorbed > p.DemandRequirement+slack {
				violations = append(violations, fmt.Sprintf(
					"delivery %s: net absorption %.4f outside [0, %.4f]", p.ID, absorbed, p.DemandRequirement))
			}
		default:
			if math.Abs(netFlow) > slack {
				violations = append(violations, fmt.Sprintf(
					"point %s: flow imbalance %.4f exceeds tolerance", p.ID, netFlow))
			}
		}
	}

	for _, seg := range net.ActiveSegments() {
		f := flow(seg.ID)
		if f < seg.EffectiveMinFlow()-eps || f > seg.Capacity+eps {
			violations = append(violations, fmt.Sprintf(
				"segment %s: flow %.4f outside [%.4f, %.4f]",
				seg.ID, f, seg.EffectiveMinFlow(), seg.Capacity))
		}
	}

	if settings.EnablePressureConstraints {
		pressures := make(map[string]float64, len(res.PointPressures))
		boosts := make(map[string]float64, len(res.PointPressures))
		flows := make(map[string]float64, len(res.SegmentFlows))
		for id, rec := range res.PointPressures {
			pressures[id] = rec.Pressure
			boosts[id] = rec.Boost
		}
		for id := range res.SegmentFlows {
			flows[id] = flow(id)
		}
		// The drop check needs headroom for the reporting threshold too:
		// a thresholded flow changes k*f*|f| by up to k*(2*C*threshold).
		for _, v := range pressure.Validate(net, pressures, flows, boosts, eps+settings.MinimumFlowThreshold) {
			violations = append(violations, v.String())
		}
	}

	return violations
}
