// Package tracer implements the upstream flow tracer: a fast, optimizer-free
// estimate of the flow each segment must carry for every delivery demand to
// be met, used for pre-flight feasibility checks and diagnostics.
package tracer

import (
	"fmt"
	"sort"

	"gaspipe/internal/network"
)

// Report is the outcome of an upstream trace.
type Report struct {
	// RequiredFlows maps segment id to the flow (MMscfd) the segment must
	// carry to satisfy all downstream demand.
	RequiredFlows map[string]float64 `json:"requiredFlows"`

	// Violations lists segments whose required flow exceeds capacity.
	Violations []Violation `json:"violations,omitempty"`

	// IsNetworkFeasible is true when no segment exceeds its capacity.
	IsNetworkFeasible bool `json:"isNetworkFeasible"`

	// UntracedDemand maps delivery id to demand that could not be pushed
	// upstream because the delivery has no incoming segments.
	UntracedDemand map[string]float64 `json:"untracedDemand,omitempty"`
}

// Violation records one segment over capacity.
type Violation struct {
	SegmentID    string  `json:"segmentId"`
	RequiredFlow float64 `json:"requiredFlow"`
	Capacity     float64 `json:"capacity"`
	Excess       float64 `json:"excess"`
}

func (v Violation) String() string {
	return fmt.Sprintf("segment %s requires %.2f MMscfd but capacity is %.2f (excess %.2f)",
		v.SegmentID, v.RequiredFlow, v.Capacity, v.Excess)
}

// epsilon tolerates solver-grade float noise in the capacity comparison.
const epsilon = 1e-6

// Trace walks upstream from every active delivery with positive demand,
// accumulating required segment flows. At a point with multiple incoming
// segments the requirement is split proportionally to each incoming
// segment's capacity. Cycles are avoided by a visited set scoped to the
// recursion path, so parallel branches still both contribute.
func Trace(net *network.Network) *Report {
	report := &Report{
		RequiredFlows:  make(map[string]float64),
		UntracedDemand: make(map[string]float64),
	}

	for _, delivery := range net.Deliveries() {
		if delivery.DemandRequirement <= 0 {
			continue
		}
		visited := map[string]bool{delivery.ID: true}
		pushed := traceUpstream(net, delivery.ID, delivery.DemandRequirement, visited, report.RequiredFlows)
		if remainder := delivery.DemandRequirement - pushed; remainder > epsilon {
			report.UntracedDemand[delivery.ID] = remainder
		}
	}

	// Deterministic violation order for reports.
	ids := make([]string, 0, len(report.RequiredFlows))
	for id := range report.RequiredFlows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		required := report.RequiredFlows[id]
		seg := net.Segment(id)
		if seg == nil {
			continue
		}
		if required > seg.Capacity+epsilon {
			report.Violations = append(report.Violations, Violation{
				SegmentID:    id,
				RequiredFlow: required,
				Capacity:     seg.Capacity,
				Excess:       required - seg.Capacity,
			})
		}
	}

	report.IsNetworkFeasible = len(report.Violations) == 0 && len(report.UntracedDemand) == 0
	if len(report.UntracedDemand) == 0 {
		report.UntracedDemand = nil
	}
	return report
}

// traceUpstream distributes required flow across the incoming segments of
// pointID and recurses toward receipts. Returns the amount that reached a
// receipt: the full requirement when the point is itself a receipt, which
// terminates the walk, and zero when there is no unvisited incoming segment.
func traceUpstream(net *network.Network, pointID string, required float64, visited map[string]bool, flows map[string]float64) float64 {
	point := net.Point(pointID)
	if point == nil {
		return 0
	}
	if point.IsReceipt() {
		// Receipts source the flow; nothing further upstream.
		return required
	}

	incoming := make([]*network.Segment, 0)
	totalCapacity := 0.0
	for _, seg := range net.Incoming(pointID) {
		if visited[seg.FromPointID] {
			continue
		}
		incoming = append(incoming, seg)
		totalCapacity += seg.Capacity
	}
	if len(incoming) == 0 || totalCapacity <= 0 {
		return 0
	}

	pushed := 0.0
	for _, seg := range incoming {
		share := required * seg.Capacity / totalCapacity
		flows[seg.ID] += share

		visited[seg.FromPointID] = true
		upstream := traceUpstream(net, seg.FromPointID, share, visited, flows)
		delete(visited, seg.FromPointID)

		pushed += upstream
	}
	return pushed
}
