package network

import (
	"gaspipe/pkg/apperror"
)

// Validate checks the structural and feasibility invariants of the network
// and returns every violation at once. A nil error means the network is
// ready for optimization.
//
// Checked invariants:
//  1. Every segment's endpoints reference existing, distinct points.
//  2. At least one active receipt and one active delivery exist.
//  3. Total supply capacity covers total demand requirement.
//  4. Every point's pressure window is non-empty.
//  5. Per-type attribute ranges (supply/demand/boost positive, costs
//     non-negative, physical segment attributes positive).
//
// Connectivity from receipts to deliveries is reported separately by
// ReachabilityReport: a delivery no receipt can reach surfaces as
// Infeasible at optimization time with a clearer message.
func (n *Network) Validate() error {
	v := &apperror.ValidationErrors{}

	if len(n.Points) == 0 {
		v.Addf(apperror.CodeEmptyNetwork, "network has no points")
		return v.ErrOrNil()
	}

	for _, id := range n.PointIDs() {
		p := n.Points[id]
		if p.ID != id {
			v.Addf(apperror.CodeInvalidNetwork, "point key %q does not match point id %q", id, p.ID)
		}
		if !p.Type.Valid() {
			v.Pointf(id, apperror.CodeInvalidPointType, "unknown type %q", p.Type)
			continue
		}
		if !p.PressureWindowValid() {
			v.Pointf(id, apperror.CodeInvalidPressure,
				"pressure window [%.1f, %.1f] is empty", p.MinPressure, p.MaxPressure)
		}
		switch p.Type {
		case PointReceipt:
			if p.SupplyCapacity <= 0 {
				v.Pointf(id, apperror.CodeInvalidSupply,
					"supply capacity %.3f must be positive", p.SupplyCapacity)
			}
			if p.UnitCost < 0 {
				v.Pointf(id, apperror.CodeNegativeCost, "unit cost %.3f is negative", p.UnitCost)
			}
		case PointDelivery:
			if p.DemandRequirement <= 0 {
				v.Pointf(id, apperror.CodeInvalidDemand,
					"demand requirement %.3f must be positive", p.DemandRequirement)
			}
		case PointCompressor:
			if p.MaxPressureBoost <= 0 {
				v.Pointf(id, apperror.CodeInvalidBoost,
					"max pressure boost %.3f must be positive", p.MaxPressureBoost)
			}
			if p.FuelConsumptionRate < 0 {
				v.Pointf(id, apperror.CodeInvalidBoost,
					"fuel consumption rate %.4f is negative", p.FuelConsumptionRate)
			}
		}
	}

	for _, id := range n.SegmentIDs() {
		s := n.Segments[id]
		if s.ID != id {
			v.Addf(apperror.CodeInvalidNetwork, "segment key %q does not match segment id %q", id, s.ID)
		}
		if _, ok := n.Points[s.FromPointID]; !ok {
			v.Segmentf(id, apperror.CodeDanglingSegment, "from point %q does not exist", s.FromPointID)
		}
		if _, ok := n.Points[s.ToPointID]; !ok {
			v.Segmentf(id, apperror.CodeDanglingSegment, "to point %q does not exist", s.ToPointID)
		}
		if s.FromPointID == s.ToPointID {
			v.Segmentf(id, apperror.CodeSelfLoop, "from and to are both %q", s.FromPointID)
		}
		if s.Capacity <= 0 {
			v.Segmentf(id, apperror.CodeInvalidCapacity, "capacity %.3f must be positive", s.Capacity)
		}
		if s.Length <= 0 {
			v.Segmentf(id, apperror.CodeInvalidLength, "length %.3f must be positive", s.Length)
		}
		if s.Diameter <= 0 {
			v.Segmentf(id, apperror.CodeInvalidDiameter, "diameter %.3f must be positive", s.Diameter)
		}
		if s.FrictionFactor <= 0 {
			v.Segmentf(id, apperror.CodeInvalidDiameter,
				"friction factor %.4f must be positive", s.FrictionFactor)
		}
		if s.TransportationCost < 0 {
			v.Segmentf(id, apperror.CodeNegativeCost,
				"transportation cost %.3f is negative", s.TransportationCost)
		}
		if !s.IsBidirectional && s.MinFlow < 0 {
			v.Segmentf(id, apperror.CodeInvalidCapacity,
				"min flow %.3f is negative on a unidirectional segment", s.MinFlow)
		}
		if s.MinFlow > s.Capacity {
			v.Segmentf(id, apperror.CodeInvalidCapacity,
				"min flow %.3f exceeds capacity %.3f", s.MinFlow, s.Capacity)
		}
	}

	if len(n.Receipts()) == 0 {
		v.Addf(apperror.CodeNoReceipt, "network has no active receipt point")
	}
	if len(n.Deliveries()) == 0 {
		v.Addf(apperror.CodeNoDelivery, "network has no active delivery point")
	}

	supply, demand := n.TotalSupplyCapacity(), n.TotalDemandRequirement()
	if len(n.Receipts()) > 0 && len(n.Deliveries()) > 0 && supply < demand {
		v.Addf(apperror.CodeSupplyShortfall,
			"total supply capacity %.1f MMscfd is below total demand %.1f MMscfd", supply, demand)
	}

	return v.ErrOrNil()
}

// ReachabilityReport lists active deliveries not reachable from any active
// receipt through active segments. Bidirectional segments are traversable
// both ways.
func (n *Network) ReachabilityReport() []string {
	reachable := make(map[string]bool)
	queue := make([]string, 0)
	for _, r := range n.Receipts() {
		reachable[r.ID] = true
		queue = append(queue, r.ID)
	}

	adjacency := make(map[string][]string)
	for _, s := range n.ActiveSegments() {
		adjacency[s.FromPointID] = append(adjacency[s.FromPointID], s.ToPointID)
		if s.IsBidirectional {
			adjacency[s.ToPointID] = append(adjacency[s.ToPointID], s.FromPointID)
		}
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, w := range adjacency[u] {
			if !reachable[w] {
				reachable[w] = true
				queue = append(queue, w)
			}
		}
	}

	var unreachable []string
	for _, d := range n.Deliveries() {
		if !reachable[d.ID] {
			unreachable = append(unreachable, d.ID)
		}
	}
	return unreachable
}
