package network

import (
	"sort"
)

// Network owns points and segments by id. All cross-references in the
// system are id lookups into these maps, so the topology may contain
// cycles without creating ownership cycles.
//
// # Determinism
//
// Maps alone would give randomized iteration, so the network keeps sorted
// id slices alongside them. Every algorithm iterates through PointIDs()/
// SegmentIDs() (ascending id order), which makes variable and constraint
// construction deterministic for a given network.
//
// # Lifecycle
//
// A network is constructed once, validated, then treated as immutable
// during an optimization run. Scenario variants are produced with Clone().
type Network struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Points      map[string]*Point   `json:"points"`
	Segments    map[string]*Segment `json:"segments"`

	pointIDs   []string
	segmentIDs []string
}

// New creates an empty network.
func New(name, description string) *Network {
	return &Network{
		Name:        name,
		Description: description,
		Points:      make(map[string]*Point),
		Segments:    make(map[string]*Segment),
	}
}

// AddPoint inserts or replaces a point.
func (n *Network) AddPoint(p *Point) {
	if _, exists := n.Points[p.ID]; !exists {
		n.pointIDs = nil // invalidate sorted cache
	}
	n.Points[p.ID] = p
}

// AddSegment inserts or replaces a segment.
func (n *Network) AddSegment(s *Segment) {
	if _, exists := n.Segments[s.ID]; !exists {
		n.segmentIDs = nil
	}
	n.Segments[s.ID] = s
}

// Point returns the point with the given id, or nil.
func (n *Network) Point(id string) *Point {
	return n.Points[id]
}

// Segment returns the segment with the given id, or nil.
func (n *Network) Segment(id string) *Segment {
	return n.Segments[id]
}

// PointIDs returns all point ids in ascending order.
func (n *Network) PointIDs() []string {
	if n.pointIDs == nil || len(n.pointIDs) != len(n.Points) {
		ids := make([]string, 0, len(n.Points))
		for id := range n.Points {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		n.pointIDs = ids
	}
	return n.pointIDs
}

// SegmentIDs returns all segment ids in ascending order.
func (n *Network) SegmentIDs() []string {
	if n.segmentIDs == nil || len(n.segmentIDs) != len(n.Segments) {
		ids := make([]string, 0, len(n.Segments))
		for id := range n.Segments {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		n.segmentIDs = ids
	}
	return n.segmentIDs
}

// ActivePoints returns active points in ascending id order.
func (n *Network) ActivePoints() []*Point {
	points := make([]*Point, 0, len(n.Points))
	for _, id := range n.PointIDs() {
		if p := n.Points[id]; p.IsActive {
			points = append(points, p)
		}
	}
	return points
}

// ActiveSegments returns active segments (both endpoints active too) in
// ascending id order.
func (n *Network) ActiveSegments() []*Segment {
	segments := make([]*Segment, 0, len(n.Segments))
	for _, id := range n.SegmentIDs() {
		s := n.Segments[id]
		if !s.IsActive {
			continue
		}
		from, to := n.Points[s.FromPointID], n.Points[s.ToPointID]
		if from == nil || to == nil || !from.IsActive || !to.IsActive {
			continue
		}
		segments = append(segments, s)
	}
	return segments
}

// PointsOfType returns active points of the given type in ascending id order.
func (n *Network) PointsOfType(t PointType) []*Point {
	points := make([]*Point, 0)
	for _, p := range n.ActivePoints() {
		if p.Type == t {
			points = append(points, p)
		}
	}
	return points
}

// Receipts returns active receipt points.
func (n *Network) Receipts() []*Point { return n.PointsOfType(PointReceipt) }

// Deliveries returns active delivery points.
func (n *Network) Deliveries() []*Point { return n.PointsOfType(PointDelivery) }

// Compressors returns active compressor stations.
func (n *Network) Compressors() []*Point { return n.PointsOfType(PointCompressor) }

// Incoming returns the active segments entering the point, ascending id order.
func (n *Network) Incoming(pointID string) []*Segment {
	segments := make([]*Segment, 0)
	for _, s := range n.ActiveSegments() {
		if s.ToPointID == pointID {
			segments = append(segments, s)
		}
	}
	return segments
}

// Outgoing returns the active segments leaving the point, ascending id order.
func (n *Network) Outgoing(pointID string) []*Segment {
	segments := make([]*Segment, 0)
	for _, s := range n.ActiveSegments() {
		if s.FromPointID == pointID {
			segments = append(segments, s)
		}
	}
	return segments
}

// TotalSupplyCapacity sums the supply capacity of active receipts.
func (n *Network) TotalSupplyCapacity() float64 {
	total := 0.0
	for _, p := range n.Receipts() {
		total += p.SupplyCapacity
	}
	return total
}

// TotalDemandRequirement sums the demand of active deliveries.
func (n *Network) TotalDemandRequirement() float64 {
	total := 0.0
	for _, p := range n.Deliveries() {
		total += p.DemandRequirement
	}
	return total
}

// TrunkSegments classifies high-capacity or supply-adjacent segments used
// as roots for upstream flow distribution. A segment qualifies when it
// either leaves a receipt point or its capacity is at least the given
// fraction of the maximum active segment capacity.
func (n *Network) TrunkSegments(capacityFraction float64) []*Segment {
	active := n.ActiveSegments()
	maxCap := 0.0
	for _, s := range active {
		if s.Capacity > maxCap {
			maxCap = s.Capacity
		}
	}
	trunks := make([]*Segment, 0)
	for _, s := range active {
		from := n.Points[s.FromPointID]
		if (from != nil && from.IsReceipt()) || (maxCap > 0 && s.Capacity >= capacityFraction*maxCap) {
			trunks = append(trunks, s)
		}
	}
	return trunks
}

// ComputeDerived recomputes every segment's pressure-drop constant.
// Called after loading or building.
func (n *Network) ComputeDerived() {
	for _, id := range n.SegmentIDs() {
		n.Segments[id].ComputePressureDropConstant()
	}
}

// Clone returns a deep copy of the network. Scenario runs mutate the copy,
// never the original.
func (n *Network) Clone() *Network {
	cp := New(n.Name, n.Description)
	for id, p := range n.Points {
		cp.Points[id] = p.Clone()
	}
	for id, s := range n.Segments {
		cp.Segments[id] = s.Clone()
	}
	return cp
}
