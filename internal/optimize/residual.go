package optimize

import (
	"sort"

	"gaspipe/internal/network"
)

// =============================================================================
// Residual Network
// =============================================================================
//
// residualNet is the substrate for the graph-algorithmic formulations. Each
// active segment contributes a forward arc with the segment's capacity and
// transportation cost and a paired reverse arc with zero capacity and
// negated cost; pushing flow moves residual capacity between the pair so
// augmenting algorithms can undo earlier decisions. A bidirectional segment
// contributes a second forward arc in the opposite direction sharing the
// same segment id; its flow counts negatively toward the segment.
//
// # Determinism
//
// Adjacency lists are sorted by (destination id, segment id) at build time
// and node iteration uses the sorted node slice, so path search order (and
// therefore the solution) is reproducible for a given network.
// =============================================================================

// flowEps is the threshold below which residual capacity and pushed flow
// are treated as zero, per the 0.01 MMscfd convention.
const flowEps = 0.01

type arc struct {
	from, to  string
	residual  float64 // remaining pushable capacity
	cost      float64 // $/MMscf along this direction
	segmentID string
	sign      float64 // contribution of this arc's flow to the segment's signed flow
	isReverse bool
	pair      *arc
}

// flow pushed through a forward arc so far.
func (a *arc) flow() float64 {
	if a.isReverse {
		return 0
	}
	return a.pair.residual
}

type residualNet struct {
	nodes []string // sorted
	adj   map[string][]*arc
}

// newResidualNet builds the residual structure from the active subnetwork.
func newResidualNet(net *network.Network) *residualNet {
	r := &residualNet{adj: make(map[string][]*arc)}

	seen := make(map[string]bool)
	addNode := func(id string) {
		if !seen[id] {
			seen[id] = true
			r.nodes = append(r.nodes, id)
		}
	}

	addArcPair := func(from, to string, capacity, cost float64, segID string, sign float64) {
		fwd := &arc{from: from, to: to, residual: capacity, cost: cost, segmentID: segID, sign: sign}
		rev := &arc{from: to, to: from, residual: 0, cost: -cost, segmentID: segID, sign: -sign, isReverse: true}
		fwd.pair, rev.pair = rev, fwd
		r.adj[from] = append(r.adj[from], fwd)
		r.adj[to] = append(r.adj[to], rev)
	}

	for _, p := range net.ActivePoints() {
		addNode(p.ID)
	}
	for _, seg := range net.ActiveSegments() {
		addArcPair(seg.FromPointID, seg.ToPointID, seg.Capacity, seg.TransportationCost, seg.ID, 1)
		if seg.IsBidirectional {
			addArcPair(seg.ToPointID, seg.FromPointID, seg.Capacity, seg.TransportationCost, seg.ID, -1)
		}
	}

	sort.Strings(r.nodes)
	for id := range r.adj {
		arcs := r.adj[id]
		sort.Slice(arcs, func(i, j int) bool {
			if arcs[i].to != arcs[j].to {
				return arcs[i].to < arcs[j].to
			}
			if arcs[i].segmentID != arcs[j].segmentID {
				return arcs[i].segmentID < arcs[j].segmentID
			}
			return !arcs[i].isReverse && arcs[j].isReverse
		})
	}
	return r
}

// findPath locates a simple path with positive residual from source to sink
// using iterative depth-first search over the sorted adjacency lists.
// Reverse arcs participate, giving the search Ford-Fulkerson semantics.
// Returns nil when no augmenting path exists.
func (r *residualNet) findPath(source, sink string) []*arc {
	type frame struct {
		node string
		next int
	}
	visited := map[string]bool{source: true}
	stack := []frame{{node: source}}
	var path []*arc

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		arcs := r.adj[top.node]
		advanced := false
		for top.next < len(arcs) {
			a := arcs[top.next]
			top.next++
			if a.residual <= flowEps || visited[a.to] {
				continue
			}
			visited[a.to] = true
			path = append(path, a)
			if a.to == sink {
				return path
			}
			stack = append(stack, frame{node: a.to})
			advanced = true
			break
		}
		if !advanced {
			stack = stack[:len(stack)-1]
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}
	return nil
}

// bottleneck returns the minimum residual along a path.
func bottleneck(path []*arc) float64 {
	if len(path) == 0 {
		return 0
	}
	minResidual := path[0].residual
	for _, a := range path[1:] {
		if a.residual < minResidual {
			minResidual = a.residual
		}
	}
	return minResidual
}

// augment pushes amount along the path, updating residuals on both sides
// of every arc pair.
func augment(path []*arc, amount float64) {
	for _, a := range path {
		a.residual -= amount
		a.pair.residual += amount
	}
}

// pathCost sums the per-unit transportation cost along a path.
func pathCost(path []*arc) float64 {
	total := 0.0
	for _, a := range path {
		total += a.cost
	}
	return total
}

// flows extracts the signed per-segment flow. Opposing pushes on a
// bidirectional segment's two arcs cancel arithmetically.
func (r *residualNet) flows() map[string]float64 {
	out := make(map[string]float64)
	for _, id := range r.nodes {
		for _, a := range r.adj[id] {
			if a.isReverse {
				continue
			}
			if f := a.flow(); f > 0 {
				out[a.segmentID] += a.sign * f
			}
		}
	}
	return out
}
