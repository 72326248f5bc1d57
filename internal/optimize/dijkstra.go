package optimize

import (
	"container/heap"
	"math"
)

// =============================================================================
// Dijkstra Cheapest Path
// =============================================================================
//
// The minimize-cost graph formulation repeatedly needs the cheapest path
// from any receipt with remaining supply to a delivery, over arcs with
// positive residual capacity. Transportation costs are non-negative by
// validation, and reverse arcs (negative cost) are excluded: the graph
// formulation is a greedy heuristic that never unwinds earlier pushes,
// matching its role as a fast reference oracle rather than an exact
// min-cost-flow solver.
//
// The priority queue breaks distance ties by node id, keeping the search
// deterministic.
// =============================================================================

type pqItem struct {
	node     string
	distance float64
	index    int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].distance != pq[j].distance {
		return pq[i].distance < pq[j].distance
	}
	return pq[i].node < pq[j].node
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// cheapestPath runs a multi-source Dijkstra from the given sources and
// returns the cheapest arc path to the sink, or nil when the sink is
// unreachable through positive residual, forward-direction arcs.
func (r *residualNet) cheapestPath(sources []string, sink string) []*arc {
	dist := make(map[string]float64, len(r.nodes))
	via := make(map[string]*arc)
	for _, id := range r.nodes {
		dist[id] = math.Inf(1)
	}

	pq := make(priorityQueue, 0, len(sources))
	for _, s := range sources {
		if _, ok := dist[s]; !ok {
			continue
		}
		dist[s] = 0
		pq = append(pq, &pqItem{node: s, distance: 0})
	}
	heap.Init(&pq)

	settled := make(map[string]bool)
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*pqItem)
		if settled[item.node] {
			continue
		}
		settled[item.node] = true
		if item.node == sink {
			break
		}
		for _, a := range r.adj[item.node] {
			if a.isReverse || a.residual <= flowEps || settled[a.to] {
				continue
			}
			next := item.distance + a.cost
			if next < dist[a.to] {
				dist[a.to] = next
				via[a.to] = a
				heap.Push(&pq, &pqItem{node: a.to, distance: next})
			}
		}
	}

	if math.IsInf(dist[sink], 1) {
		return nil
	}

	var path []*arc
	for node := sink; via[node] != nil; node = via[node].from {
		path = append(path, via[node])
	}
	// Reverse into source-to-sink order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
