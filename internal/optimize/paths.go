package optimize

// enumeratePaths collects simple forward-arc paths from source to sink by
// recursive depth-first traversal, capped by depth and count so path
// enumeration stays bounded on large meshed networks. The caps are
// surfaced through ParamMaxPathDepth / ParamMaxPathsPerPair.
func (r *residualNet) enumeratePaths(source, sink string, maxDepth, maxPaths int) [][]*arc {
	if maxDepth <= 0 {
		maxDepth = 25
	}
	if maxPaths <= 0 {
		maxPaths = 200
	}

	var (
		paths   [][]*arc
		current []*arc
		visited = map[string]bool{source: true}
	)

	var walk func(node string, depth int)
	walk = func(node string, depth int) {
		if len(paths) >= maxPaths || depth > maxDepth {
			return
		}
		if node == sink {
			cp := make([]*arc, len(current))
			copy(cp, current)
			paths = append(paths, cp)
			return
		}
		for _, a := range r.adj[node] {
			if a.isReverse || visited[a.to] {
				continue
			}
			visited[a.to] = true
			current = append(current, a)
			walk(a.to, depth+1)
			current = current[:len(current)-1]
			delete(visited, a.to)
		}
	}

	walk(source, 0)
	return paths
}

// maxUtilization returns the highest capacity utilization (0..1) along a
// path, computed from pushed flow against original capacity.
func maxUtilization(path []*arc) float64 {
	peak := 0.0
	for _, a := range path {
		capacity := a.residual + a.flow()
		if capacity <= 0 {
			continue
		}
		if u := a.flow() / capacity; u > peak {
			peak = u
		}
	}
	return peak
}
