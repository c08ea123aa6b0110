package graph

// bfsState holds the result of a breadth-first search from one source.
type bfsState struct {
	dist  []int32    // hop distance from the source, -1 if unreachable
	sigma []float64  // number of shortest paths from the source
	preds [][]uint32 // shortest-path predecessors
	order []uint32   // visited nodes in non-decreasing distance
}

// bfs runs an unweighted single-source shortest-path search that records
// every shortest-path predecessor, as required by path enumeration and by
// Brandes' accumulation.
func (g *Graph) bfs(src uint32) *bfsState {
	n := g.NumNodes
	st := &bfsState{
		dist:  make([]int32, n),
		sigma: make([]float64, n),
		preds: make([][]uint32, n),
		order: make([]uint32, 0, n),
	}
	for i := range st.dist {
		st.dist[i] = -1
	}
	st.dist[src] = 0
	st.sigma[src] = 1
	st.order = append(st.order, src)

	// order doubles as the FIFO queue.
	for i := 0; i < len(st.order); i++ {
		v := st.order[i]
		for _, w := range g.Neighbors(v) {
			if st.dist[w] < 0 {
				st.dist[w] = st.dist[v] + 1
				st.order = append(st.order, w)
			}
			if st.dist[w] == st.dist[v]+1 {
				st.sigma[w] += st.sigma[v]
				st.preds[w] = append(st.preds[w], v)
			}
		}
	}
	return st
}

// ShortestPathLength returns the hop distance between u and v. The boolean
// is false when no path exists.
func (g *Graph) ShortestPathLength(u, v uint32) (int, bool) {
	if !g.HasPath(u, v) {
		return 0, false
	}
	if u == v {
		return 0, true
	}

	dist := make([]int32, g.NumNodes)
	for i := range dist {
		dist[i] = -1
	}
	dist[u] = 0
	queue := []uint32{u}
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		for _, w := range g.Neighbors(x) {
			if dist[w] >= 0 {
				continue
			}
			dist[w] = dist[x] + 1
			if w == v {
				return int(dist[w]), true
			}
			queue = append(queue, w)
		}
	}
	return 0, false
}

// AllShortestPaths returns every minimum-hop path from u to v, each as a
// node sequence starting at u and ending at v. Returns nil if v is
// unreachable from u.
func (g *Graph) AllShortestPaths(u, v uint32) [][]uint32 {
	if !g.HasPath(u, v) {
		return nil
	}
	if u == v {
		return [][]uint32{{u}}
	}

	st := g.bfs(u)
	length := int(st.dist[v])

	var paths [][]uint32
	path := make([]uint32, length+1)

	// Walk the predecessor DAG back from v; depth equals the BFS distance
	// of the node placed at path[depth].
	var walk func(node uint32, depth int)
	walk = func(node uint32, depth int) {
		path[depth] = node
		if depth == 0 {
			paths = append(paths, append([]uint32(nil), path...))
			return
		}
		for _, p := range st.preds[node] {
			walk(p, depth-1)
		}
	}
	walk(v, length)

	return paths
}
