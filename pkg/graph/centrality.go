package graph

// BetweennessCentrality computes normalized shortest-path betweenness for
// every node using Brandes' algorithm.
//
// Dependencies are accumulated from every source, so each unordered pair is
// counted in both directions; the 1/((n-1)(n-2)) factor therefore yields the
// fraction of pairs {s,t} (s,t ≠ v) whose shortest paths pass through v.
// Graphs with two nodes or fewer are left unscaled (all scores are zero).
func (g *Graph) BetweennessCentrality() map[uint32]float64 {
	n := g.NumNodes
	cb := make([]float64, n)
	delta := make([]float64, n)

	for s := uint32(0); s < n; s++ {
		st := g.bfs(s)
		for i := range delta {
			delta[i] = 0
		}

		// Back-propagation in reverse BFS order.
		for i := len(st.order) - 1; i >= 0; i-- {
			w := st.order[i]
			for _, v := range st.preds[w] {
				delta[v] += (st.sigma[v] / st.sigma[w]) * (1 + delta[w])
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}

	if n > 2 {
		scale := 1 / (float64(n-1) * float64(n-2))
		for i := range cb {
			cb[i] *= scale
		}
	}

	out := make(map[uint32]float64, n)
	for i, c := range cb {
		out[uint32(i)] = c
	}
	return out
}
