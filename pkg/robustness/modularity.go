package robustness

import "math"

// Modularity computes Newman modularity with every node assigned to one
// community, so the community indicator is always 1:
//
//	Q = 1/(2m) * Σ_ij (A_ij - k_i*k_j/(2m))
//
// over all ordered node pairs including i = j. With a single community the
// result is 0 up to floating-point rounding for any graph with edges. A graph
// without edges yields NaN.
func Modularity(g GraphProvider) float64 {
	m := g.EdgeCount()
	if m == 0 {
		return math.NaN()
	}
	twoM := float64(2 * m)

	nodes := distinctNodes(g.Nodes())
	deg := make([]float64, len(nodes))
	for i, n := range nodes {
		deg[i] = float64(g.Degree(n))
	}

	var sum float64
	for i, ni := range nodes {
		for j, nj := range nodes {
			var adj float64
			if g.HasEdge(ni, nj) {
				adj = 1
			}
			sum += adj - deg[i]*deg[j]/twoM
		}
	}
	return sum / twoM
}
