package graph

import (
	"sort"

	"github.com/tidwall/rtree"

	"swarm_robustness/pkg/geo"
)

// Edge is an undirected node pair.
type Edge struct {
	U, V uint32
}

// Build creates the proximity graph of a swarm snapshot: nodes u and v are
// adjacent when their distance is at most connectionRange.
//
// Candidates come from an R-tree over the XY projection queried with a box
// of ±connectionRange, which is a superset of the 3D ball. The exact 3D
// distance decides.
func Build(positions []geo.Vec3, connectionRange float64) *Graph {
	n := uint32(len(positions))
	if n == 0 {
		return &Graph{FirstOut: make([]uint32, 1)}
	}

	var tr rtree.RTreeG[uint32]
	for i, p := range positions {
		pt := [2]float64{p.X, p.Y}
		tr.Insert(pt, pt, uint32(i))
	}

	var edges []Edge
	for i, p := range positions {
		u := uint32(i)
		lo := [2]float64{p.X - connectionRange, p.Y - connectionRange}
		hi := [2]float64{p.X + connectionRange, p.Y + connectionRange}
		tr.Search(lo, hi, func(_, _ [2]float64, v uint32) bool {
			// Each pair is emitted once, from its lower endpoint.
			if v > u && geo.WithinRange(p, positions[v], connectionRange) {
				edges = append(edges, Edge{U: u, V: v})
			}
			return true
		})
	}

	g := FromEdges(n, edges)
	g.Pos = append([]geo.Vec3(nil), positions...)
	return g
}

// FromEdges builds a CSR graph with n nodes from an undirected edge list.
// Self-loops, duplicates and out-of-range endpoints are dropped.
func FromEdges(n uint32, edges []Edge) *Graph {
	// Step 1: Canonicalise to u < v and deduplicate.
	canon := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.U == e.V || e.U >= n || e.V >= n {
			continue
		}
		if e.U > e.V {
			e.U, e.V = e.V, e.U
		}
		canon = append(canon, e)
	}
	sort.Slice(canon, func(i, j int) bool {
		if canon[i].U != canon[j].U {
			return canon[i].U < canon[j].U
		}
		return canon[i].V < canon[j].V
	})
	uniq := canon[:0]
	for i, e := range canon {
		if i > 0 && e == canon[i-1] {
			continue
		}
		uniq = append(uniq, e)
	}

	// Step 2: Count degrees and prefix-sum into FirstOut.
	firstOut := make([]uint32, n+1)
	for _, e := range uniq {
		firstOut[e.U+1]++
		firstOut[e.V+1]++
	}
	for i := uint32(1); i <= n; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Step 3: Place both directions.
	head := make([]uint32, 2*len(uniq))
	pos := make([]uint32, n)
	copy(pos, firstOut[:n])
	for _, e := range uniq {
		head[pos[e.U]] = e.V
		pos[e.U]++
		head[pos[e.V]] = e.U
		pos[e.V]++
	}

	// Step 4: Sort each adjacency range so HasEdge can binary search.
	for u := uint32(0); u < n; u++ {
		adj := head[firstOut[u]:firstOut[u+1]]
		sort.Slice(adj, func(i, j int) bool { return adj[i] < adj[j] })
	}

	g := &Graph{
		NumNodes: n,
		NumEdges: uint32(len(uniq)),
		FirstOut: firstOut,
		Head:     head,
	}
	g.comp = componentLabels(g)
	return g
}

// Edges returns every undirected edge once, as {u, v} with u < v.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.NumEdges)
	for u := uint32(0); u < g.NumNodes; u++ {
		for _, v := range g.Neighbors(u) {
			if u < v {
				edges = append(edges, Edge{U: u, V: v})
			}
		}
	}
	return edges
}
