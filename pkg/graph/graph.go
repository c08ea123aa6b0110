package graph

import (
	"sort"

	"swarm_robustness/pkg/geo"
)

// Graph is an undirected, unweighted snapshot graph in CSR (Compressed
// Sparse Row) format. Every undirected edge {u,v} is stored twice, once in
// each endpoint's adjacency range. Adjacency ranges are sorted by head.
type Graph struct {
	NumNodes uint32
	NumEdges uint32   // undirected edge count
	FirstOut []uint32 // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] index Head for node i
	Head     []uint32 // len: 2 * NumEdges; neighbour of each adjacency entry
	Pos      []geo.Vec3

	// comp[i] is the connected component label of node i.
	comp []uint32
}

// EdgesFrom returns the range of adjacency indices for node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// Neighbors returns the sorted neighbours of u. The slice aliases the graph.
func (g *Graph) Neighbors(u uint32) []uint32 {
	start, end := g.EdgesFrom(u)
	return g.Head[start:end]
}

// Nodes returns all node ids in ascending order.
func (g *Graph) Nodes() []uint32 {
	nodes := make([]uint32, g.NumNodes)
	for i := range nodes {
		nodes[i] = uint32(i)
	}
	return nodes
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v uint32) bool {
	if u >= g.NumNodes || v >= g.NumNodes {
		return false
	}
	adj := g.Neighbors(u)
	i := sort.Search(len(adj), func(i int) bool { return adj[i] >= v })
	return i < len(adj) && adj[i] == v
}

// Degree returns the number of neighbours of n.
func (g *Graph) Degree(n uint32) int {
	if n >= g.NumNodes {
		return 0
	}
	start, end := g.EdgesFrom(n)
	return int(end - start)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return int(g.NumEdges)
}

// HasPath reports whether u and v lie in the same connected component.
func (g *Graph) HasPath(u, v uint32) bool {
	if u >= g.NumNodes || v >= g.NumNodes {
		return false
	}
	comp := g.comp
	if comp == nil {
		comp = componentLabels(g)
	}
	return comp[u] == comp[v]
}
