package graph

import "sort"

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient: rank stays below 32
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

func unionEdges(g *Graph) *UnionFind {
	uf := NewUnionFind(g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		for _, v := range g.Neighbors(u) {
			if u < v {
				uf.Union(u, v)
			}
		}
	}
	return uf
}

// componentLabels returns, per node, the representative of its component.
func componentLabels(g *Graph) []uint32 {
	uf := unionEdges(g)
	labels := make([]uint32, g.NumNodes)
	for i := range labels {
		labels[i] = uf.Find(uint32(i))
	}
	return labels
}

// ComponentSizes returns the size of every connected component, largest first.
func ComponentSizes(g *Graph) []int {
	uf := unionEdges(g)
	var sizes []int
	for i := uint32(0); i < g.NumNodes; i++ {
		if uf.Find(i) == i {
			sizes = append(sizes, int(uf.Size(i)))
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}

// ConnectedPairs returns the number of unordered node pairs joined by a
// path: the sum of s·(s−1)/2 over component sizes s.
func ConnectedPairs(g *Graph) int {
	total := 0
	for _, s := range ComponentSizes(g) {
		total += s * (s - 1) / 2
	}
	return total
}
