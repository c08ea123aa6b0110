// Package robustness computes the per-snapshot robustness profile of a swarm
// graph: pairwise shortest-path analysis followed by aggregation into flow
// robustness, redundancy, disparity, modularity, criticality, routing cost
// and efficiency.
package robustness

// GraphProvider is the read-only view of one snapshot graph that the
// analysis needs. *graph.Graph satisfies it.
type GraphProvider interface {
	Nodes() []uint32
	HasEdge(u, v uint32) bool
	Degree(n uint32) int
	EdgeCount() int
	ShortestPathLength(u, v uint32) (int, bool)
	AllShortestPaths(u, v uint32) [][]uint32
	HasPath(u, v uint32) bool
	BetweennessCentrality() map[uint32]float64
}
