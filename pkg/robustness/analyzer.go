package robustness

// Accumulator holds the running totals of one pairwise analysis. It is owned
// by a single Analyze call and never shared.
type Accumulator struct {
	NumNodes        int
	ConnectedPairs  int
	Redundancies    []int     // one entry per connected pair
	Disparities     []float64 // one entry per connected pair
	TotalSPL        int
	TotalEfficiency float64
	Pairs           []PairResult
}

// PairsVisited returns the number of unordered pairs analysed.
func (a *Accumulator) PairsVisited() int {
	return len(a.Pairs)
}

func (a *Accumulator) add(r PairResult) {
	a.Pairs = append(a.Pairs, r)
	a.TotalEfficiency += r.Efficiency
	if !r.Connected {
		return
	}
	a.ConnectedPairs++
	a.TotalSPL += r.SPL
	a.Redundancies = append(a.Redundancies, r.Redundancy)
	a.Disparities = append(a.Disparities, r.Disparity)
}

// Analyze visits every unordered pair of distinct nodes of g exactly once
// and accumulates reachability, shortest-path length, redundancy, disparity
// and pair efficiency. Duplicate node ids reported by g are ignored.
func Analyze(g GraphProvider) *Accumulator {
	nodes := distinctNodes(g.Nodes())
	n := len(nodes)

	acc := &Accumulator{
		NumNodes: n,
		Pairs:    make([]PairResult, 0, n*(n-1)/2),
	}

	visited := make(map[PairKey]struct{}, n*(n-1)/2)
	for _, u := range nodes {
		for _, v := range nodes {
			if u == v {
				continue
			}
			key := NewPairKey(u, v)
			if _, ok := visited[key]; ok {
				continue
			}
			visited[key] = struct{}{}
			acc.add(analyzePair(g, key))
		}
	}
	return acc
}

func analyzePair(g GraphProvider, key PairKey) PairResult {
	r := PairResult{Key: key}
	if !g.HasPath(key.Lo, key.Hi) {
		return r
	}
	spl, ok := g.ShortestPathLength(key.Lo, key.Hi)
	if !ok || spl == 0 {
		return r
	}
	paths := g.AllShortestPaths(key.Lo, key.Hi)

	r.Connected = true
	r.SPL = spl
	r.Efficiency = 1 / float64(spl)
	r.Redundancy = len(paths)
	r.Disparity = PairDisparity(paths, spl)
	return r
}

func distinctNodes(nodes []uint32) []uint32 {
	seen := make(map[uint32]struct{}, len(nodes))
	out := make([]uint32, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
