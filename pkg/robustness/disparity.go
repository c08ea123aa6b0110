package robustness

// PairDisparity returns the mean edge-disjointness of a pair's shortest
// paths. Every unordered combination of two paths contributes
// 1 - shared/spl, where shared counts the undirected edges both paths use.
// A single path has disparity 0.
func PairDisparity(paths [][]uint32, spl int) float64 {
	if len(paths) <= 1 || spl <= 0 {
		return 0.0
	}

	edgeSets := make([]map[PairKey]struct{}, len(paths))
	for i, p := range paths {
		set := make(map[PairKey]struct{}, len(p))
		for k := 1; k < len(p); k++ {
			set[NewPairKey(p[k-1], p[k])] = struct{}{}
		}
		edgeSets[i] = set
	}

	var sum float64
	combos := 0
	for i := 0; i < len(edgeSets); i++ {
		for j := i + 1; j < len(edgeSets); j++ {
			shared := 0
			for e := range edgeSets[i] {
				if _, ok := edgeSets[j][e]; ok {
					shared++
				}
			}
			sum += 1 - float64(shared)/float64(spl)
			combos++
		}
	}
	return sum / float64(combos)
}
