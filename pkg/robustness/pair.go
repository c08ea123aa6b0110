package robustness

// PairKey is the canonical form of an unordered node pair: Lo < Hi.
type PairKey struct {
	Lo, Hi uint32
}

// NewPairKey returns the canonical key for {u, v}.
func NewPairKey(u, v uint32) PairKey {
	if u > v {
		u, v = v, u
	}
	return PairKey{Lo: u, Hi: v}
}

// PairResult is the analysis outcome for one unordered pair.
// SPL, Redundancy and Disparity are meaningful only when Connected.
type PairResult struct {
	Key        PairKey
	Connected  bool
	SPL        int
	Redundancy int
	Disparity  float64
	Efficiency float64
}
