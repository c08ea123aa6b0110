package robustness

import (
	"encoding/json"
	"math"
)

const (
	// DefaultCriticalityThreshold is the betweenness score from which a node
	// counts as critical.
	DefaultCriticalityThreshold = 0.05
	// DefaultRoutingCostFactor converts the one-way hop total into a
	// round-trip routing cost.
	DefaultRoutingCostFactor = 2
)

// Config tunes the aggregate metrics.
type Config struct {
	CriticalityThreshold float64
	RoutingCostFactor    int
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		CriticalityThreshold: DefaultCriticalityThreshold,
		RoutingCostFactor:    DefaultRoutingCostFactor,
	}
}

// Metrics is the robustness profile of one snapshot. Undefined ratios
// (no pairs, no connected pairs, no edges) are NaN.
type Metrics struct {
	Timestamp      uint32
	FlowRobustness float64
	RedundancyAvg  float64
	DisparityAvg   float64
	Modularity     float64
	Criticality    int
	RoutingCost    int
	Efficiency     float64
}

// metricsJSON is the wire form of Metrics; NaN is not valid JSON and is
// encoded as null.
type metricsJSON struct {
	Timestamp      uint32   `json:"timestamp"`
	FlowRobustness *float64 `json:"flow_robustness"`
	RedundancyAvg  *float64 `json:"redundancy_avg"`
	DisparityAvg   *float64 `json:"disparity_avg"`
	Modularity     *float64 `json:"modularity"`
	Criticality    int      `json:"criticality"`
	RoutingCost    int      `json:"routing_cost"`
	Efficiency     *float64 `json:"efficiency"`
}

// MarshalJSON implements json.Marshaler.
func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricsJSON{
		Timestamp:      m.Timestamp,
		FlowRobustness: nullable(m.FlowRobustness),
		RedundancyAvg:  nullable(m.RedundancyAvg),
		DisparityAvg:   nullable(m.DisparityAvg),
		Modularity:     nullable(m.Modularity),
		Criticality:    m.Criticality,
		RoutingCost:    m.RoutingCost,
		Efficiency:     nullable(m.Efficiency),
	})
}

// UnmarshalJSON implements json.Unmarshaler; null becomes NaN.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var w metricsJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Metrics{
		Timestamp:      w.Timestamp,
		FlowRobustness: orNaN(w.FlowRobustness),
		RedundancyAvg:  orNaN(w.RedundancyAvg),
		DisparityAvg:   orNaN(w.DisparityAvg),
		Modularity:     orNaN(w.Modularity),
		Criticality:    w.Criticality,
		RoutingCost:    w.RoutingCost,
		Efficiency:     orNaN(w.Efficiency),
	}
	return nil
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func orNaN(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

// Calculate reduces the pairwise results of acc and the whole-graph queries
// on g into the metrics of snapshot ts.
func Calculate(ts uint32, g GraphProvider, acc *Accumulator, cfg Config) Metrics {
	m := Metrics{
		Timestamp:      ts,
		FlowRobustness: math.NaN(),
		RedundancyAvg:  mean(acc.Redundancies),
		DisparityAvg:   mean(acc.Disparities),
		Modularity:     Modularity(g),
		Criticality:    Criticality(g, cfg.CriticalityThreshold),
		RoutingCost:    cfg.RoutingCostFactor * acc.TotalSPL,
		Efficiency:     math.NaN(),
	}

	if universe := acc.NumNodes * (acc.NumNodes - 1) / 2; universe > 0 {
		m.FlowRobustness = float64(acc.ConnectedPairs) / float64(universe)
		m.Efficiency = acc.TotalEfficiency / float64(universe)
	}
	return m
}

// Criticality counts nodes whose betweenness centrality is at least
// threshold.
func Criticality(g GraphProvider, threshold float64) int {
	count := 0
	for _, bc := range g.BetweennessCentrality() {
		if bc >= threshold {
			count++
		}
	}
	return count
}

func mean[T int | float64](xs []T) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	return sum / float64(len(xs))
}
