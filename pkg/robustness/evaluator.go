package robustness

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives the outcome of every evaluated snapshot.
type Observer interface {
	ObserveSnapshot(m Metrics, pairs int, elapsed time.Duration)
}

// Evaluator runs the pairwise analysis and aggregation for one snapshot at
// a time.
type Evaluator struct {
	cfg      Config
	logger   *zap.Logger
	observer Observer
}

// NewEvaluator creates an Evaluator. logger and observer may be nil.
func NewEvaluator(cfg Config, logger *zap.Logger, observer Observer) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{cfg: cfg, logger: logger, observer: observer}
}

// Config returns the evaluator's configuration.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// Evaluate computes the metrics of snapshot ts over g.
func (e *Evaluator) Evaluate(ts uint32, g GraphProvider) Metrics {
	start := time.Now()

	acc := Analyze(g)
	m := Calculate(ts, g, acc, e.cfg)
	elapsed := time.Since(start)

	e.logger.Debug("snapshot evaluated",
		zap.Uint32("timestamp", ts),
		zap.Int("nodes", acc.NumNodes),
		zap.Int("pairs", acc.PairsVisited()),
		zap.Int("connected_pairs", acc.ConnectedPairs),
		zap.Float64("flow_robustness", m.FlowRobustness),
		zap.Int("criticality", m.Criticality),
		zap.Duration("elapsed", elapsed),
	)
	if e.observer != nil {
		e.observer.ObserveSnapshot(m, acc.PairsVisited(), elapsed)
	}
	return m
}
