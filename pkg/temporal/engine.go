// Package temporal evaluates robustness metrics across the snapshots of a
// swarm topology.
package temporal

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"swarm_robustness/pkg/graph"
	"swarm_robustness/pkg/report"
	"swarm_robustness/pkg/robustness"
)

// Engine evaluates snapshots of one topology and caches the results.
// It is safe for concurrent use. Concurrent requests for the same uncached
// snapshot share a single evaluation; each evaluation itself is sequential.
type Engine struct {
	topo      *graph.Topology
	evaluator *robustness.Evaluator
	logger    *zap.Logger

	mu     sync.RWMutex
	cache  map[uint32]robustness.Metrics
	flight singleflight.Group
}

// NewEngine creates an Engine over topo. logger may be nil.
func NewEngine(topo *graph.Topology, evaluator *robustness.Evaluator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		topo:      topo,
		evaluator: evaluator,
		logger:    logger,
		cache:     make(map[uint32]robustness.Metrics),
	}
}

// Topology returns the underlying topology.
func (e *Engine) Topology() *graph.Topology {
	return e.topo
}

// Metrics returns the metrics of snapshot ts, evaluating it on first use.
// Returns graph.ErrSnapshotNotFound for unknown timestamps.
//
// A caller whose ctx ends while the evaluation is running gets ctx.Err();
// the evaluation itself completes and is cached for later callers.
func (e *Engine) Metrics(ctx context.Context, ts uint32) (robustness.Metrics, error) {
	if err := ctx.Err(); err != nil {
		return robustness.Metrics{}, err
	}
	if m, ok := e.cached(ts); ok {
		return m, nil
	}

	g, err := e.topo.Lookup(ts)
	if err != nil {
		return robustness.Metrics{}, fmt.Errorf("timestamp %d: %w", ts, err)
	}

	ch := e.flight.DoChan(strconv.FormatUint(uint64(ts), 10), func() (interface{}, error) {
		if m, ok := e.cached(ts); ok {
			return m, nil
		}
		m := e.evaluator.Evaluate(ts, g)
		if ce := e.logger.Check(zap.DebugLevel, "snapshot components"); ce != nil {
			sizes := graph.ComponentSizes(g)
			ce.Write(
				zap.Uint32("timestamp", ts),
				zap.Int("components", len(sizes)),
				zap.Ints("sizes", sizes),
				zap.Int("connected_pairs", graph.ConnectedPairs(g)),
			)
		}
		e.mu.Lock()
		e.cache[ts] = m
		e.mu.Unlock()
		return m, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return robustness.Metrics{}, res.Err
		}
		if res.Shared {
			e.logger.Debug("joined in-flight evaluation", zap.Uint32("timestamp", ts))
		}
		return res.Val.(robustness.Metrics), nil
	case <-ctx.Done():
		return robustness.Metrics{}, ctx.Err()
	}
}

func (e *Engine) cached(ts uint32) (robustness.Metrics, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.cache[ts]
	return m, ok
}

// Run evaluates the given timestamps in order and appends each result to
// table. The context is checked between snapshots.
func (e *Engine) Run(ctx context.Context, timestamps []uint32, table *report.Table) error {
	for i, ts := range timestamps {
		m, err := e.Metrics(ctx, ts)
		if err != nil {
			return err
		}
		table.Append(m)

		e.logger.Info("snapshot processed",
			zap.Uint32("timestamp", ts),
			zap.Int("done", i+1),
			zap.Int("total", len(timestamps)),
		)
	}
	return nil
}

// Sample returns up to count timestamps start, start+step, ... that are
// below limit. count <= 0 means no count limit.
func Sample(start, count, step, limit int) []uint32 {
	if step <= 0 || start < 0 {
		return nil
	}
	var out []uint32
	for t := start; t < limit; t += step {
		if count > 0 && len(out) == count {
			break
		}
		out = append(out, uint32(t))
	}
	return out
}
