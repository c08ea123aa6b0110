package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swarm_robustness/pkg/config"
	"swarm_robustness/pkg/graph"
	"swarm_robustness/pkg/swarm"
)

var (
	preprocessOutput     string
	preprocessPathPrefix string
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Build the snapshot topology from trajectory CSV files",
	Long: `Reads one CSV file per grid satellite (<path_prefix><i>-<j>.csv), builds
the proximity graph of every timestamp of one revolution and writes the
result to a binary topology file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if preprocessPathPrefix != "" {
			cfg.Data.PathPrefix = preprocessPathPrefix
		}
		start := time.Now()

		topo, err := buildTopology(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		logger.Info("writing topology", zap.String("path", preprocessOutput))
		if err := graph.WriteBinary(preprocessOutput, topo); err != nil {
			return fmt.Errorf("write topology: %w", err)
		}

		fields := []zap.Field{
			zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
			zap.String("output", preprocessOutput),
		}
		if info, err := os.Stat(preprocessOutput); err == nil {
			fields = append(fields, zap.Int64("bytes", info.Size()))
		}
		logger.Info("preprocess done", fields...)
		return nil
	},
}

func init() {
	preprocessCmd.Flags().StringVar(&preprocessOutput, "output", "topology.bin", "Output binary topology file path")
	preprocessCmd.Flags().StringVar(&preprocessPathPrefix, "path-prefix", "", "Override data.path_prefix")
}

// buildTopology loads the trajectory grid and builds one snapshot graph per
// timestamp in [0, revolution), capped by the available samples.
func buildTopology(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*graph.Topology, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ds, err := swarm.LoadGrid(ctx, swarm.GridOptions{
		PathPrefix: cfg.Data.PathPrefix,
		GridSize:   cfg.Data.GridSize,
		Parse:      cfg.ParseOptions(),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load grid: %w", err)
	}

	limit := min(cfg.Topology.Revolution, ds.Len())
	if limit < cfg.Topology.Revolution {
		logger.Warn("fewer samples than one revolution",
			zap.Int("samples", ds.Len()), zap.Int("revolution", cfg.Topology.Revolution))
	}

	topo := &graph.Topology{
		NumNodes:        uint32(ds.NumNodes()),
		ConnectionRange: cfg.Topology.ConnectionRangeKm,
		Snapshots:       make([]graph.Snapshot, 0, limit),
	}
	for t := 0; t < limit; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		positions, err := ds.Positions(t)
		if err != nil {
			return nil, err
		}
		topo.Snapshots = append(topo.Snapshots, graph.Snapshot{
			Timestamp: uint32(t),
			Graph:     graph.Build(positions, topo.ConnectionRange),
		})
	}

	logger.Info("topologies built",
		zap.Int("snapshots", len(topo.Snapshots)),
		zap.Uint32("nodes", topo.NumNodes),
		zap.Float64("connection_range_km", topo.ConnectionRange))
	return topo, nil
}
