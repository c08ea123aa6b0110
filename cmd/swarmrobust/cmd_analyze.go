package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swarm_robustness/pkg/graph"
	"swarm_robustness/pkg/report"
	"swarm_robustness/pkg/robustness"
	"swarm_robustness/pkg/temporal"
)

var (
	analyzeTopology  string
	analyzeFromCSV   bool
	analyzeStart     int
	analyzeCount     int
	analyzeStep      int
	analyzeExportDir string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute robustness metrics and export them as CSV",
	Long: `Evaluates the sampled snapshots sequentially and writes one row per
snapshot to <export_dir>/grid_temporal_undivided_sampled_<step>.csv.

By default only the first snapshot (t=0) is processed. Use --count 0 to
process every sampled snapshot of the revolution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		var topo *graph.Topology
		var err error
		if analyzeFromCSV {
			topo, err = buildTopology(cmd.Context(), cfg, logger)
		} else {
			logger.Info("loading topology", zap.String("path", analyzeTopology))
			topo, err = graph.ReadBinary(analyzeTopology)
		}
		if err != nil {
			return fmt.Errorf("load topology: %w", err)
		}

		step := cfg.Topology.SampleStep
		if analyzeStep > 0 {
			step = analyzeStep
		}
		limit := len(topo.Snapshots)
		if n := len(topo.Snapshots); n > 0 {
			limit = int(topo.Snapshots[n-1].Timestamp) + 1
		}
		timestamps := temporal.Sample(analyzeStart, analyzeCount, step, limit)
		logger.Info("evaluating snapshots",
			zap.Int("snapshots", len(timestamps)), zap.Int("sample_step", step))

		evaluator := robustness.NewEvaluator(cfg.Robustness(), logger, nil)
		engine := temporal.NewEngine(topo, evaluator, logger)

		var table report.Table
		if err := engine.Run(cmd.Context(), timestamps, &table); err != nil {
			return err
		}

		exportDir := cfg.Output.ExportDir
		if analyzeExportDir != "" {
			exportDir = analyzeExportDir
		}
		out := filepath.Join(exportDir, report.FileName(step))
		if err := table.Save(out); err != nil {
			return fmt.Errorf("export results: %w", err)
		}

		logger.Info("analyze done",
			zap.String("output", out),
			zap.Int("rows", table.Len()),
			zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeTopology, "topology", "topology.bin", "Path to preprocessed topology binary")
	analyzeCmd.Flags().BoolVar(&analyzeFromCSV, "from-csv", false, "Build the topology from the trajectory files instead of --topology")
	analyzeCmd.Flags().IntVar(&analyzeStart, "start", 0, "First timestamp")
	analyzeCmd.Flags().IntVar(&analyzeCount, "count", 1, "Number of snapshots to evaluate (0 = all)")
	analyzeCmd.Flags().IntVar(&analyzeStep, "step", 0, "Sample step (defaults to topology.sample_step)")
	analyzeCmd.Flags().StringVar(&analyzeExportDir, "export-dir", "", "Override output.export_dir")
}
