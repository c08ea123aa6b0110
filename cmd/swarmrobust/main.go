// Command swarmrobust computes robustness metrics of a satellite swarm from
// its per-satellite trajectory files.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swarm_robustness/pkg/config"
	"swarm_robustness/pkg/logging"
)

var (
	// Global flags
	configPath string
	logLevel   string

	// Populated by PersistentPreRunE.
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "swarmrobust",
	Short: "Robustness metrics for satellite swarm topologies",
	Long: `swarmrobust turns per-satellite position time series into proximity
graphs and computes flow robustness, redundancy, disparity, modularity,
criticality, routing cost and efficiency for each snapshot.

Typical pipeline:
  swarmrobust preprocess --output topology.bin
  swarmrobust analyze --topology topology.bin
  swarmrobust serve --topology topology.bin`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		logger, err = logging.NewLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		logger = logger.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level: debug|info|warn|error")

	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
