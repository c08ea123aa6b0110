package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swarm_robustness/pkg/api"
	"swarm_robustness/pkg/graph"
	"swarm_robustness/pkg/metrics"
	"swarm_robustness/pkg/robustness"
	"swarm_robustness/pkg/temporal"
)

var (
	serveTopology string
	serveAddr     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshot metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		logger.Info("loading topology", zap.String("path", serveTopology))
		topo, err := graph.ReadBinary(serveTopology)
		if err != nil {
			return fmt.Errorf("load topology: %w", err)
		}
		logger.Info("topology loaded",
			zap.Uint32("nodes", topo.NumNodes),
			zap.Int("snapshots", len(topo.Snapshots)),
			zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))

		reg := metrics.NewRegistry()
		evaluator := robustness.NewEvaluator(cfg.Robustness(), logger, reg)
		engine := temporal.NewEngine(topo, evaluator, logger)

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srvCfg := api.DefaultConfig(addr)
		srvCfg.CORSOrigin = cfg.Server.CORSOrigin
		if cfg.Server.ReadTimeout > 0 {
			srvCfg.ReadTimeout = cfg.Server.ReadTimeout
		}
		if cfg.Server.WriteTimeout > 0 {
			srvCfg.SetWriteTimeout(cfg.Server.WriteTimeout)
		}

		handlers := api.NewHandlers(engine, api.StatsFromTopology(engine.Topology()), logger)
		srv := api.NewServer(srvCfg, handlers, reg, logger)

		if err := api.ListenAndServe(cmd.Context(), srv, logger); err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveTopology, "topology", "topology.bin", "Path to preprocessed topology binary")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Override server.addr")
}
