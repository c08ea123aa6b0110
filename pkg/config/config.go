// Package config loads the YAML configuration shared by the swarmrobust
// subcommands.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"swarm_robustness/pkg/robustness"
	"swarm_robustness/pkg/swarm"
)

// Default values.
const (
	DefaultGridSize        = 7
	DefaultConnectionRange = 30.0 // km
	DefaultRevolution      = 1800
	DefaultSampleStep      = 12
	DefaultExportDir       = "output/data"
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
)

var validate = validator.New()

// Config is the root of config.yaml.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Topology TopologyConfig `yaml:"topology"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

// DataConfig locates the per-satellite trajectory files.
type DataConfig struct {
	// PathPrefix is prepended to "<i>-<j>.csv" for grid satellite (i, j).
	PathPrefix string        `yaml:"path_prefix"`
	GridSize   int           `yaml:"grid_size" validate:"gte=1"`
	HeaderRows int           `yaml:"header_rows" validate:"gte=0"`
	Columns    ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig names the position columns.
type ColumnsConfig struct {
	X string `yaml:"x" validate:"required"`
	Y string `yaml:"y" validate:"required"`
	Z string `yaml:"z" validate:"required"`
}

// TopologyConfig controls snapshot graph construction.
type TopologyConfig struct {
	ConnectionRangeKm float64 `yaml:"connection_range_km" validate:"gt=0"`
	// Revolution is the number of timestamps in one orbital period.
	Revolution int `yaml:"revolution" validate:"gte=1"`
	SampleStep int `yaml:"sample_step" validate:"gte=1"`
}

// MetricsConfig tunes the aggregate metrics.
type MetricsConfig struct {
	CriticalityThreshold float64 `yaml:"criticality_threshold" validate:"gte=0,lte=1"`
	RoutingCostFactor    int     `yaml:"routing_cost_factor" validate:"gte=1"`
}

// OutputConfig controls result export.
type OutputConfig struct {
	ExportDir string `yaml:"export_dir" validate:"required"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
	// CORSOrigin is the allowed origin; empty allows any.
	CORSOrigin string `yaml:"cors_origin"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			GridSize:   DefaultGridSize,
			HeaderRows: swarm.DefaultHeaderRows,
			Columns: ColumnsConfig{
				X: swarm.DefaultColumnX,
				Y: swarm.DefaultColumnY,
				Z: swarm.DefaultColumnZ,
			},
		},
		Topology: TopologyConfig{
			ConnectionRangeKm: DefaultConnectionRange,
			Revolution:        DefaultRevolution,
			SampleStep:        DefaultSampleStep,
		},
		Metrics: MetricsConfig{
			CriticalityThreshold: robustness.DefaultCriticalityThreshold,
			RoutingCostFactor:    robustness.DefaultRoutingCostFactor,
		},
		Output: OutputConfig{ExportDir: DefaultExportDir},
		Log:    LogConfig{Level: "info", Format: "json"},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
	}
}

// Load reads and parses the config file at path. Missing fields keep their
// defaults; the result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks the struct constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Robustness returns the metric calculator configuration.
func (c *Config) Robustness() robustness.Config {
	return robustness.Config{
		CriticalityThreshold: c.Metrics.CriticalityThreshold,
		RoutingCostFactor:    c.Metrics.RoutingCostFactor,
	}
}

// ParseOptions returns the trajectory file layout.
func (c *Config) ParseOptions() swarm.ParseOptions {
	return swarm.ParseOptions{
		HeaderRows: c.Data.HeaderRows,
		Columns: swarm.Columns{
			X: c.Data.Columns.X,
			Y: c.Data.Columns.Y,
			Z: c.Data.Columns.Z,
		},
	}
}
