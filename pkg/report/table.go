// Package report collects per-snapshot metrics into an ordered table and
// exports it as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"swarm_robustness/pkg/robustness"
)

// Columns is the CSV header after the leading index column.
var Columns = []string{
	"Timestamp",
	"Flow robustness",
	"Redundancy_avg",
	"Disparity_avg",
	"Modularity",
	"Criticity",
	"RCost",
	"Efficiency",
}

// FileName returns the export file name for a run sampled every sampleStep
// timestamps.
func FileName(sampleStep int) string {
	return fmt.Sprintf("grid_temporal_undivided_sampled_%d.csv", sampleStep)
}

// Table is an append-only, ordered sequence of snapshot metrics.
type Table struct {
	rows []robustness.Metrics
}

// Append adds the metrics of one snapshot.
func (t *Table) Append(m robustness.Metrics) {
	t.rows = append(t.rows, m)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows in insertion order.
func (t *Table) Rows() []robustness.Metrics {
	return append([]robustness.Metrics(nil), t.rows...)
}

// WriteCSV writes the table with a leading unnamed index column. Undefined
// values are written as empty fields and integral floats keep a trailing
// ".0", so the output reads back with the same column types.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{""}, Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, m := range t.rows {
		record := []string{
			strconv.Itoa(i),
			strconv.FormatUint(uint64(m.Timestamp), 10),
			formatFloat(m.FlowRobustness),
			formatFloat(m.RedundancyAvg),
			formatFloat(m.DisparityAvg),
			formatFloat(m.Modularity),
			strconv.Itoa(m.Criticality),
			strconv.Itoa(m.RoutingCost),
			formatFloat(m.Efficiency),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Save writes the table to path through a temporary file and an atomic
// rename. Missing parent directories are created.
func (t *Table) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	if err := t.WriteCSV(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// formatFloat renders f the way a float column is conventionally printed:
// shortest round-trip digits, ".0" on integral values, exponent notation
// outside [1e-4, 1e16).
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == math.Trunc(f) {
		s += ".0"
	}
	return s
}
