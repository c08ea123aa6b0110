package swarm

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"swarm_robustness/pkg/geo"
)

// Default column names of the orbit propagator export.
const (
	DefaultColumnX    = "xF[km]"
	DefaultColumnY    = "yF[km]"
	DefaultColumnZ    = "zF[km]"
	DefaultHeaderRows = 7
)

// ErrMissingColumn is returned when a position column is absent from the header.
var ErrMissingColumn = errors.New("missing position column")

// Columns names the CSV header fields holding each coordinate.
type Columns struct {
	X, Y, Z string
}

// IsZero returns true if no column names are set.
func (c Columns) IsZero() bool {
	return c.X == "" && c.Y == "" && c.Z == ""
}

// ParseOptions configures trajectory parsing.
type ParseOptions struct {
	// HeaderRows is the number of metadata lines preceding the CSV header.
	HeaderRows int
	Columns    Columns
}

// DefaultParseOptions returns the layout of the reference scenario files.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		HeaderRows: DefaultHeaderRows,
		Columns:    Columns{X: DefaultColumnX, Y: DefaultColumnY, Z: DefaultColumnZ},
	}
}

// ParseTrajectory reads one satellite's position time series. The first
// opts.HeaderRows lines are skipped, the next line is the column header and
// every following row is one sample.
func ParseTrajectory(r io.Reader, opts ParseOptions) ([]geo.Vec3, error) {
	if opts.Columns.IsZero() {
		opts.Columns = DefaultParseOptions().Columns
	}

	br := bufio.NewReader(r)
	for i := 0; i < opts.HeaderRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("skip metadata line %d: %w", i+1, err)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	xi, yi, zi := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case opts.Columns.X:
			xi = i
		case opts.Columns.Y:
			yi = i
		case opts.Columns.Z:
			zi = i
		}
	}
	for name, idx := range map[string]int{opts.Columns.X: xi, opts.Columns.Y: yi, opts.Columns.Z: zi} {
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	need := max(xi, yi, zi) + 1

	var samples []geo.Vec3
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < need {
			return nil, fmt.Errorf("row %d: %d fields, want at least %d", row, len(rec), need)
		}

		var p geo.Vec3
		if p.X, err = parseCoord(rec[xi]); err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", row, opts.Columns.X, err)
		}
		if p.Y, err = parseCoord(rec[yi]); err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", row, opts.Columns.Y, err)
		}
		if p.Z, err = parseCoord(rec[zi]); err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", row, opts.Columns.Z, err)
		}
		samples = append(samples, p)
	}

	return samples, nil
}

func parseCoord(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
