package swarm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"swarm_robustness/pkg/geo"
)

// ErrTimestampOutOfRange is returned when a sample index is past the end of
// the shortest trajectory.
var ErrTimestampOutOfRange = errors.New("timestamp out of range")

// Dataset holds the trajectories of every satellite in the swarm.
// Trajectories[id][t] is the position of node id at sample t.
type Dataset struct {
	Trajectories [][]geo.Vec3
}

// NumNodes returns the number of satellites.
func (d *Dataset) NumNodes() int {
	return len(d.Trajectories)
}

// Len returns the number of samples available for every node.
func (d *Dataset) Len() int {
	if len(d.Trajectories) == 0 {
		return 0
	}
	n := len(d.Trajectories[0])
	for _, tr := range d.Trajectories[1:] {
		n = min(n, len(tr))
	}
	return n
}

// Positions returns the position of every node at sample t, indexed by node id.
func (d *Dataset) Positions(t int) ([]geo.Vec3, error) {
	if t < 0 || t >= d.Len() {
		return nil, fmt.Errorf("%w: %d (have %d samples)", ErrTimestampOutOfRange, t, d.Len())
	}
	out := make([]geo.Vec3, len(d.Trajectories))
	for id, tr := range d.Trajectories {
		out[id] = tr[t]
	}
	return out, nil
}

// GridOptions locates the per-satellite files of a square grid formation.
type GridOptions struct {
	// PathPrefix is prepended to "<i>-<j>.csv" for row i, column j.
	PathPrefix string
	GridSize   int
	Parse      ParseOptions
	Logger     *zap.Logger
}

// GridPath returns the file path of the satellite at grid row i, column j.
func (o GridOptions) GridPath(i, j int) string {
	return fmt.Sprintf("%s%d-%d.csv", o.PathPrefix, i, j)
}

// NodeID returns the node id assigned to grid cell (i, j).
func NodeID(gridSize, i, j int) uint32 {
	return uint32(i*gridSize + j)
}

// LoadGrid reads GridSize×GridSize trajectory files. Node ids are assigned
// row-major, see NodeID.
func LoadGrid(ctx context.Context, opts GridOptions) (*Dataset, error) {
	if opts.GridSize <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %d", opts.GridSize)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	n := opts.GridSize * opts.GridSize
	ds := &Dataset{Trajectories: make([][]geo.Vec3, n)}

	for i := 0; i < opts.GridSize; i++ {
		for j := 0; j < opts.GridSize; j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			path := opts.GridPath(i, j)
			samples, err := loadFile(path, opts.Parse)
			if err != nil {
				return nil, fmt.Errorf("satellite %d-%d: %w", i, j, err)
			}
			ds.Trajectories[NodeID(opts.GridSize, i, j)] = samples
			logger.Debug("loaded trajectory",
				zap.String("path", path), zap.Int("samples", len(samples)))
		}
	}

	logger.Info("grid data extracted",
		zap.Int("satellites", n), zap.Int("samples", ds.Len()))
	return ds, nil
}

func loadFile(path string, opts ParseOptions) ([]geo.Vec3, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return ParseTrajectory(f, opts)
}
