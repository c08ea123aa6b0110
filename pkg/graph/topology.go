package graph

import (
	"errors"
	"sort"
)

// ErrSnapshotNotFound is returned when a topology has no snapshot for the
// requested timestamp.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is the proximity graph of the swarm at one timestamp.
type Snapshot struct {
	Timestamp uint32
	Graph     *Graph
}

// Topology is the time-ordered set of snapshot graphs of one swarm.
// Snapshots are sorted by ascending timestamp and share NumNodes.
type Topology struct {
	NumNodes        uint32
	ConnectionRange float64 // km
	Snapshots       []Snapshot
}

// Add appends a snapshot, keeping the snapshots ordered by timestamp.
// An existing snapshot with the same timestamp is replaced.
func (t *Topology) Add(ts uint32, g *Graph) {
	i := sort.Search(len(t.Snapshots), func(i int) bool { return t.Snapshots[i].Timestamp >= ts })
	if i < len(t.Snapshots) && t.Snapshots[i].Timestamp == ts {
		t.Snapshots[i].Graph = g
		return
	}
	t.Snapshots = append(t.Snapshots, Snapshot{})
	copy(t.Snapshots[i+1:], t.Snapshots[i:])
	t.Snapshots[i] = Snapshot{Timestamp: ts, Graph: g}
}

// Lookup returns the graph for timestamp ts.
func (t *Topology) Lookup(ts uint32) (*Graph, error) {
	i := sort.Search(len(t.Snapshots), func(i int) bool { return t.Snapshots[i].Timestamp >= ts })
	if i < len(t.Snapshots) && t.Snapshots[i].Timestamp == ts {
		return t.Snapshots[i].Graph, nil
	}
	return nil, ErrSnapshotNotFound
}

// Timestamps returns the timestamps of all snapshots in ascending order.
func (t *Topology) Timestamps() []uint32 {
	out := make([]uint32, len(t.Snapshots))
	for i, s := range t.Snapshots {
		out[i] = s.Timestamp
	}
	return out
}
