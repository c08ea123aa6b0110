package graph

import (
	"math/rand"
	"testing"

	"swarm_robustness/pkg/geo"
)

// bruteForceEdges returns the proximity edges by checking every pair.
func bruteForceEdges(positions []geo.Vec3, rng float64) []Edge {
	var edges []Edge
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			if geo.Distance(positions[i], positions[j]) <= rng {
				edges = append(edges, Edge{U: uint32(i), V: uint32(j)})
			}
		}
	}
	return edges
}

func TestBuildSimpleGraph(t *testing.T) {
	// Three satellites on a line, 20 km apart; range 30 km links neighbours only.
	positions := []geo.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 20, Y: 0, Z: 0},
		{X: 40, Y: 0, Z: 0},
	}

	g := Build(positions, 30)

	if g.NumNodes != 3 {
		t.Fatalf("NumNodes = %d, want 3", g.NumNodes)
	}
	if g.NumEdges != 2 {
		t.Fatalf("NumEdges = %d, want 2", g.NumEdges)
	}
	if len(g.Head) != 4 {
		t.Fatalf("len(Head) = %d, want 4", len(g.Head))
	}
	if !g.HasEdge(0, 1) || !g.HasEdge(1, 0) || !g.HasEdge(1, 2) {
		t.Error("expected edges 0-1 and 1-2 in both directions")
	}
	if g.HasEdge(0, 2) {
		t.Error("0 and 2 are 40 km apart, should not be adjacent")
	}
	if g.Degree(1) != 2 {
		t.Errorf("Degree(1) = %d, want 2", g.Degree(1))
	}
	if len(g.Pos) != 3 {
		t.Errorf("len(Pos) = %d, want 3", len(g.Pos))
	}
}

func TestBuildRangeIsInclusive(t *testing.T) {
	positions := []geo.Vec3{{X: 0}, {X: 30}}

	g := Build(positions, 30)
	if !g.HasEdge(0, 1) {
		t.Error("nodes exactly at connection range should be adjacent")
	}
}

func TestBuildUsesZ(t *testing.T) {
	// Same XY, 50 km apart in Z: the XY prefilter matches but 3D distance does not.
	positions := []geo.Vec3{{X: 5, Y: 5, Z: 0}, {X: 5, Y: 5, Z: 50}}

	g := Build(positions, 30)
	if g.NumEdges != 0 {
		t.Errorf("NumEdges = %d, want 0", g.NumEdges)
	}
}

func TestBuildEmptyGraph(t *testing.T) {
	g := Build(nil, 30)

	if g.NumNodes != 0 {
		t.Errorf("NumNodes = %d, want 0", g.NumNodes)
	}
	if g.NumEdges != 0 {
		t.Errorf("NumEdges = %d, want 0", g.NumEdges)
	}
	if len(g.FirstOut) != 1 {
		t.Errorf("len(FirstOut) = %d, want 1", len(g.FirstOut))
	}
}

func TestBuildMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		n := 2 + r.Intn(60)
		positions := make([]geo.Vec3, n)
		for i := range positions {
			positions[i] = geo.Vec3{
				X: r.Float64() * 150,
				Y: r.Float64() * 150,
				Z: r.Float64() * 60,
			}
		}

		g := Build(positions, 30)
		want := bruteForceEdges(positions, 30)
		got := g.Edges()

		if len(got) != len(want) {
			t.Fatalf("trial %d: %d edges, want %d", trial, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("trial %d: edge[%d] = %v, want %v", trial, i, got[i], want[i])
			}
		}
	}
}

func TestFromEdges(t *testing.T) {
	edges := []Edge{
		{U: 0, V: 1},
		{U: 1, V: 0}, // duplicate, reversed
		{U: 2, V: 2}, // self-loop
		{U: 1, V: 2},
		{U: 3, V: 9}, // out of range
		{U: 1, V: 2}, // duplicate
	}

	g := FromEdges(4, edges)

	if g.NumEdges != 2 {
		t.Fatalf("NumEdges = %d, want 2", g.NumEdges)
	}
	if got := g.Neighbors(1); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Neighbors(1) = %v, want [0 2]", got)
	}
	if g.Degree(3) != 0 {
		t.Errorf("Degree(3) = %d, want 0", g.Degree(3))
	}
	if g.HasEdge(2, 2) {
		t.Error("self-loop should be dropped")
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestGraphOutOfRangeQueries(t *testing.T) {
	g := FromEdges(2, []Edge{{U: 0, V: 1}})

	if g.HasEdge(0, 5) {
		t.Error("HasEdge with unknown node should be false")
	}
	if g.Degree(7) != 0 {
		t.Error("Degree of unknown node should be 0")
	}
	if g.HasPath(0, 5) {
		t.Error("HasPath with unknown node should be false")
	}
}

func BenchmarkBuild(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	positions := make([]geo.Vec3, 49)
	for i := range positions {
		positions[i] = geo.Vec3{X: r.Float64() * 100, Y: r.Float64() * 100, Z: r.Float64() * 20}
	}
	for b.Loop() {
		Build(positions, 30)
	}
}
