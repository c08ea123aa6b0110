package swarm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"swarm_robustness/pkg/geo"
)

const metadata = `stk.v.12.0
WrittenBy    ProgramName
BEGIN Ephemeris
ScenarioEpoch 1 Jan 2024 00:00:00.000
CentralBody Moon
CoordinateSystem Fixed
Units km
`

func trajectoryCSV(rows ...string) string {
	return metadata + "Time (UTCG),xF[km],yF[km],zF[km]\n" + strings.Join(rows, "\n") + "\n"
}

func TestParseTrajectory(t *testing.T) {
	in := trajectoryCSV(
		"1 Jan 2024 00:00:00.000,1737.5,0.25,-3",
		"1 Jan 2024 00:00:10.000,1737.25,1.5,-2.5",
	)

	got, err := ParseTrajectory(strings.NewReader(in), DefaultParseOptions())
	if err != nil {
		t.Fatalf("ParseTrajectory: %v", err)
	}

	want := []geo.Vec3{
		{X: 1737.5, Y: 0.25, Z: -3},
		{X: 1737.25, Y: 1.5, Z: -2.5},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseTrajectoryErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "truncated metadata",
			input: "only one line\n",
		},
		{
			name:    "missing z column",
			input:   metadata + "Time,xF[km],yF[km]\nt0,1,2\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:  "non numeric coordinate",
			input: trajectoryCSV("t0,1,abc,3"),
		},
		{
			name:  "short row",
			input: trajectoryCSV("t0,1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTrajectory(strings.NewReader(tt.input), DefaultParseOptions())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTrajectoryCustomColumns(t *testing.T) {
	in := "x,y,z\n1,2,3\n\n4,5,6\n"
	opts := ParseOptions{Columns: Columns{X: "x", Y: "y", Z: "z"}}

	got, err := ParseTrajectory(strings.NewReader(in), opts)
	if err != nil {
		t.Fatalf("ParseTrajectory: %v", err)
	}
	if len(got) != 2 || got[1] != (geo.Vec3{X: 4, Y: 5, Z: 6}) {
		t.Errorf("got %+v", got)
	}
}

func TestLoadGrid(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "coords-")

	// 2×2 grid; satellite (0,1) has one extra sample.
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			rows := []string{
				fmt.Sprintf("t0,%d,%d,0", i, j),
				fmt.Sprintf("t1,%d,%d,1", i, j),
			}
			if i == 0 && j == 1 {
				rows = append(rows, "t2,0,1,2")
			}
			path := fmt.Sprintf("%s%d-%d.csv", prefix, i, j)
			if err := os.WriteFile(path, []byte(trajectoryCSV(rows...)), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}

	ds, err := LoadGrid(context.Background(), GridOptions{
		PathPrefix: prefix,
		GridSize:   2,
		Parse:      DefaultParseOptions(),
	})
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}

	if ds.NumNodes() != 4 {
		t.Fatalf("NumNodes = %d, want 4", ds.NumNodes())
	}
	if ds.Len() != 2 {
		t.Errorf("Len = %d, want 2 (shortest trajectory)", ds.Len())
	}

	pos, err := ds.Positions(1)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	// Node id 2 is grid cell (1,0).
	if pos[2] != (geo.Vec3{X: 1, Y: 0, Z: 1}) {
		t.Errorf("pos[2] = %+v, want {1 0 1}", pos[2])
	}

	if _, err := ds.Positions(2); !errors.Is(err, ErrTimestampOutOfRange) {
		t.Errorf("Positions(2) err = %v, want ErrTimestampOutOfRange", err)
	}
}

func TestLoadGridMissingFile(t *testing.T) {
	_, err := LoadGrid(context.Background(), GridOptions{
		PathPrefix: filepath.Join(t.TempDir(), "nope-"),
		GridSize:   1,
		Parse:      DefaultParseOptions(),
	})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadGridCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadGrid(ctx, GridOptions{PathPrefix: "unused-", GridSize: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
