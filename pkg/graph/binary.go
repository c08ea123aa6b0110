package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sort"
	"unsafe"

	"swarm_robustness/pkg/geo"
)

const (
	magicBytes   = "SWARMTOP"
	version      = uint32(1)
	maxNodes     = 1_000_000
	maxEdges     = 50_000_000
	maxSnapshots = 1_000_000
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic           [8]byte
	Version         uint32
	NumNodes        uint32
	NumSnapshots    uint32
	HasPositions    uint32 // 1 if every snapshot carries node positions
	ConnectionRange float64
}

// snapshotHeader precedes the arrays of each snapshot.
type snapshotHeader struct {
	Timestamp uint32
	NumEdges  uint32 // undirected; Head holds 2*NumEdges entries
}

// WriteBinary serializes a Topology to a binary file.
// Uses unsafe.Slice for fast zero-copy I/O.
func WriteBinary(path string, topo *Topology) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hasPos := uint32(1)
	for _, s := range topo.Snapshots {
		if s.Graph.NumNodes != topo.NumNodes {
			return fmt.Errorf("snapshot %d: NumNodes %d != topology NumNodes %d",
				s.Timestamp, s.Graph.NumNodes, topo.NumNodes)
		}
		if uint32(len(s.Graph.Pos)) != topo.NumNodes {
			hasPos = 0
		}
	}

	hdr := fileHeader{
		Version:         version,
		NumNodes:        topo.NumNodes,
		NumSnapshots:    uint32(len(topo.Snapshots)),
		HasPositions:    hasPos,
		ConnectionRange: topo.ConnectionRange,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range topo.Snapshots {
		g := s.Graph
		sh := snapshotHeader{Timestamp: s.Timestamp, NumEdges: g.NumEdges}
		if err := binary.Write(w, binary.LittleEndian, &sh); err != nil {
			return fmt.Errorf("write snapshot %d header: %w", s.Timestamp, err)
		}
		if err := writeUint32Slice(w, g.FirstOut); err != nil {
			return fmt.Errorf("write snapshot %d FirstOut: %w", s.Timestamp, err)
		}
		if err := writeUint32Slice(w, g.Head); err != nil {
			return fmt.Errorf("write snapshot %d Head: %w", s.Timestamp, err)
		}
		if hasPos == 1 {
			if err := writeVec3Slice(w, g.Pos); err != nil {
				return fmt.Errorf("write snapshot %d Pos: %w", s.Timestamp, err)
			}
		}
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes a Topology from a binary file.
func ReadBinary(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	// Read and validate header.
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumSnapshots > maxSnapshots {
		return nil, fmt.Errorf("NumSnapshots %d exceeds limit %d", hdr.NumSnapshots, maxSnapshots)
	}

	topo := &Topology{
		NumNodes:        hdr.NumNodes,
		ConnectionRange: hdr.ConnectionRange,
		Snapshots:       make([]Snapshot, 0, hdr.NumSnapshots),
	}

	for i := uint32(0); i < hdr.NumSnapshots; i++ {
		var sh snapshotHeader
		if err := binary.Read(r, binary.LittleEndian, &sh); err != nil {
			return nil, fmt.Errorf("read snapshot %d header: %w", i, err)
		}
		if sh.NumEdges > maxEdges {
			return nil, fmt.Errorf("snapshot %d: NumEdges %d exceeds limit %d", sh.Timestamp, sh.NumEdges, maxEdges)
		}

		g := &Graph{NumNodes: hdr.NumNodes, NumEdges: sh.NumEdges}
		if g.FirstOut, err = readUint32Slice(r, int(hdr.NumNodes+1)); err != nil {
			return nil, fmt.Errorf("read snapshot %d FirstOut: %w", sh.Timestamp, err)
		}
		if g.Head, err = readUint32Slice(r, int(2*sh.NumEdges)); err != nil {
			return nil, fmt.Errorf("read snapshot %d Head: %w", sh.Timestamp, err)
		}
		if hdr.HasPositions == 1 {
			if g.Pos, err = readVec3Slice(r, int(hdr.NumNodes)); err != nil {
				return nil, fmt.Errorf("read snapshot %d Pos: %w", sh.Timestamp, err)
			}
		}
		if err := validateCSR(g.FirstOut, g.Head, hdr.NumNodes); err != nil {
			return nil, fmt.Errorf("snapshot %d CSR invalid: %w", sh.Timestamp, err)
		}
		if n := len(topo.Snapshots); n > 0 && topo.Snapshots[n-1].Timestamp >= sh.Timestamp {
			return nil, fmt.Errorf("snapshot timestamps not ascending at %d", sh.Timestamp)
		}
		g.comp = componentLabels(g)
		topo.Snapshots = append(topo.Snapshots, Snapshot{Timestamp: sh.Timestamp, Graph: g})
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	return topo, nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	if firstOut[0] != 0 {
		return fmt.Errorf("FirstOut[0]=%d, want 0", firstOut[0])
	}
	numEdges := firstOut[numNodes]
	if uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	for u := uint32(0); u < numNodes; u++ {
		adj := head[firstOut[u]:firstOut[u+1]]
		for i, v := range adj {
			if v == u {
				return fmt.Errorf("self-loop at node %d", u)
			}
			if i > 0 && adj[i-1] >= v {
				return fmt.Errorf("adjacency of node %d not strictly ascending at %d", u, v)
			}
			back := head[firstOut[v]:firstOut[v+1]]
			j := sort.Search(len(back), func(j int) bool { return back[j] >= u })
			if j == len(back) || back[j] != u {
				return fmt.Errorf("edge %d-%d has no reverse entry", u, v)
			}
		}
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeVec3Slice(w io.Writer, s []geo.Vec3) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*24)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readVec3Slice(r io.Reader, n int) ([]geo.Vec3, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]geo.Vec3, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*24)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
