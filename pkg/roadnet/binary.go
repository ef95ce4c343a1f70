package roadnet

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

// Binary road graph format, little-endian:
//
//	magic    [8]byte  "LGSTROAD"
//	version  uint32
//	numNodes uint32
//	numEdges uint32
//	firstOut [numNodes+1]uint32
//	head     [numEdges]uint32
//	weightMM [numEdges]uint32
//	nodeLat  [numNodes]float64
//	nodeLon  [numNodes]float64
//	crc32    uint32 (IEEE, over everything above)
const (
	fileMagic   = "LGSTROAD"
	fileVersion = uint32(1)
)

var (
	ErrBadMagic    = errors.New("roadnet: not a road graph file")
	ErrBadVersion  = errors.New("roadnet: unsupported road graph file version")
	ErrBadChecksum = errors.New("roadnet: road graph file checksum mismatch")
	ErrCorrupt     = errors.New("roadnet: corrupt road graph data")
)

// Save writes the graph to path atomically (temp file + rename).
func Save(g *Graph, path string) error {
	if err := validateCSR(g); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	bw := bufio.NewWriterSize(f, 1<<20)
	h := crc32.NewIEEE()
	w := io.MultiWriter(bw, h)

	err = writeGraph(w, g)
	if err == nil {
		// Trailer CRC is written past the hashed region.
		err = binary.Write(bw, binary.LittleEndian, h.Sum32())
	}
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write road graph: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename road graph: %w", err)
	}
	return nil
}

// Load reads a graph previously written by Save and verifies its
// checksum and CSR invariants.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open road graph: %w", err)
	}
	defer f.Close()

	h := crc32.NewIEEE()
	r := io.TeeReader(bufio.NewReaderSize(f, 1<<20), h)

	g, err := readGraph(r)
	if err != nil {
		return nil, err
	}

	want := h.Sum32() // trailer itself is not hashed
	var stored uint32
	if err := binary.Read(r, binary.LittleEndian, &stored); err != nil {
		return nil, fmt.Errorf("read checksum: %w", err)
	}
	if stored != want {
		return nil, ErrBadChecksum
	}

	if err := validateCSR(g); err != nil {
		return nil, err
	}
	return g, nil
}

func writeGraph(w io.Writer, g *Graph) error {
	if _, err := w.Write([]byte(fileMagic)); err != nil {
		return err
	}
	for _, v := range []uint32{fileVersion, g.NumNodes, g.NumEdges} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, s := range [][]uint32{g.FirstOut, g.Head, g.WeightMM} {
		if err := writeUint32s(w, s); err != nil {
			return err
		}
	}
	for _, s := range [][]float64{g.NodeLat, g.NodeLon} {
		if err := writeFloat64s(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readGraph(r io.Reader) (*Graph, error) {
	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != fileMagic {
		return nil, ErrBadMagic
	}

	var version, numNodes, numEdges uint32
	for _, p := range []*uint32{&version, &numNodes, &numEdges} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
	}
	if version != fileVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, version)
	}

	g := &Graph{NumNodes: numNodes, NumEdges: numEdges}
	var err error
	if g.FirstOut, err = readUint32s(r, int(numNodes)+1); err != nil {
		return nil, fmt.Errorf("read first_out: %w", err)
	}
	if g.Head, err = readUint32s(r, int(numEdges)); err != nil {
		return nil, fmt.Errorf("read head: %w", err)
	}
	if g.WeightMM, err = readUint32s(r, int(numEdges)); err != nil {
		return nil, fmt.Errorf("read weight: %w", err)
	}
	if g.NodeLat, err = readFloat64s(r, int(numNodes)); err != nil {
		return nil, fmt.Errorf("read node_lat: %w", err)
	}
	if g.NodeLon, err = readFloat64s(r, int(numNodes)); err != nil {
		return nil, fmt.Errorf("read node_lon: %w", err)
	}
	return g, nil
}

// validateCSR checks structural invariants before the graph is trusted
// for routing.
func validateCSR(g *Graph) error {
	if len(g.FirstOut) != int(g.NumNodes)+1 ||
		len(g.Head) != int(g.NumEdges) ||
		len(g.WeightMM) != int(g.NumEdges) ||
		len(g.NodeLat) != int(g.NumNodes) ||
		len(g.NodeLon) != int(g.NumNodes) {
		return fmt.Errorf("%w: array length mismatch", ErrCorrupt)
	}
	if g.FirstOut[0] != 0 || g.FirstOut[g.NumNodes] != g.NumEdges {
		return fmt.Errorf("%w: first_out bounds", ErrCorrupt)
	}
	for i := uint32(0); i < g.NumNodes; i++ {
		if g.FirstOut[i] > g.FirstOut[i+1] {
			return fmt.Errorf("%w: first_out not monotone at node %d", ErrCorrupt, i)
		}
	}
	for i, h := range g.Head {
		if h >= g.NumNodes {
			return fmt.Errorf("%w: edge %d head out of range", ErrCorrupt, i)
		}
	}
	return nil
}

// Zero-copy slice I/O. The format is little-endian and so are all
// supported targets; byte order is not swapped.

func writeUint32s(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func readUint32s(r io.Reader, n int) ([]uint32, error) {
	s := make([]uint32, n)
	if n == 0 {
		return s, nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func writeFloat64s(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readFloat64s(r io.Reader, n int) ([]float64, error) {
	s := make([]float64, n)
	if n == 0 {
		return s, nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}
