// Package roadnet implements the routable road network: a compact
// directed graph parsed from OSM, nearest-node snapping and
// length-optimal shortest-path queries. It is the concrete provider
// behind the refiner's network contract.
package roadnet

// Graph represents a directed road graph in CSR (Compressed Sparse Row) format.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	WeightMM []uint32  // len: NumEdges; great-circle edge length in millimeters
	NodeLat  []float64 // len: NumNodes
	NodeLon  []float64 // len: NumNodes
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}
