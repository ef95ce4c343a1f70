package roadnet

import (
	"sort"

	"github.com/paulmach/osm"

	lnosm "logistics_network/pkg/osm"
)

// Build creates a CSR Graph from parsed road edges.
func Build(data *lnosm.RoadData) *Graph {
	edges := data.Edges
	if len(edges) == 0 {
		return &Graph{FirstOut: []uint32{0}}
	}

	// Step 1: collect all unique node IDs and build a compact mapping.
	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	for i := range edges {
		addNode(edges[i].FromNodeID)
		addNode(edges[i].ToNodeID)
	}

	numNodes := uint32(len(nodeIDs))

	// Step 2: build a compact edge list with remapped indices.
	type compactEdge struct {
		from   uint32
		to     uint32
		weight uint32
	}

	compact := make([]compactEdge, len(edges))
	for i, e := range edges {
		compact[i] = compactEdge{
			from:   nodeSet[e.FromNodeID],
			to:     nodeSet[e.ToNodeID],
			weight: e.WeightMM,
		}
	}

	// Step 3: sort edges by source node for CSR layout.
	sort.Slice(compact, func(i, j int) bool {
		if compact[i].from != compact[j].from {
			return compact[i].from < compact[j].from
		}
		return compact[i].to < compact[j].to
	})

	// Step 4: build CSR arrays.
	numEdges := uint32(len(compact))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	weight := make([]uint32, numEdges)

	for i, e := range compact {
		head[i] = e.to
		weight[i] = e.weight
	}

	// FirstOut via counting followed by a prefix sum.
	for _, e := range compact {
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Step 5: populate node coordinates.
	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for id, idx := range nodeSet {
		nodeLat[idx] = data.NodeLat[id]
		nodeLon[idx] = data.NodeLon[id]
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Head:     head,
		WeightMM: weight,
		NodeLat:  nodeLat,
		NodeLon:  nodeLon,
	}
}
