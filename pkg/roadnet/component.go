package roadnet

import "logistics_network/pkg/netgraph"

// largestComponent returns a membership mask for the largest weakly
// connected component. Direction is ignored: a facility snapped to a
// oneway segment still belongs to the drivable core.
func largestComponent(g *Graph) []bool {
	keep := make([]bool, g.NumNodes)
	if g.NumNodes == 0 {
		return keep
	}

	uf := netgraph.NewUnionFind(int(g.NumNodes))
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(int(u), int(g.Head[e]))
		}
	}

	counts := make(map[int]uint32)
	var bestRoot, bestCount = -1, uint32(0)
	for i := uint32(0); i < g.NumNodes; i++ {
		root := uf.Find(int(i))
		counts[root]++
		if counts[root] > bestCount {
			bestRoot = root
			bestCount = counts[root]
		}
	}

	for i := uint32(0); i < g.NumNodes; i++ {
		keep[i] = uf.Find(int(i)) == bestRoot
	}
	return keep
}

// filter extracts the subgraph induced by the kept nodes. Edges survive
// only when both endpoints are kept; node indices are remapped densely.
func filter(g *Graph, keep []bool) *Graph {
	remap := make([]uint32, g.NumNodes)
	var numNodes uint32
	for i := uint32(0); i < g.NumNodes; i++ {
		if keep[i] {
			remap[i] = numNodes
			numNodes++
		} else {
			remap[i] = noNode
		}
	}

	firstOut := make([]uint32, numNodes+1)
	var head, weight []uint32
	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)

	for u := uint32(0); u < g.NumNodes; u++ {
		if !keep[u] {
			continue
		}
		nu := remap[u]
		nodeLat[nu] = g.NodeLat[u]
		nodeLon[nu] = g.NodeLon[u]

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if !keep[v] {
				continue
			}
			head = append(head, remap[v])
			weight = append(weight, g.WeightMM[e])
		}
		firstOut[nu+1] = uint32(len(head))
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: uint32(len(head)),
		FirstOut: firstOut,
		Head:     head,
		WeightMM: weight,
		NodeLat:  nodeLat,
		NodeLon:  nodeLon,
	}
}
