package netgraph

import "sort"

// MinimumSpanningTree computes the MST of g using Kruskal's algorithm.
// The node set is preserved; the edge set has exactly NumNodes-1 edges
// when the input is connected (always true for complete graphs with
// n ≥ 1). Edges are considered in (Weight, I, J) order so that ties
// resolve identically across runs.
func MinimumSpanningTree(g *Graph) *Graph {
	mst := &Graph{NumNodes: g.NumNodes}
	if g.NumNodes <= 1 {
		return mst
	}

	sorted := make([]Edge, len(g.Edges))
	copy(sorted, g.Edges)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		if a.I != b.I {
			return a.I < b.I
		}
		return a.J < b.J
	})

	uf := NewUnionFind(g.NumNodes)
	mst.Edges = make([]Edge, 0, g.NumNodes-1)

	for _, e := range sorted {
		if uf.Union(e.I, e.J) {
			mst.Edges = append(mst.Edges, e)
			if len(mst.Edges) == g.NumNodes-1 {
				break
			}
		}
	}

	return mst
}

// TotalWeight sums the edge weights of g.
func (g *Graph) TotalWeight() float64 {
	var total float64
	for _, e := range g.Edges {
		total += e.Weight
	}
	return total
}
