// Package netgraph builds weighted facility graphs and extracts their
// minimum spanning tree.
package netgraph

import (
	"logistics_network/pkg/facility"
	"logistics_network/pkg/geo"
)

// Edge connects two point indices with a non-negative weight in meters.
// Edges are undirected and stored canonically with I < J.
type Edge struct {
	I      int
	J      int
	Weight float64
}

// Graph is a set of point indices [0, NumNodes) plus weighted edges.
type Graph struct {
	NumNodes int
	Edges    []Edge
}

// Complete builds the complete undirected graph over the given points,
// one edge per unordered pair, weighted by great-circle distance.
// O(n²) edges — acceptable for facility counts in a bounded region
// (tens to low hundreds); sparsification is out of scope.
func Complete(points []facility.LocatedPoint) *Graph {
	n := len(points)
	g := &Graph{NumNodes: n}
	if n <= 1 {
		return g
	}

	g.Edges = make([]Edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.Edges = append(g.Edges, Edge{
				I:      i,
				J:      j,
				Weight: geo.Haversine(points[i].Lat, points[i].Lon, points[j].Lat, points[j].Lon),
			})
		}
	}
	return g
}
