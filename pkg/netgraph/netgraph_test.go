package netgraph

import (
	"math"
	"testing"

	"logistics_network/pkg/facility"
	"logistics_network/pkg/geo"
)

func pts(coords [][2]float64) []facility.LocatedPoint {
	out := make([]facility.LocatedPoint, len(coords))
	for i, c := range coords {
		out[i] = facility.LocatedPoint{Lat: c[0], Lon: c[1]}
	}
	return out
}

func TestCompleteEdgeCount(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		wantEdges int
	}{
		{"empty", 0, 0},
		{"single", 1, 0},
		{"pair", 2, 1},
		{"five", 5, 10},
		{"ten", 10, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := make([]facility.LocatedPoint, tt.n)
			for i := range points {
				points[i] = facility.LocatedPoint{Lat: 59.0 + float64(i)*0.01, Lon: 30.0 + float64(i)*0.01}
			}
			g := Complete(points)
			if g.NumNodes != tt.n {
				t.Errorf("NumNodes = %d, want %d", g.NumNodes, tt.n)
			}
			if len(g.Edges) != tt.wantEdges {
				t.Errorf("edges = %d, want %d", len(g.Edges), tt.wantEdges)
			}
		})
	}
}

func TestCompleteWeights(t *testing.T) {
	points := pts([][2]float64{{59.9, 30.3}, {59.8, 30.4}, {59.7, 30.5}})
	g := Complete(points)

	for _, e := range g.Edges {
		if e.I >= e.J {
			t.Errorf("edge (%d,%d) not canonical", e.I, e.J)
		}
		if e.Weight < 0 {
			t.Errorf("edge (%d,%d) has negative weight %f", e.I, e.J, e.Weight)
		}
		// Weight matches the geodesic distance, and is symmetric by
		// construction of the haversine formula.
		want := geo.Haversine(points[e.I].Lat, points[e.I].Lon, points[e.J].Lat, points[e.J].Lon)
		rev := geo.Haversine(points[e.J].Lat, points[e.J].Lon, points[e.I].Lat, points[e.I].Lon)
		if math.Abs(e.Weight-want) > 1e-9 || math.Abs(want-rev) > 1e-9 {
			t.Errorf("edge (%d,%d) weight %f, want %f (reverse %f)", e.I, e.J, e.Weight, want, rev)
		}
	}
}

func TestMSTTriangle(t *testing.T) {
	// Three near-collinear points: the complete graph is a triangle and
	// the MST keeps the two shortest sides, dropping the longest.
	points := pts([][2]float64{{59.9, 30.3}, {59.8, 30.4}, {59.7, 30.5}})
	g := Complete(points)
	if len(g.Edges) != 3 {
		t.Fatalf("complete graph edges = %d, want 3", len(g.Edges))
	}

	mst := MinimumSpanningTree(g)
	if len(mst.Edges) != 2 {
		t.Fatalf("MST edges = %d, want 2", len(mst.Edges))
	}

	var longest Edge
	for _, e := range g.Edges {
		if e.Weight > longest.Weight {
			longest = e
		}
	}
	for _, e := range mst.Edges {
		if e.I == longest.I && e.J == longest.J {
			t.Errorf("MST kept the longest triangle edge (%d,%d)", e.I, e.J)
		}
	}
}

func TestMSTSpansAllNodes(t *testing.T) {
	points := pts([][2]float64{
		{59.90, 30.30}, {59.85, 30.35}, {59.80, 30.20},
		{59.95, 30.50}, {59.70, 30.45}, {59.88, 30.10},
		{59.75, 30.60},
	})
	g := Complete(points)
	mst := MinimumSpanningTree(g)

	if len(mst.Edges) != len(points)-1 {
		t.Fatalf("MST edges = %d, want %d", len(mst.Edges), len(points)-1)
	}

	// Acyclic and spanning: every union must succeed and all nodes end
	// up in one set.
	uf := NewUnionFind(len(points))
	for _, e := range mst.Edges {
		if !uf.Union(e.I, e.J) {
			t.Fatalf("cycle through edge (%d,%d)", e.I, e.J)
		}
	}
	root := uf.Find(0)
	for i := 1; i < len(points); i++ {
		if uf.Find(i) != root {
			t.Errorf("node %d not connected to node 0", i)
		}
	}
}

func TestMSTDegenerate(t *testing.T) {
	if got := MinimumSpanningTree(Complete(nil)); got.NumNodes != 0 || len(got.Edges) != 0 {
		t.Errorf("empty input: got %d nodes, %d edges", got.NumNodes, len(got.Edges))
	}
	one := pts([][2]float64{{59.9, 30.3}})
	if got := MinimumSpanningTree(Complete(one)); got.NumNodes != 1 || len(got.Edges) != 0 {
		t.Errorf("single point: got %d nodes, %d edges", got.NumNodes, len(got.Edges))
	}
}

func TestMSTDeterministicTieBreaking(t *testing.T) {
	// Four corners of a square: all sides tie, both diagonals tie. The
	// (Weight, I, J) order must pick the same tree every run.
	points := pts([][2]float64{{59.0, 30.0}, {59.0, 30.1}, {59.1, 30.0}, {59.1, 30.1}})
	first := MinimumSpanningTree(Complete(points))

	for run := 0; run < 10; run++ {
		again := MinimumSpanningTree(Complete(points))
		if len(again.Edges) != len(first.Edges) {
			t.Fatalf("run %d: edge count changed", run)
		}
		for i := range first.Edges {
			if first.Edges[i] != again.Edges[i] {
				t.Fatalf("run %d: edge %d differs: %+v vs %+v", run, i, first.Edges[i], again.Edges[i])
			}
		}
	}
}

func TestMSTDoesNotMutateInput(t *testing.T) {
	points := pts([][2]float64{{59.9, 30.3}, {59.8, 30.4}, {59.7, 30.5}})
	g := Complete(points)
	before := make([]Edge, len(g.Edges))
	copy(before, g.Edges)

	MinimumSpanningTree(g)

	for i := range before {
		if g.Edges[i] != before[i] {
			t.Fatal("MinimumSpanningTree mutated its input edge list")
		}
	}
}

func TestTotalWeight(t *testing.T) {
	g := &Graph{NumNodes: 3, Edges: []Edge{{0, 1, 100}, {1, 2, 250}}}
	if got := g.TotalWeight(); got != 350 {
		t.Errorf("TotalWeight = %f, want 350", got)
	}
	if got := (&Graph{}).TotalWeight(); got != 0 {
		t.Errorf("empty TotalWeight = %f, want 0", got)
	}
}
