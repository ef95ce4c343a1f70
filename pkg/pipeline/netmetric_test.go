package pipeline

import (
	"math"
	"testing"
)

func TestParseNetworkMetric(t *testing.T) {
	got, err := ParseNetworkMetric("degree_centrality")
	if err != nil || got != MetricDegreeCentrality {
		t.Errorf("ParseNetworkMetric = %q, %v", got, err)
	}
	if _, err := ParseNetworkMetric("betweenness"); err == nil {
		t.Error("unknown metric must be rejected")
	}
	if _, err := ParseNetworkMetric(""); err == nil {
		t.Error("empty metric must be rejected")
	}
}

func metricResult(n int, edges [][2]int) *Result {
	r := &Result{Status: StatusOK, NodesCount: n, EdgesCount: len(edges)}
	for i := 0; i < n; i++ {
		r.Points = append(r.Points, Point{Lat: 59.0 + float64(i)*0.01, Lon: 30.0})
	}
	for _, e := range edges {
		r.Edges = append(r.Edges, Edge{FromIndex: e[0], ToIndex: e[1], Status: "refined"})
	}
	return r
}

func TestDegreeCentrality(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
		want  []float64
	}{
		{
			// A path: endpoints touch one edge, interior nodes two.
			"path", 4, [][2]int{{0, 1}, {1, 2}, {2, 3}},
			[]float64{1.0 / 3, 2.0 / 3, 2.0 / 3, 1.0 / 3},
		},
		{
			// A star: the hub connects to every other node.
			"star", 4, [][2]int{{0, 1}, {0, 2}, {0, 3}},
			[]float64{1, 1.0 / 3, 1.0 / 3, 1.0 / 3},
		},
		{"single node", 1, nil, []float64{0}},
		{"empty", 0, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := metricResult(tt.n, tt.edges).ComputeMetric(MetricDegreeCentrality)
			if err != nil {
				t.Fatalf("ComputeMetric: %v", err)
			}
			if len(values) != len(tt.want) {
				t.Fatalf("got %d values, want %d", len(values), len(tt.want))
			}
			for i, v := range values {
				if v.Index != i {
					t.Errorf("value %d has index %d", i, v.Index)
				}
				if math.Abs(v.Value-tt.want[i]) > 1e-12 {
					t.Errorf("node %d centrality = %f, want %f", i, v.Value, tt.want[i])
				}
			}
		})
	}
}

func TestComputeMetricCarriesCoordinates(t *testing.T) {
	r := metricResult(2, [][2]int{{0, 1}})
	values, err := r.ComputeMetric(MetricDegreeCentrality)
	if err != nil {
		t.Fatalf("ComputeMetric: %v", err)
	}
	for i, v := range values {
		if v.Lat != r.Points[i].Lat || v.Lon != r.Points[i].Lon {
			t.Errorf("value %d at (%f,%f), point at (%f,%f)",
				i, v.Lat, v.Lon, r.Points[i].Lat, r.Points[i].Lon)
		}
	}
}

func TestComputeMetricUnknown(t *testing.T) {
	if _, err := metricResult(2, nil).ComputeMetric("pagerank"); err == nil {
		t.Error("expected an error for an unknown metric")
	}
}
