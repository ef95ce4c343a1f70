package pipeline

import "fmt"

// NetworkMetric names a per-node analysis computed over a built network.
type NetworkMetric string

const (
	// MetricDegreeCentrality is each node's degree divided by n-1: how
	// much of the tree funnels through a facility.
	MetricDegreeCentrality NetworkMetric = "degree_centrality"
)

// ParseNetworkMetric validates a user-supplied metric name.
func ParseNetworkMetric(s string) (NetworkMetric, error) {
	switch NetworkMetric(s) {
	case MetricDegreeCentrality:
		return MetricDegreeCentrality, nil
	default:
		return "", fmt.Errorf("unknown network metric %q (want degree_centrality)", s)
	}
}

// MetricValue is one node's metric score, carrying the coordinate so
// consumers can place it without re-joining against Points.
type MetricValue struct {
	Index int     `json:"index"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Value float64 `json:"value"`
}

// ComputeMetric evaluates the metric over the result's network. Values
// are returned in point order.
func (r *Result) ComputeMetric(m NetworkMetric) ([]MetricValue, error) {
	switch m {
	case MetricDegreeCentrality:
		return r.degreeCentrality(), nil
	default:
		return nil, fmt.Errorf("unknown network metric %q", m)
	}
}

func (r *Result) degreeCentrality() []MetricValue {
	values := make([]MetricValue, len(r.Points))
	degree := make([]int, len(r.Points))
	for _, e := range r.Edges {
		degree[e.FromIndex]++
		degree[e.ToIndex]++
	}

	// A single node has no possible neighbors; its centrality is zero.
	norm := float64(len(r.Points) - 1)
	for i, p := range r.Points {
		v := 0.0
		if norm > 0 {
			v = float64(degree[i]) / norm
		}
		values[i] = MetricValue{Index: i, Lat: p.Lat, Lon: p.Lon, Value: v}
	}
	return values
}
