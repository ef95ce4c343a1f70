// Package pipeline runs the network construction stages end to end:
// extract → complete graph → minimum spanning tree → route refinement →
// result assembly. Every stage consumes one immutable input and produces
// one new immutable output; only the refiner talks to the outside world.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"logistics_network/pkg/facility"
	"logistics_network/pkg/netgraph"
	"logistics_network/pkg/refine"
)

// Status classifies a completed run. Both values are success states:
// "no_data" tells the caller the region was empty, which is distinct
// from a pipeline failure.
type Status string

const (
	StatusOK     Status = "ok"
	StatusNoData Status = "no_data"
)

// Point is a located facility prepared for exact serialization. The
// attribute schema is the union of keys over all points; an attribute a
// point lacks is an explicit null, never a silently missing field.
type Point struct {
	Lat        float64            `json:"lat"`
	Lon        float64            `json:"lon"`
	Attributes map[string]*string `json:"attributes"`
}

// Edge is one MST edge of the final network.
type Edge struct {
	FromIndex      int           `json:"from_index"`
	ToIndex        int           `json:"to_index"`
	DistanceMeters float64       `json:"distance_meters"`
	Status         refine.Status `json:"status"`
}

// Result is the serializable output handed to the presentation layer.
type Result struct {
	Status              Status  `json:"status"`
	NodesCount          int     `json:"nodes_count"`
	EdgesCount          int     `json:"edges_count"`
	TotalDistanceMeters float64 `json:"total_distance_meters"`
	DroppedRecords      int     `json:"dropped_records"`
	Points              []Point `json:"points"`
	Edges               []Edge  `json:"edges"`
}

// Options configures a pipeline run.
type Options struct {
	ExtractPolicy facility.Policy
	RefineWorkers int
	EdgeTimeout   time.Duration
}

// Run executes the full pipeline over the given facility records. The
// network may be nil, in which case every edge keeps its geodesic
// weight. Geometry errors are fatal (the caller must fix the input);
// routing failures never are.
func Run(ctx context.Context, records []facility.Record, net refine.Network, opts Options) (*Result, error) {
	points, dropped, err := facility.Extract(records, opts.ExtractPolicy)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	if len(points) == 0 {
		return &Result{
			Status:         StatusNoData,
			DroppedRecords: dropped,
			Points:         []Point{},
			Edges:          []Edge{},
		}, nil
	}

	complete := netgraph.Complete(points)
	mst := netgraph.MinimumSpanningTree(complete)
	refined := refine.Refine(ctx, net, points, mst, refine.Options{
		Workers:     opts.RefineWorkers,
		EdgeTimeout: opts.EdgeTimeout,
	})

	return assemble(points, refined, dropped), nil
}

// assemble merges points and refined edges into the final structure.
func assemble(points []facility.LocatedPoint, edges []refine.Edge, dropped int) *Result {
	result := &Result{
		Status:         StatusOK,
		NodesCount:     len(points),
		EdgesCount:     len(edges),
		DroppedRecords: dropped,
		Points:         make([]Point, len(points)),
		Edges:          make([]Edge, len(edges)),
	}

	schema := attributeSchema(points)
	for i, p := range points {
		result.Points[i] = Point{
			Lat:        p.Lat,
			Lon:        p.Lon,
			Attributes: sanitizeAttributes(p.Attributes, schema),
		}
	}

	for i, e := range edges {
		result.Edges[i] = Edge{
			FromIndex:      e.I,
			ToIndex:        e.J,
			DistanceMeters: e.WeightMeters,
			Status:         e.Status,
		}
		result.TotalDistanceMeters += e.WeightMeters
	}

	return result
}

// attributeSchema collects the union of attribute keys across all points.
func attributeSchema(points []facility.LocatedPoint) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, p := range points {
		for k := range p.Attributes {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// sanitizeAttributes stringifies every present value and emits an
// explicit null for every schema key the point lacks, so downstream
// consumers always see the same shape.
func sanitizeAttributes(attrs map[string]any, schema []string) map[string]*string {
	out := make(map[string]*string, len(schema))
	for _, k := range schema {
		v, ok := attrs[k]
		if !ok || v == nil {
			out[k] = nil
			continue
		}
		s := fmt.Sprintf("%v", v)
		out[k] = &s
	}
	return out
}
