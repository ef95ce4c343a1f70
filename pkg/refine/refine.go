// Package refine replaces geodesic MST edge weights with real-network
// shortest-path distances where the routable network can resolve them.
//
// Refinement never fails the pipeline: every per-edge problem — no
// nearby network node, no path, a timeout, a provider error — resolves
// to the edge's original geodesic weight tagged StatusFallback. Partial
// failure is normal; a region may contain facilities the modeled
// network simply cannot reach.
package refine

import (
	"context"
	"errors"
	"sync"
	"time"

	"logistics_network/pkg/facility"
	"logistics_network/pkg/netgraph"
)

// NodeID identifies a node of the external routable network.
type NodeID uint32

// PathSegment is one leg of a resolved shortest path.
type PathSegment struct {
	From         NodeID
	To           NodeID
	LengthMeters float64
}

// Network is the narrow contract with the external routable network.
type Network interface {
	// NearestNode snaps a coordinate to the nearest network node.
	NearestNode(ctx context.Context, lat, lon float64) (NodeID, error)
	// ShortestPath returns the length-optimal path between two nodes as
	// an ordered segment sequence, or ErrNoPath.
	ShortestPath(ctx context.Context, from, to NodeID) ([]PathSegment, error)
}

// Sentinel errors a Network implementation reports. Any other error is
// treated the same way: the edge falls back to its geodesic weight.
var (
	ErrNoPath       = errors.New("no path found")
	ErrNoNearbyNode = errors.New("no network node near point")
)

// Status records how an edge weight was resolved.
type Status string

const (
	// StatusRefined means the weight is a real-network shortest-path distance.
	StatusRefined Status = "refined"
	// StatusFallback means the geodesic weight was kept.
	StatusFallback Status = "fallback"
)

// Edge is an MST edge after refinement. Endpoint indices are unchanged
// from the input tree; only the weight and status differ.
type Edge struct {
	I            int
	J            int
	WeightMeters float64
	Status       Status
}

// Options tunes the refinement pool.
type Options struct {
	// Workers bounds concurrent network queries. Values < 1 mean 4.
	Workers int
	// EdgeTimeout bounds each edge's snap+route round trip. Zero means
	// no per-edge deadline beyond the caller's context.
	EdgeTimeout time.Duration
}

const defaultWorkers = 4

// Refine resolves every MST edge against the network. It returns a new
// edge sequence in the same order as mst.Edges; the input tree is never
// mutated. A nil network degrades the whole stage: every edge keeps its
// geodesic weight (systemic provider outage handling).
func Refine(ctx context.Context, net Network, points []facility.LocatedPoint, mst *netgraph.Graph, opts Options) []Edge {
	out := make([]Edge, len(mst.Edges))
	for i, e := range mst.Edges {
		out[i] = Edge{I: e.I, J: e.J, WeightMeters: e.Weight, Status: StatusFallback}
	}
	if net == nil || len(out) == 0 {
		return out
	}

	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers
	}

	// Bounded pool: each task owns a disjoint slot of out, so the only
	// coordination is the final join.
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for idx, e := range mst.Edges {
		wg.Add(1)
		sem <- struct{}{}
		go func(slot int, edge netgraph.Edge) {
			defer wg.Done()
			defer func() { <-sem }()

			if dist, ok := refineEdge(ctx, net, points, edge, opts.EdgeTimeout); ok {
				out[slot].WeightMeters = dist
				out[slot].Status = StatusRefined
			}
		}(idx, e)
	}
	wg.Wait()

	return out
}

// refineEdge resolves a single edge. ok is false on any routing failure.
func refineEdge(ctx context.Context, net Network, points []facility.LocatedPoint, e netgraph.Edge, timeout time.Duration) (float64, bool) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	from, err := net.NearestNode(ctx, points[e.I].Lat, points[e.I].Lon)
	if err != nil {
		return 0, false
	}
	to, err := net.NearestNode(ctx, points[e.J].Lat, points[e.J].Lon)
	if err != nil {
		return 0, false
	}
	if from == to {
		// Both endpoints collapse onto one network node: no usable path
		// (fewer than two path nodes), same as the no-route case.
		return 0, false
	}

	segments, err := net.ShortestPath(ctx, from, to)
	if err != nil || len(segments) == 0 {
		return 0, false
	}

	var total float64
	for _, s := range segments {
		total += s.LengthMeters
	}
	return total, true
}
