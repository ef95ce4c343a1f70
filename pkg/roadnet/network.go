package roadnet

import (
	"context"
	"errors"

	"logistics_network/pkg/refine"
)

// DefaultMaxSnapMeters bounds how far a facility may sit from the road
// network before snapping is rejected and the edge falls back to the
// geodesic estimate.
const DefaultMaxSnapMeters = 500.0

// Network adapts a road Graph to the refiner's network contract.
type Network struct {
	g             *Graph
	snapper       *Snapper
	MaxSnapMeters float64
}

// New builds a Network over the given graph, including its spatial index.
func New(g *Graph) *Network {
	return &Network{
		g:             g,
		snapper:       NewSnapper(g),
		MaxSnapMeters: DefaultMaxSnapMeters,
	}
}

// Graph exposes the underlying road graph, mainly for inspection and stats.
func (n *Network) Graph() *Graph { return n.g }

// NearestNode snaps a coordinate to the closest road node.
func (n *Network) NearestNode(_ context.Context, lat, lon float64) (refine.NodeID, error) {
	node, meters, ok := n.snapper.Nearest(lat, lon)
	if !ok || meters > n.MaxSnapMeters {
		return 0, refine.ErrNoNearbyNode
	}
	return refine.NodeID(node), nil
}

// ShortestPath returns the length-optimal road path between two nodes.
func (n *Network) ShortestPath(ctx context.Context, from, to refine.NodeID) ([]refine.PathSegment, error) {
	path, dist, err := n.g.shortestPath(ctx, uint32(from), uint32(to))
	if err != nil {
		if errors.Is(err, errUnreachable) {
			return nil, refine.ErrNoPath
		}
		return nil, err
	}

	segments := make([]refine.PathSegment, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		segments = append(segments, refine.PathSegment{
			From:         refine.NodeID(u),
			To:           refine.NodeID(v),
			LengthMeters: float64(dist[v]-dist[u]) / 1000.0,
		})
	}
	return segments, nil
}
