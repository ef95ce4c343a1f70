package roadnet

import (
	"math"

	"github.com/tidwall/rtree"

	"logistics_network/pkg/geo"
)

// snapCandidates is how many nearest nodes (by planar box distance) are
// re-ranked with the haversine metric before choosing. Planar ordering
// in lon/lat degrees is slightly off away from the equator, so the top
// candidate is not always the true nearest.
const snapCandidates = 8

// Snapper answers nearest-node queries over road graph nodes using an
// R-tree spatial index.
type Snapper struct {
	tr rtree.RTreeG[uint32]
	g  *Graph
}

// NewSnapper builds the spatial index. O(n log n) over graph nodes.
func NewSnapper(g *Graph) *Snapper {
	s := &Snapper{g: g}
	for i := uint32(0); i < g.NumNodes; i++ {
		pt := [2]float64{g.NodeLon[i], g.NodeLat[i]}
		s.tr.Insert(pt, pt, i)
	}
	return s
}

// Nearest returns the road node closest to the query coordinate and its
// haversine distance in meters. ok is false when the graph is empty.
func (s *Snapper) Nearest(lat, lon float64) (node uint32, meters float64, ok bool) {
	best := uint32(noNode)
	bestDist := math.Inf(1)
	seen := 0

	q := [2]float64{lon, lat}
	s.tr.Nearby(
		rtree.BoxDist[float64, uint32](q, q, nil),
		func(_, _ [2]float64, n uint32, _ float64) bool {
			d := geo.Haversine(lat, lon, s.g.NodeLat[n], s.g.NodeLon[n])
			if d < bestDist {
				bestDist = d
				best = n
			}
			seen++
			return seen < snapCandidates
		},
	)

	if best == noNode {
		return 0, 0, false
	}
	return best, bestDist, true
}
