package roadnet

import (
	"context"
	"errors"

	"logistics_network/pkg/geo"
	"logistics_network/pkg/refine"
)

// ErrEmptyRegion is returned when the requested region contains no
// routable roads at all.
var ErrEmptyRegion = errors.New("roadnet: no routable roads in region")

// Provider cuts region-restricted routable networks out of a master
// road graph. Each analysis gets its own subgraph so snapping and
// routing never leave the area of interest.
type Provider struct {
	g *Graph
}

// NewProvider wraps a master graph, typically loaded once at startup.
func NewProvider(g *Graph) *Provider {
	return &Provider{g: g}
}

// Network returns the largest connected road component inside the box.
// Keeping only the largest component avoids snapping two facilities
// onto fragments with no path between them.
func (p *Provider) Network(ctx context.Context, box geo.BBox) (refine.Network, error) {
	sub := p.g
	if !box.IsZero() {
		inBox := make([]bool, p.g.NumNodes)
		for i := uint32(0); i < p.g.NumNodes; i++ {
			inBox[i] = box.Contains(p.g.NodeLat[i], p.g.NodeLon[i])
		}
		sub = filter(p.g, inBox)
	}
	if sub.NumNodes == 0 {
		return nil, ErrEmptyRegion
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	core := filter(sub, largestComponent(sub))
	if core.NumNodes == 0 {
		return nil, ErrEmptyRegion
	}
	return New(core), nil
}
