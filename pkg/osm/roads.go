package osm

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"logistics_network/pkg/geo"
)

// RoadEdge is a directed drivable edge parsed from OSM data.
type RoadEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	WeightMM   uint32 // great-circle length in millimeters
}

// RoadData holds the output of parsing the road layer of a PBF file.
type RoadData struct {
	Edges   []RoadEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// carHighways lists highway tag values accessible by freight vehicles.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isDrivable returns true if the way is usable by road freight.
func isDrivable(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	// Skip restricted access.
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	return true
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	// Default: bidirectional.
	forward = true
	backward = true

	hw := tags.Find("highway")

	// Implied oneway for motorways and roundabouts.
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	// Explicit oneway tag overrides.
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		// Time-dependent — skip entirely.
		forward = false
		backward = false
	}

	return forward, backward
}

// roadWay holds parsed way data collected during the way pass.
type roadWay struct {
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
}

// ParseRoadsOptions configures the road parser.
type ParseRoadsOptions struct {
	BBox   geo.BBox // if non-zero, only edges with both endpoints inside are kept
	Logger *log.Logger
}

// ParseRoads reads an OSM PBF file and returns directed edges for
// freight routing. The reader is consumed twice (it seeks back to the
// start for the node pass), so it must implement io.ReadSeeker.
func ParseRoads(ctx context.Context, rs io.ReadSeeker, opts ParseRoadsOptions) (*RoadData, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	useBBox := !opts.BBox.IsZero()

	// Pass 1: scan ways to collect referenced node IDs and direction flags.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []roadWay

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}

		if !isDrivable(w.Tags) || len(w.Nodes) < 2 {
			continue
		}

		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		ways = append(ways, roadWay{NodeIDs: nodeIDs, Forward: fwd, Backward: bwd})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("way pass: %w", err)
	}
	scanner.Close()

	logger.Debug("road way pass complete", "ways", len(ways), "referenced_nodes", len(referencedNodes))

	// Pass 2: scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for node pass: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("node pass: %w", err)
	}
	scanner.Close()

	// Build edges from ways.
	var edges []RoadEdge
	var skipped, filtered int

	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID := w.NodeIDs[i]
			toID := w.NodeIDs[i+1]

			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]

			if !fromOk || !toOk {
				skipped++
				continue
			}

			if useBBox && (!opts.BBox.Contains(fromLat, fromLon) || !opts.BBox.Contains(toLat, toLon)) {
				filtered++
				continue
			}

			dist := geo.Haversine(fromLat, fromLon, toLat, toLon)
			weightMM := uint32(math.Round(dist * 1000))
			if weightMM == 0 {
				weightMM = 1 // avoid zero-weight edges
			}

			if w.Forward {
				edges = append(edges, RoadEdge{FromNodeID: fromID, ToNodeID: toID, WeightMM: weightMM})
			}
			if w.Backward {
				edges = append(edges, RoadEdge{FromNodeID: toID, ToNodeID: fromID, WeightMM: weightMM})
			}
		}
	}

	if skipped > 0 {
		logger.Warn("skipped edges with missing node coordinates", "count", skipped)
	}
	if filtered > 0 {
		logger.Debug("filtered edges outside bounding box", "count", filtered)
	}
	logger.Info("road network parsed", "directed_edges", len(edges), "nodes", len(nodeLat))

	return &RoadData{Edges: edges, NodeLat: nodeLat, NodeLon: nodeLon}, nil
}
