package osm

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"logistics_network/pkg/facility"
	"logistics_network/pkg/geo"
)

// ParseFacilitiesOptions configures the facility parser.
type ParseFacilitiesOptions struct {
	BBox   geo.BBox // if non-zero, only facilities whose anchor point is inside are kept
	Logger *log.Logger
}

// facilityRelation is a multipolygon relation matched during the
// relation pass, pending geometry resolution.
type facilityRelation struct {
	OuterWayIDs []osm.WayID
	Tags        osm.Tags
	ID          osm.RelationID
}

// facilityWay is a closed tagged way matched during the way pass.
type facilityWay struct {
	NodeIDs []osm.NodeID
	Tags    osm.Tags
	ID      osm.WayID
}

// ParseFacilities reads an OSM PBF file and returns the facility
// records of the given mode: tagged nodes become points, closed tagged
// ways become polygons, and type=multipolygon relations with matching
// tags become multi-polygons assembled from their closed outer members.
// The reader is consumed three times and must implement io.ReadSeeker.
func ParseFacilities(ctx context.Context, rs io.ReadSeeker, mode Mode, opts ParseFacilitiesOptions) ([]facility.Record, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	// Pass 1: relations. Matching multipolygon relations tell us which
	// untagged member ways to keep during the way pass.
	var relations []facilityRelation
	memberWays := make(map[osm.WayID]struct{})

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipWays = true
	for scanner.Scan() {
		r, ok := scanner.Object().(*osm.Relation)
		if !ok {
			continue
		}
		if r.Tags.Find("type") != "multipolygon" || !mode.Matches(r.Tags) {
			continue
		}

		var outer []osm.WayID
		for _, m := range r.Members {
			if m.Type != osm.TypeWay {
				continue
			}
			// An empty role is treated as outer, as assemblers
			// conventionally do for untagged legacy relations.
			if m.Role == "outer" || m.Role == "" {
				id := osm.WayID(m.Ref)
				outer = append(outer, id)
				memberWays[id] = struct{}{}
			}
		}
		if len(outer) > 0 {
			relations = append(relations, facilityRelation{OuterWayIDs: outer, Tags: r.Tags, ID: r.ID})
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("relation pass: %w", err)
	}
	scanner.Close()

	// Pass 2: ways. Keep closed tagged ways plus relation members.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for way pass: %w", err)
	}

	var taggedWays []facilityWay
	wayNodes := make(map[osm.WayID][]osm.NodeID)
	referencedNodes := make(map[osm.NodeID]struct{})

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}

		_, isMember := memberWays[w.ID]
		isTagged := mode.Matches(w.Tags) && isClosed(w.Nodes)
		if !isMember && !isTagged {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		if isMember {
			wayNodes[w.ID] = nodeIDs
		}
		if isTagged {
			taggedWays = append(taggedWays, facilityWay{NodeIDs: nodeIDs, Tags: w.Tags, ID: w.ID})
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("way pass: %w", err)
	}
	scanner.Close()

	// Pass 3: nodes. Coordinates for referenced nodes plus tagged
	// stand-alone facility nodes.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for node pass: %w", err)
	}

	nodeCoord := make(map[osm.NodeID]orb.Point, len(referencedNodes))
	var records []facility.Record

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; needed {
			nodeCoord[n.ID] = orb.Point{n.Lon, n.Lat}
		}
		if mode.Matches(n.Tags) {
			if !opts.BBox.IsZero() && !opts.BBox.Contains(n.Lat, n.Lon) {
				continue
			}
			records = append(records, facility.Record{
				Geometry:   orb.Point{n.Lon, n.Lat},
				Attributes: tagAttributes(n.Tags, "node", int64(n.ID)),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("node pass: %w", err)
	}
	scanner.Close()

	// Resolve way geometries.
	var unresolved int
	for _, w := range taggedWays {
		ring, ok := buildRing(w.NodeIDs, nodeCoord)
		if !ok {
			unresolved++
			continue
		}
		poly := orb.Polygon{ring}
		if !inBBox(poly, opts.BBox) {
			continue
		}
		records = append(records, facility.Record{
			Geometry:   poly,
			Attributes: tagAttributes(w.Tags, "way", int64(w.ID)),
		})
	}

	// Resolve relation geometries: each closed outer member is one ring.
	for _, r := range relations {
		var mp orb.MultiPolygon
		for _, wid := range r.OuterWayIDs {
			ring, ok := buildRing(wayNodes[wid], nodeCoord)
			if !ok {
				continue
			}
			mp = append(mp, orb.Polygon{ring})
		}
		if len(mp) == 0 {
			unresolved++
			continue
		}
		if !inBBox(mp, opts.BBox) {
			continue
		}
		records = append(records, facility.Record{
			Geometry:   mp,
			Attributes: tagAttributes(r.Tags, "relation", int64(r.ID)),
		})
	}

	if unresolved > 0 {
		logger.Warn("facility geometries with missing members skipped", "mode", mode, "count", unresolved)
	}
	logger.Info("facilities parsed", "mode", mode, "count", len(records))

	return records, nil
}

// isClosed reports whether a way's node list forms a ring.
func isClosed(nodes osm.WayNodes) bool {
	return len(nodes) >= 4 && nodes[0].ID == nodes[len(nodes)-1].ID
}

// buildRing converts a closed node ID sequence to an orb.Ring. ok is
// false when the sequence is open or any coordinate is missing.
func buildRing(nodeIDs []osm.NodeID, coords map[osm.NodeID]orb.Point) (orb.Ring, bool) {
	if len(nodeIDs) < 4 || nodeIDs[0] != nodeIDs[len(nodeIDs)-1] {
		return nil, false
	}
	ring := make(orb.Ring, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		pt, ok := coords[id]
		if !ok {
			return nil, false
		}
		ring = append(ring, pt)
	}
	return ring, true
}

// inBBox checks the geometry's bound center against the filter box.
func inBBox(g orb.Geometry, box geo.BBox) bool {
	if box.IsZero() {
		return true
	}
	center := g.Bound().Center()
	return box.Contains(center.Lat(), center.Lon())
}

// tagAttributes flattens OSM tags into a facility attribute bag. The ID
// is kept as a string so attribute values stay stable across JSON
// round-trips in the feature cache.
func tagAttributes(tags osm.Tags, osmType string, id int64) map[string]any {
	attrs := make(map[string]any, len(tags)+2)
	for _, t := range tags {
		attrs[t.Key] = t.Value
	}
	attrs["osm_type"] = osmType
	attrs["osm_id"] = strconv.FormatInt(id, 10)
	return attrs
}
