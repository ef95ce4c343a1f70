// Package facility models logistics facility records and their reduction
// to representative coordinates.
//
// A facility arrives as a geometric feature (point, polygon or
// multi-polygon in WGS84 lon/lat) plus an opaque attribute bag. The
// extractor collapses each record to a single representative point:
// identity for points, planar area-weighted centroid for (multi-)polygons.
// The planar centroid is a deliberate choice — facility footprints are
// city-scale, where the projection error is far below road-network
// resolution.
package facility

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"logistics_network/pkg/geo"
)

// Record is one input feature: a geometry plus arbitrary attributes.
// Records are immutable once loaded.
type Record struct {
	Geometry   orb.Geometry
	Attributes map[string]any
}

// LocatedPoint is a facility reduced to a representative coordinate.
// Its identity is its position in the extracted sequence; graph edges
// reference that index.
type LocatedPoint struct {
	Lat        float64
	Lon        float64
	Attributes map[string]any
}

// Policy controls how the extractor treats records that cannot yield a
// finite representative coordinate.
type Policy int

const (
	// PolicyFail aborts extraction on the first bad record.
	PolicyFail Policy = iota
	// PolicyDrop skips bad records and reports how many were dropped.
	PolicyDrop
)

// GeometryError describes a record whose geometry is unsupported or
// resolves to a non-finite coordinate.
type GeometryError struct {
	Index  int
	Kind   string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("record %d: %s geometry: %s", e.Index, e.Kind, e.Reason)
}

// Extract reduces records to an ordered sequence of located points.
// Output order follows input order for all kept records. With PolicyFail
// the first invalid record aborts the whole operation; with PolicyDrop
// invalid records are skipped and counted in dropped.
func Extract(records []Record, policy Policy) (points []LocatedPoint, dropped int, err error) {
	points = make([]LocatedPoint, 0, len(records))

	for i, rec := range records {
		lat, lon, gerr := representative(i, rec.Geometry)
		if gerr != nil {
			if policy == PolicyDrop {
				dropped++
				continue
			}
			return nil, 0, gerr
		}

		points = append(points, LocatedPoint{
			Lat:        lat,
			Lon:        lon,
			Attributes: copyAttributes(rec.Attributes),
		})
	}

	return points, dropped, nil
}

// representative resolves one geometry to its representative coordinate.
func representative(idx int, g orb.Geometry) (lat, lon float64, err error) {
	switch geom := g.(type) {
	case orb.Point:
		lat, lon = geom.Lat(), geom.Lon()
	case orb.Polygon, orb.MultiPolygon:
		centroid, area := planar.CentroidArea(geom)
		if area == 0 {
			return 0, 0, &GeometryError{Index: idx, Kind: g.GeoJSONType(), Reason: "zero-area polygon"}
		}
		lat, lon = centroid.Lat(), centroid.Lon()
	case nil:
		return 0, 0, &GeometryError{Index: idx, Kind: "none", Reason: "missing geometry"}
	default:
		return 0, 0, &GeometryError{Index: idx, Kind: g.GeoJSONType(), Reason: "unsupported geometry kind"}
	}

	if !geo.IsFiniteLatLon(lat, lon) {
		return 0, 0, &GeometryError{Index: idx, Kind: g.GeoJSONType(), Reason: "non-finite coordinate"}
	}
	return lat, lon, nil
}

// copyAttributes shallow-copies the attribute bag so stages downstream
// never alias the source record.
func copyAttributes(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
