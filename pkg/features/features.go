// Package features provides facility feature sources: extraction from
// OSM extracts, plus a read-through GeoJSON cache so repeated analyses
// of the same region do not re-scan the extract.
package features

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"logistics_network/pkg/facility"
	"logistics_network/pkg/geo"
	"logistics_network/pkg/osm"
)

// Query identifies one facility lookup: a bounding box and a transport
// mode.
type Query struct {
	BBox geo.BBox
	Mode osm.Mode
}

// Key returns a stable cache key for the query. The box is hashed so
// keys stay filesystem-safe regardless of coordinate precision.
func (q Query) Key() string {
	data, _ := json.Marshal(q.BBox)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("features:%s:%s", q.Mode, hex.EncodeToString(sum[:]))
}

// Source yields facility records for a query.
type Source interface {
	Facilities(ctx context.Context, q Query) ([]facility.Record, error)
}
