package features

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"logistics_network/pkg/facility"
	"logistics_network/pkg/osm"
)

// PBFSource extracts facilities from an OSM PBF extract on disk. Each
// query re-opens and scans the file; put a CachedSource in front for
// interactive use.
type PBFSource struct {
	path   string
	logger *log.Logger
}

// NewPBFSource creates a source backed by the extract at path.
func NewPBFSource(path string, logger *log.Logger) *PBFSource {
	if logger == nil {
		logger = log.Default()
	}
	return &PBFSource{path: path, logger: logger}
}

// Facilities parses the extract for the query's mode and box.
func (s *PBFSource) Facilities(ctx context.Context, q Query) ([]facility.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open extract: %w", err)
	}
	defer f.Close()

	records, err := osm.ParseFacilities(ctx, f, q.Mode, osm.ParseFacilitiesOptions{
		BBox:   q.BBox,
		Logger: s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("parse facilities: %w", err)
	}
	return records, nil
}
