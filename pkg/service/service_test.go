package service

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"logistics_network/pkg/facility"
	"logistics_network/pkg/features"
	"logistics_network/pkg/geo"
	"logistics_network/pkg/osm"
	"logistics_network/pkg/pipeline"
	"logistics_network/pkg/refine"
)

type stubSource struct {
	records []facility.Record
	err     error
	queries []features.Query
}

func (s *stubSource) Facilities(_ context.Context, q features.Query) ([]facility.Record, error) {
	s.queries = append(s.queries, q)
	return s.records, s.err
}

type stubProvider struct {
	net refine.Network
	err error
}

func (p *stubProvider) Network(context.Context, geo.BBox) (refine.Network, error) {
	return p.net, p.err
}

type stubCache struct{ cleared int }

func (c *stubCache) Clear(context.Context) error {
	c.cleared++
	return nil
}

func facilityRecords() []facility.Record {
	return []facility.Record{
		{Geometry: orb.Point{30.0, 59.0}, Attributes: map[string]any{"name": "A"}},
		{Geometry: orb.Point{30.1, 59.1}, Attributes: map[string]any{"name": "B"}},
		{Geometry: orb.Point{30.2, 59.0}, Attributes: map[string]any{"name": "C"}},
	}
}

var testRequest = Request{
	BBox: geo.BBox{West: 29.9, South: 58.9, East: 30.3, North: 59.2},
	Mode: osm.ModeRoad,
}

func TestAnalyzeFallbackWithoutProvider(t *testing.T) {
	src := &stubSource{records: facilityRecords()}
	a := NewAnalyzer(src, nil, Options{})

	result, err := a.Analyze(context.Background(), testRequest)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Status != pipeline.StatusOK {
		t.Fatalf("status = %q, want ok", result.Status)
	}
	if result.NodesCount != 3 || result.EdgesCount != 2 {
		t.Errorf("network = %d nodes, %d edges; want 3 and 2", result.NodesCount, result.EdgesCount)
	}
	for _, e := range result.Edges {
		if e.Status != refine.StatusFallback {
			t.Errorf("edge status = %q, want fallback without a provider", e.Status)
		}
	}
	if len(src.queries) != 1 || src.queries[0].Mode != osm.ModeRoad {
		t.Errorf("source queries = %+v", src.queries)
	}
}

func TestAnalyzeDegradesOnProviderError(t *testing.T) {
	src := &stubSource{records: facilityRecords()}
	provider := &stubProvider{err: errors.New("no routable roads")}
	a := NewAnalyzer(src, provider, Options{})

	result, err := a.Analyze(context.Background(), testRequest)
	if err != nil {
		t.Fatalf("provider failure must not fail the analysis: %v", err)
	}
	for _, e := range result.Edges {
		if e.Status != refine.StatusFallback {
			t.Errorf("edge status = %q, want fallback", e.Status)
		}
	}
}

func TestAnalyzeEmptyRegion(t *testing.T) {
	src := &stubSource{}
	a := NewAnalyzer(src, nil, Options{})

	result, err := a.Analyze(context.Background(), testRequest)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Status != pipeline.StatusNoData {
		t.Errorf("status = %q, want no_data", result.Status)
	}
	if result.Points == nil || result.Edges == nil {
		t.Error("empty result must keep non-nil slices")
	}
}

func TestAnalyzeSourceError(t *testing.T) {
	src := &stubSource{err: errors.New("extract unreadable")}
	a := NewAnalyzer(src, nil, Options{})

	if _, err := a.Analyze(context.Background(), testRequest); err == nil {
		t.Error("source failure must fail the analysis")
	}
}

func TestAnalyzeGeometryError(t *testing.T) {
	src := &stubSource{records: []facility.Record{
		{Geometry: orb.LineString{{30, 59}, {31, 59}}},
	}}
	a := NewAnalyzer(src, nil, Options{})

	_, err := a.Analyze(context.Background(), testRequest)
	var gerr *facility.GeometryError
	if !errors.As(err, &gerr) {
		t.Errorf("error = %v, want a GeometryError", err)
	}
}

func TestAnalyzeFacilityLimit(t *testing.T) {
	src := &stubSource{records: facilityRecords()}
	a := NewAnalyzer(src, nil, Options{MaxFacilities: 2})

	_, err := a.Analyze(context.Background(), testRequest)
	if !errors.Is(err, ErrTooManyFacilities) {
		t.Errorf("error = %v, want ErrTooManyFacilities", err)
	}

	// Zero disables the limit.
	unlimited := NewAnalyzer(src, nil, Options{})
	if _, err := unlimited.Analyze(context.Background(), testRequest); err != nil {
		t.Errorf("Analyze without limit: %v", err)
	}
}

func TestClearCache(t *testing.T) {
	cache := &stubCache{}
	a := NewAnalyzer(&stubSource{}, nil, Options{Cache: cache})

	if err := a.ClearCache(context.Background()); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	if cache.cleared != 1 {
		t.Errorf("cleared %d times, want 1", cache.cleared)
	}

	// Without a cache it is a no-op.
	bare := NewAnalyzer(&stubSource{}, nil, Options{})
	if err := bare.ClearCache(context.Background()); err != nil {
		t.Errorf("ClearCache without cache: %v", err)
	}
}
