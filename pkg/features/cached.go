package features

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb/geojson"

	"logistics_network/pkg/facility"
)

// CachedSource is a read-through cache in front of another Source.
// Payloads are stored as GeoJSON feature collections, so cache files
// double as debuggable artifacts.
type CachedSource struct {
	src    Source
	cache  Cache
	ttl    time.Duration
	logger *log.Logger

	// OnLookup, when set, is invoked once per query with the hit outcome.
	OnLookup func(hit bool)
}

// NewCachedSource wraps src with the given cache. A non-positive ttl
// stores entries without expiration.
func NewCachedSource(src Source, cache Cache, ttl time.Duration, logger *log.Logger) *CachedSource {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedSource{src: src, cache: cache, ttl: ttl, logger: logger}
}

// Facilities returns cached records when present, otherwise consults
// the underlying source and stores the result. Cache failures degrade
// to source reads rather than failing the query.
func (s *CachedSource) Facilities(ctx context.Context, q Query) ([]facility.Record, error) {
	key := q.Key()

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("feature cache read failed", "key", key, "err", err)
	}
	if hit {
		records, err := decodeRecords(data)
		if err == nil {
			s.notify(true)
			return records, nil
		}
		// Stale or hand-edited entry. Drop it and fall through.
		s.logger.Warn("feature cache entry undecodable, evicting", "key", key, "err", err)
		_ = s.cache.Delete(ctx, key)
	}
	s.notify(false)

	records, err := s.src.Facilities(ctx, q)
	if err != nil {
		return nil, err
	}

	payload, err := encodeRecords(records)
	if err != nil {
		s.logger.Warn("feature cache encode failed", "key", key, "err", err)
		return records, nil
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.logger.Warn("feature cache write failed", "key", key, "err", err)
	}
	return records, nil
}

// Invalidate drops the cached entry for one query.
func (s *CachedSource) Invalidate(ctx context.Context, q Query) error {
	return s.cache.Delete(ctx, q.Key())
}

// Clear drops every cached entry.
func (s *CachedSource) Clear(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func (s *CachedSource) notify(hit bool) {
	if s.OnLookup != nil {
		s.OnLookup(hit)
	}
}

// encodeRecords serializes facility records as a GeoJSON feature
// collection, attributes as properties.
func encodeRecords(records []facility.Record) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		f := geojson.NewFeature(r.Geometry)
		f.Properties = geojson.Properties(r.Attributes)
		fc.Append(f)
	}
	return fc.MarshalJSON()
}

func decodeRecords(data []byte) ([]facility.Record, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	records := make([]facility.Record, 0, len(fc.Features))
	for _, f := range fc.Features {
		records = append(records, facility.Record{
			Geometry:   f.Geometry,
			Attributes: map[string]any(f.Properties),
		})
	}
	return records, nil
}
