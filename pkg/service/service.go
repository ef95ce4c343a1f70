// Package service orchestrates one network analysis: facility lookup,
// routable network construction and the pipeline run, with logging and
// metrics around each stage.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"logistics_network/pkg/facility"
	"logistics_network/pkg/features"
	"logistics_network/pkg/geo"
	"logistics_network/pkg/metrics"
	"logistics_network/pkg/osm"
	"logistics_network/pkg/pipeline"
	"logistics_network/pkg/refine"
)

// NetworkProvider yields a routable network for a region. A provider
// error other than context cancellation degrades the analysis to
// geodesic fallback edges instead of failing it.
type NetworkProvider interface {
	Network(ctx context.Context, box geo.BBox) (refine.Network, error)
}

// CacheControl clears cached feature data.
type CacheControl interface {
	Clear(ctx context.Context) error
}

// ErrTooManyFacilities is returned when a region exceeds the configured
// facility limit. The distance graph is quadratic in the facility
// count, so oversized regions are rejected before graph construction.
var ErrTooManyFacilities = errors.New("too many facilities in region")

// Request describes one analysis.
type Request struct {
	BBox geo.BBox
	Mode osm.Mode
}

// Analyzer runs analyses against a feature source and a road network
// provider.
type Analyzer struct {
	source        features.Source
	provider      NetworkProvider
	cache         CacheControl
	logger        *log.Logger
	maxFacilities int
	opts          pipeline.Options
}

// Options configures an Analyzer.
type Options struct {
	RefineWorkers int
	EdgeTimeout   time.Duration
	ExtractPolicy facility.Policy
	MaxFacilities int          // 0 disables the limit
	Cache         CacheControl // optional; enables ClearCache
	Logger        *log.Logger
}

// NewAnalyzer wires an analyzer. provider may be nil, in which case
// every analysis produces geodesic fallback edges.
func NewAnalyzer(source features.Source, provider NetworkProvider, opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{
		source:        source,
		provider:      provider,
		cache:         opts.Cache,
		logger:        logger,
		maxFacilities: opts.MaxFacilities,
		opts: pipeline.Options{
			ExtractPolicy: opts.ExtractPolicy,
			RefineWorkers: opts.RefineWorkers,
			EdgeTimeout:   opts.EdgeTimeout,
		},
	}
}

// Analyze runs the full pipeline for one region and mode.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*pipeline.Result, error) {
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID, "mode", req.Mode)
	start := time.Now()

	logger.Info("analysis started",
		"west", req.BBox.West, "south", req.BBox.South,
		"east", req.BBox.East, "north", req.BBox.North)

	records, err := a.source.Facilities(ctx, features.Query{BBox: req.BBox, Mode: req.Mode})
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(string(req.Mode), "error").Inc()
		return nil, fmt.Errorf("facility lookup: %w", err)
	}
	metrics.FacilitiesExtracted.WithLabelValues(string(req.Mode)).Add(float64(len(records)))

	if a.maxFacilities > 0 && len(records) > a.maxFacilities {
		metrics.AnalysesTotal.WithLabelValues(string(req.Mode), "error").Inc()
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFacilities, len(records), a.maxFacilities)
	}

	net := a.network(ctx, req.BBox, logger)
	if err := ctx.Err(); err != nil {
		metrics.AnalysesTotal.WithLabelValues(string(req.Mode), "error").Inc()
		return nil, err
	}

	result, err := pipeline.Run(ctx, records, net, a.opts)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(string(req.Mode), "error").Inc()
		return nil, err
	}

	for _, e := range result.Edges {
		metrics.EdgesTotal.WithLabelValues(string(e.Status)).Inc()
	}
	metrics.AnalysesTotal.WithLabelValues(string(req.Mode), string(result.Status)).Inc()
	metrics.AnalysisDuration.WithLabelValues(string(req.Mode)).Observe(time.Since(start).Seconds())

	logger.Info("analysis finished",
		"status", result.Status,
		"nodes", result.NodesCount,
		"edges", result.EdgesCount,
		"dropped", result.DroppedRecords,
		"total_km", result.TotalDistanceMeters/1000,
		"elapsed", time.Since(start))

	return result, nil
}

// network builds the region's routable network, degrading to nil (pure
// geodesic fallback) when the region has no roads or the provider fails.
func (a *Analyzer) network(ctx context.Context, box geo.BBox, logger *log.Logger) refine.Network {
	if a.provider == nil {
		return nil
	}
	net, err := a.provider.Network(ctx, box)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		logger.Warn("road network unavailable, using geodesic fallback", "err", err)
		return nil
	}
	return net
}

// ClearCache drops cached feature data. It is a no-op without a cache.
func (a *Analyzer) ClearCache(ctx context.Context) error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Clear(ctx)
}
