// Package api exposes the analysis service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"logistics_network/pkg/facility"
	"logistics_network/pkg/geo"
	"logistics_network/pkg/osm"
	"logistics_network/pkg/pipeline"
	"logistics_network/pkg/render"
	"logistics_network/pkg/service"
)

// Analyzer is the service surface the handlers depend on.
type Analyzer interface {
	Analyze(ctx context.Context, req service.Request) (*pipeline.Result, error)
	ClearCache(ctx context.Context) error
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	analyzer Analyzer
	logger   *log.Logger
	stats    StatsResponse
}

// NewHandlers creates handlers backed by the given analyzer.
func NewHandlers(analyzer Analyzer, stats StatsResponse, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{analyzer: analyzer, logger: logger, stats: stats}
}

// parseBBox reads the west, south, east and north query parameters
// (all required) into a bounding box.
func parseBBox(r *http.Request) (geo.BBox, string, error) {
	q := r.URL.Query()

	var box geo.BBox
	coords := map[string]*float64{
		"west":  &box.West,
		"south": &box.South,
		"east":  &box.East,
		"north": &box.North,
	}
	for field, dst := range coords {
		raw := q.Get(field)
		if raw == "" {
			return box, field, errors.New("missing parameter")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return box, field, errors.New("not a finite number")
		}
		*dst = v
	}
	if !box.Valid() {
		return box, "bbox", errors.New("invalid bounding box")
	}
	return box, "", nil
}

// parseRequest reads the analysis parameters from the query string:
// the bounding box (required) and mode (default "road").
func parseRequest(r *http.Request) (service.Request, string, error) {
	var req service.Request

	box, field, err := parseBBox(r)
	if err != nil {
		return req, field, err
	}
	req.BBox = box

	modeRaw := r.URL.Query().Get("mode")
	if modeRaw == "" {
		modeRaw = string(osm.ModeRoad)
	}
	mode, err := osm.ParseMode(modeRaw)
	if err != nil {
		return req, "mode", err
	}
	req.Mode = mode

	return req, "", nil
}

// HandleAnalyze handles POST /api/v1/analyze.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, field, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", field)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		h.writeAnalyzeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleMap handles GET /api/v1/map: the same analysis rendered as an
// interactive HTML page.
func (h *Handlers) HandleMap(w http.ResponseWriter, r *http.Request) {
	req, field, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", field)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		h.writeAnalyzeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("Logistics network — %s", req.Mode)
	if err := render.Map(w, result, title); err != nil {
		h.logger.Error("map render failed", "err", err)
	}
}

// HandleMapAll handles GET /api/v1/map/all: one page overlaying the
// spanning trees of every transport mode over the same region.
func (h *Handlers) HandleMapAll(w http.ResponseWriter, r *http.Request) {
	box, field, err := parseBBox(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", field)
		return
	}

	layers := make([]render.ModeLayer, 0, len(osm.Modes))
	for _, mode := range osm.Modes {
		result, err := h.analyzer.Analyze(r.Context(), service.Request{BBox: box, Mode: mode})
		if err != nil {
			h.writeAnalyzeError(w, err)
			return
		}
		layers = append(layers, render.ModeLayer{Mode: string(mode), Result: result})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.MapAll(w, layers, "Logistics network — all modes"); err != nil {
		h.logger.Error("combined map render failed", "err", err)
	}
}

// HandleNetworkMetrics handles GET /api/v1/network/metrics: a per-node
// analysis (e.g. degree centrality) computed over the built network.
func (h *Handlers) HandleNetworkMetrics(w http.ResponseWriter, r *http.Request) {
	req, field, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", field)
		return
	}

	metricRaw := r.URL.Query().Get("metric")
	if metricRaw == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "metric")
		return
	}
	metric, err := pipeline.ParseNetworkMetric(metricRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "metric")
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		h.writeAnalyzeError(w, err)
		return
	}

	values, err := result.ComputeMetric(metric)
	if err != nil {
		h.logger.Error("metric computation failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	writeJSON(w, http.StatusOK, MetricsResponse{
		Status: "ok",
		Mode:   string(req.Mode),
		Metric: string(metric),
		Values: values,
	})
}

// HandleIndex handles GET /: a short machine-readable API index.
func (h *Handlers) HandleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, IndexResponse{
		Message: "Logistics Network API",
		Endpoints: []string{
			"GET /",
			"POST /api/v1/analyze",
			"GET /api/v1/map",
			"GET /api/v1/map/all",
			"GET /api/v1/network/metrics",
			"GET /api/v1/health",
			"GET /api/v1/stats",
			"DELETE /api/v1/cache",
			"GET /metrics",
		},
	})
}

// HandleClearCache handles DELETE /api/v1/cache.
func (h *Handlers) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.analyzer.ClearCache(r.Context()); err != nil {
		h.logger.Error("cache clear failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

func (h *Handlers) writeAnalyzeError(w http.ResponseWriter, err error) {
	var gerr *facility.GeometryError
	switch {
	case errors.As(err, &gerr):
		writeError(w, http.StatusUnprocessableEntity, "invalid_facility_geometry",
			fmt.Sprintf("record %d", gerr.Index))
	case errors.Is(err, service.ErrTooManyFacilities):
		writeError(w, http.StatusUnprocessableEntity, "too_many_facilities", "")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		h.logger.Error("analysis failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
