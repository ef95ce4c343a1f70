package api

import "logistics_network/pkg/pipeline"

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	GraphNodes uint32   `json:"graph_nodes"`
	GraphEdges uint32   `json:"graph_edges"`
	Modes      []string `json:"modes"`
}

// IndexResponse is the JSON response for GET /: a short description of
// the API and the routes it serves.
type IndexResponse struct {
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// MetricsResponse is the JSON response for GET /api/v1/network/metrics.
type MetricsResponse struct {
	Status string                 `json:"status"`
	Mode   string                 `json:"mode"`
	Metric string                 `json:"metric"`
	Values []pipeline.MetricValue `json:"values"`
}
