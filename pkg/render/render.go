// Package render produces a self-contained Leaflet HTML map of an
// analysis result: facility markers plus the spanning tree, with
// refined and fallback edges styled differently.
package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"logistics_network/pkg/pipeline"
)

//go:embed map.html.tmpl map_all.html.tmpl
var templates embed.FS

var (
	mapTemplate    = template.Must(template.ParseFS(templates, "map.html.tmpl"))
	mapAllTemplate = template.Must(template.ParseFS(templates, "map_all.html.tmpl"))
)

// mapData is the template payload. Result is pre-marshaled JSON so the
// page script receives exactly the API response shape.
type mapData struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Result    template.JS
}

// Map writes an HTML page visualizing the result.
func Map(w io.Writer, result *pipeline.Result, title string) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	lat, lon, zoom := viewport(result)
	return mapTemplate.Execute(w, mapData{
		Title:     title,
		CenterLat: lat,
		CenterLon: lon,
		Zoom:      zoom,
		// json.Marshal escapes <, > and & so the payload is safe to
		// inline inside a script element.
		Result: template.JS(payload),
	})
}

// ModeLayer pairs a transport mode with its analysis result for the
// combined map.
type ModeLayer struct {
	Mode   string           `json:"mode"`
	Result *pipeline.Result `json:"result"`
}

// mapAllData is the combined-map template payload.
type mapAllData struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Layers    template.JS
}

// MapAll writes an HTML page overlaying one spanning tree per mode,
// each drawn in its own color.
func MapAll(w io.Writer, layers []ModeLayer, title string) error {
	payload, err := json.Marshal(layers)
	if err != nil {
		return fmt.Errorf("marshal layers: %w", err)
	}

	// Center on the union of all modes' facilities.
	var points []pipeline.Point
	for _, l := range layers {
		if l.Result != nil {
			points = append(points, l.Result.Points...)
		}
	}
	lat, lon, zoom := viewportPoints(points)
	return mapAllTemplate.Execute(w, mapAllData{
		Title:     title,
		CenterLat: lat,
		CenterLon: lon,
		Zoom:      zoom,
		Layers:    template.JS(payload),
	})
}

// viewport centers on the mean facility position; a world view is used
// when there are no facilities.
func viewport(result *pipeline.Result) (lat, lon float64, zoom int) {
	if result == nil {
		return viewportPoints(nil)
	}
	return viewportPoints(result.Points)
}

func viewportPoints(points []pipeline.Point) (lat, lon float64, zoom int) {
	if len(points) == 0 {
		return 20, 0, 2
	}
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return lat / n, lon / n, 12
}
