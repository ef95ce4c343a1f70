// Command preprocess converts an OSM PBF extract into the binary road
// graph the server loads at startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"

	"logistics_network/pkg/geo"
	"logistics_network/pkg/osm"
	"logistics_network/pkg/roadnet"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "roads.bin", "Output binary graph file path")
	bbox := flag.String("bbox", "", "Bounding box filter: west,south,east,north (e.g. 30.0,59.6,30.8,60.2)")
	flag.Parse()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "preprocess",
	})

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--output roads.bin] [--bbox west,south,east,north]")
		os.Exit(1)
	}

	var box geo.BBox
	if *bbox != "" {
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &box.West, &box.South, &box.East, &box.North); err != nil {
			logger.Fatal("invalid bbox format (expected west,south,east,north)", "err", err)
		}
		if !box.Valid() {
			logger.Fatal("invalid bbox", "bbox", *bbox)
		}
		logger.Info("bounding box filter",
			"west", box.West, "south", box.South, "east", box.East, "north", box.North)
	}

	start := time.Now()

	f, err := os.Open(*input)
	if err != nil {
		logger.Fatal("open input", "err", err)
	}
	defer f.Close()

	logger.Info("parsing road layer", "input", *input)
	data, err := osm.ParseRoads(context.Background(), f, osm.ParseRoadsOptions{BBox: box, Logger: logger})
	if err != nil {
		logger.Fatal("parse roads", "err", err)
	}

	g := roadnet.Build(data)
	logger.Info("graph built", "nodes", g.NumNodes, "edges", g.NumEdges)

	if err := roadnet.Save(g, *output); err != nil {
		logger.Fatal("write graph", "err", err)
	}

	info, _ := os.Stat(*output)
	logger.Info("done",
		"output", *output,
		"size_mb", fmt.Sprintf("%.1f", float64(info.Size())/(1024*1024)),
		"elapsed", time.Since(start).Round(time.Second))
}
