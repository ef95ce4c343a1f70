// Command server runs the logistics network analysis HTTP service.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"

	"logistics_network/pkg/api"
	"logistics_network/pkg/config"
	"logistics_network/pkg/features"
	"logistics_network/pkg/metrics"
	"logistics_network/pkg/osm"
	"logistics_network/pkg/roadnet"
	"logistics_network/pkg/service"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	extractPath := flag.String("extract", "", "OSM PBF extract (overrides config)")
	graphPath := flag.String("graph", "", "Prebuilt binary road graph (overrides config)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "server",
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	if *extractPath != "" {
		cfg.Data.ExtractPath = *extractPath
	}
	if *graphPath != "" {
		cfg.Data.RoadGraphPath = *graphPath
	}
	if *addr != "" {
		cfg.Server.ListenAddr = *addr
	}
	if cfg.Data.ExtractPath == "" {
		logger.Fatal("no OSM extract configured (set data.extract_path or --extract)")
	}

	start := time.Now()

	// Road graph: prefer the prebuilt binary, fall back to parsing the
	// extract, degrade to geodesic-only analyses when neither works.
	var provider service.NetworkProvider
	stats := api.StatsResponse{Modes: modeNames()}
	if g := loadRoadGraph(cfg, logger); g != nil {
		provider = roadnet.NewProvider(g)
		stats.GraphNodes = g.NumNodes
		stats.GraphEdges = g.NumEdges
	}

	// Facility source, with the read-through feature cache in front.
	var source features.Source = features.NewPBFSource(cfg.Data.ExtractPath, logger)
	var cacheControl service.CacheControl
	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		fileCache, err := features.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			logger.Fatal("init feature cache", "dir", cfg.Cache.Dir, "err", err)
		}
		cached := features.NewCachedSource(source, fileCache, cfg.Cache.TTL.Std(), logger)
		cached.OnLookup = func(hit bool) {
			if hit {
				metrics.CacheHits.Inc()
			} else {
				metrics.CacheMisses.Inc()
			}
		}
		source = cached
		cacheControl = cached
		logger.Info("feature cache enabled", "dir", cfg.Cache.Dir, "ttl", cfg.Cache.TTL.Std())
	}

	analyzer := service.NewAnalyzer(source, provider, service.Options{
		RefineWorkers: cfg.Refine.Workers,
		EdgeTimeout:   cfg.Refine.EdgeTimeout.Std(),
		MaxFacilities: cfg.Pipeline.MaxFacilities,
		Cache:         cacheControl,
		Logger:        logger,
	})

	logger.Info("ready", "elapsed", time.Since(start).Round(time.Millisecond))

	serverCfg := api.ServerConfig{
		Addr:            cfg.Server.ListenAddr,
		RequestTimeout:  cfg.Server.RequestTimeout.Std(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
	}
	handlers := api.NewHandlers(analyzer, stats, logger)
	router := api.NewRouter(serverCfg, handlers, logger)
	srv := api.NewServer(serverCfg, router)

	if err := api.ListenAndServe(srv, serverCfg.ShutdownTimeout, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// loadRoadGraph loads the binary graph when configured, otherwise
// parses the road layer out of the extract. Returns nil when no road
// data is available; analyses then use geodesic fallback edges.
func loadRoadGraph(cfg config.Config, logger *charmlog.Logger) *roadnet.Graph {
	if cfg.Data.RoadGraphPath != "" {
		logger.Info("loading road graph", "path", cfg.Data.RoadGraphPath)
		g, err := roadnet.Load(cfg.Data.RoadGraphPath)
		if err != nil {
			logger.Fatal("load road graph", "err", err)
		}
		logger.Info("road graph loaded", "nodes", g.NumNodes, "edges", g.NumEdges)
		return g
	}

	logger.Info("parsing road layer from extract", "path", cfg.Data.ExtractPath)
	f, err := os.Open(cfg.Data.ExtractPath)
	if err != nil {
		logger.Fatal("open extract", "err", err)
	}
	defer f.Close()

	data, err := osm.ParseRoads(context.Background(), f, osm.ParseRoadsOptions{Logger: logger})
	if err != nil {
		logger.Warn("road layer unavailable, analyses will use geodesic distances", "err", err)
		return nil
	}
	g := roadnet.Build(data)
	logger.Info("road graph built", "nodes", g.NumNodes, "edges", g.NumEdges)
	return g
}

func modeNames() []string {
	names := make([]string, len(osm.Modes))
	for i, m := range osm.Modes {
		names[i] = string(m)
	}
	return names
}
