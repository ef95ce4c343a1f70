// Package config loads server configuration from a TOML file with
// sensible defaults for every field, so an empty file is a valid
// configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level server configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Data     Data     `toml:"data"`
	Cache    CacheC   `toml:"cache"`
	Refine   Refine   `toml:"refine"`
	Pipeline Pipeline `toml:"pipeline"`
}

// Server holds HTTP listener settings.
type Server struct {
	ListenAddr      string   `toml:"listen_addr"`
	RequestTimeout  Duration `toml:"request_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Data points at the map inputs: an OSM PBF extract for facilities and
// either the same extract or a prebuilt binary graph for roads.
type Data struct {
	ExtractPath   string `toml:"extract_path"`
	RoadGraphPath string `toml:"road_graph_path"` // optional; built from the extract when empty
}

// CacheC configures the facility feature cache.
type CacheC struct {
	Dir     string   `toml:"dir"` // empty disables caching
	TTL     Duration `toml:"ttl"`
	Enabled bool     `toml:"enabled"`
}

// Refine configures route refinement.
type Refine struct {
	Workers     int      `toml:"workers"`
	EdgeTimeout Duration `toml:"edge_timeout"`
}

// Pipeline bounds analysis input size. The distance graph is quadratic
// in the facility count, so unbounded regions must be rejected early.
type Pipeline struct {
	MaxFacilities int `toml:"max_facilities"` // 0 disables the limit
}

// Duration unmarshals TOML strings like "30s" or "5m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			ListenAddr:      ":8080",
			RequestTimeout:  Duration(60 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Cache: CacheC{
			Dir:     ".cache/features",
			TTL:     Duration(24 * time.Hour),
			Enabled: true,
		},
		Refine: Refine{
			Workers:     4,
			EdgeTimeout: Duration(10 * time.Second),
		},
		Pipeline: Pipeline{
			MaxFacilities: 500,
		},
	}
}

// Load reads the TOML file at path on top of the defaults. A missing
// path (empty string) returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must not be empty")
	}
	if c.Refine.Workers < 0 {
		return fmt.Errorf("config: refine.workers must not be negative")
	}
	if c.Pipeline.MaxFacilities < 0 {
		return fmt.Errorf("config: pipeline.max_facilities must not be negative")
	}
	return nil
}
