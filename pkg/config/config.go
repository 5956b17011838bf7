// Package config reads the YAML configuration of the bike router.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/azybler/bike_router/pkg/errs"
	"github.com/azybler/bike_router/pkg/geo"
	"github.com/azybler/bike_router/pkg/graph"
)

// Config is the root of config.yaml.
type Config struct {
	// GraphDir is the directory holding nodes.bin, edges.bin and the other
	// graph files.
	GraphDir string        `yaml:"graph_dir"`
	Bounds   BoundsConfig  `yaml:"bounds"`
	Server   ServerConfig  `yaml:"server"`
	Routing  RoutingConfig `yaml:"routing"`
	Log      LogConfig     `yaml:"log"`
}

// BoundsConfig is the area covered by the sector grid, in CH1903+ metres.
type BoundsConfig struct {
	MinE float64 `yaml:"min_e"`
	MaxE float64 `yaml:"max_e"`
	MinN float64 `yaml:"min_n"`
	MaxN float64 `yaml:"max_n"`
}

// Geo converts b to geo.Bounds.
func (b BoundsConfig) Geo() geo.Bounds {
	return geo.Bounds{MinE: b.MinE, MaxE: b.MaxE, MinN: b.MinN, MaxN: b.MaxN}
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
	CORSOrigin     string        `yaml:"cors_origin"`
	// RateLimit is the sustained number of requests per second, 0 for none.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// RoutingConfig holds the planner settings.
type RoutingConfig struct {
	SnapRadius   float64 `yaml:"snap_radius"`
	ProfileStep  float64 `yaml:"profile_step"`
	MaxWaypoints int     `yaml:"max_waypoints"`
	// Avoid lists OSM tags, as key=value, whose edges are never used.
	Avoid []string `yaml:"avoid"`
}

// AvoidSet parses Avoid.
func (c RoutingConfig) AvoidSet() (graph.AttributeSet, error) {
	var set graph.AttributeSet
	for _, s := range c.Avoid {
		a, err := graph.ParseAttribute(s)
		if err != nil {
			return 0, fmt.Errorf("routing.avoid: %w", err)
		}
		set = set.Union(graph.AttributeSetOf(a))
	}
	return set, nil
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns sensible defaults.
func Default() Config {
	b := geo.SwissBounds
	return Config{
		GraphDir: "data",
		Bounds:   BoundsConfig{MinE: b.MinE, MaxE: b.MaxE, MinN: b.MinN, MaxN: b.MaxN},
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			RequestTimeout: 5 * time.Second,
			MaxConcurrent:  runtime.NumCPU() * 2,
			RateLimit:      0,
			RateBurst:      20,
		},
		Routing: RoutingConfig{
			SnapRadius:   500,
			ProfileStep:  5,
			MaxWaypoints: 25,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read config: %w", errs.ErrIO, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: parse config: %w", errs.ErrInvalidArgument, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	var errList []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errList = append(errList, fmt.Errorf(format, args...))
		}
	}

	check(c.GraphDir != "", "graph_dir is empty")
	check(c.Bounds.MinE < c.Bounds.MaxE && c.Bounds.MinN < c.Bounds.MaxN, "bounds are empty")
	check(c.Server.Addr != "", "server.addr is empty")
	check(c.Server.MaxConcurrent > 0, "server.max_concurrent must be positive, got %d", c.Server.MaxConcurrent)
	check(c.Server.RequestTimeout > 0, "server.request_timeout must be positive")
	check(c.Server.RateLimit >= 0, "server.rate_limit must not be negative")
	check(c.Server.RateLimit == 0 || c.Server.RateBurst > 0, "server.rate_burst must be positive with a rate limit")
	check(c.Routing.SnapRadius > 0, "routing.snap_radius must be positive, got %v", c.Routing.SnapRadius)
	check(c.Routing.ProfileStep > 0, "routing.profile_step must be positive, got %v", c.Routing.ProfileStep)
	check(c.Routing.MaxWaypoints >= 2, "routing.max_waypoints must be at least 2, got %d", c.Routing.MaxWaypoints)
	var level slog.Level
	check(level.UnmarshalText([]byte(c.Log.Level)) == nil, "log.level %q is unknown", c.Log.Level)
	check(c.Log.Format == "text" || c.Log.Format == "json", "log.format must be text or json, got %q", c.Log.Format)
	if _, err := c.Routing.AvoidSet(); err != nil {
		errList = append(errList, err)
	}

	if len(errList) > 0 {
		return fmt.Errorf("%w: invalid config: %w", errs.ErrInvalidArgument, errors.Join(errList...))
	}
	return nil
}
