package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/azybler/bike_router/pkg/config"
	"github.com/azybler/bike_router/pkg/geo"
	"github.com/azybler/bike_router/pkg/graph"
	"github.com/azybler/bike_router/pkg/logging"
	"github.com/azybler/bike_router/pkg/routing"
)

// app holds the state shared by all subcommands.
type app struct {
	configPath string
	graphDir   string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "bikeroute",
		Short:         "Bicycle routing over a preprocessed Swiss road network",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to config.yaml (defaults are used when empty)")
	pf.StringVar(&a.graphDir, "graph", "", "Directory holding the graph files (overrides graph_dir)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(newServeCmd(a), newRouteCmd(a), newNearestCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}

	// Flags override the file.
	if a.graphDir != "" {
		cfg.GraphDir = a.graphDir
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// loadPlanner loads the graph and builds the planner configured by a.cfg.
// The caller must close the graph.
func (a *app) loadPlanner() (*graph.Graph, *routing.Planner, error) {
	start := time.Now()
	a.logger.Info("loading graph", "dir", a.cfg.GraphDir)
	g, err := graph.Load(a.cfg.GraphDir, a.cfg.Bounds.Geo())
	if err != nil {
		return nil, nil, fmt.Errorf("load graph: %w", err)
	}
	a.logger.Info("graph loaded",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"attribute_sets", g.AttributeSetCount(),
		"duration", time.Since(start).Round(time.Millisecond))

	avoid, err := a.cfg.Routing.AvoidSet()
	if err != nil {
		g.Close()
		return nil, nil, err
	}
	planner := routing.NewPlanner(g, routing.AvoidAttributes(g, avoid), routing.PlannerConfig{
		SnapRadius:  a.cfg.Routing.SnapRadius,
		ProfileStep: a.cfg.Routing.ProfileStep,
	}, a.logger)
	return g, planner, nil
}

// parseLatLng parses "lat,lng" in WGS84 degrees into a CH1903+ point.
func parseLatLng(s string) (geo.PointCH, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return geo.PointCH{}, fmt.Errorf("invalid coordinate %q: want lat,lng", s)
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err1 != nil || err2 != nil || !geo.ValidWGS84(lng, lat) {
		return geo.PointCH{}, fmt.Errorf("invalid coordinate %q: want lat,lng", s)
	}
	return geo.FromWGS84(lng, lat), nil
}

func closeGraph(g *graph.Graph, logger *slog.Logger) {
	if err := g.Close(); err != nil {
		logger.Warn("closing graph", "error", err)
	}
}
