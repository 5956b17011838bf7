package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/azybler/bike_router/pkg/api"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, corsOrigin string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP routing API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if corsOrigin != "" {
				a.cfg.Server.CORSOrigin = corsOrigin
			}
			return a.serve()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVar(&corsOrigin, "cors-origin", "", "CORS allowed origin (empty = same-origin)")
	return cmd
}

func (a *app) serve() error {
	g, planner, err := a.loadPlanner()
	if err != nil {
		return err
	}
	defer closeGraph(g, a.logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics(reg)

	sc := a.cfg.Server
	cfg := api.ServerConfig{
		Addr:           sc.Addr,
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		RequestTimeout: sc.RequestTimeout,
		MaxConcurrent:  sc.MaxConcurrent,
		CORSOrigin:     sc.CORSOrigin,
		RateLimit:      sc.RateLimit,
		RateBurst:      sc.RateBurst,
	}
	stats := api.StatsResponse{
		NumNodes:         g.NodeCount(),
		NumEdges:         g.EdgeCount(),
		NumAttributeSets: g.AttributeSetCount(),
	}
	handlers := api.NewHandlers(planner, stats, api.HandlerOptions{
		MaxWaypoints: a.cfg.Routing.MaxWaypoints,
		SnapRadius:   a.cfg.Routing.SnapRadius,
		Metrics:      metrics,
	})

	return api.ListenAndServe(api.NewServer(cfg, handlers, metrics, a.logger), a.logger)
}
