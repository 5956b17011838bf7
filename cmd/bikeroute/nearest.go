package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newNearestCmd(a *app) *cobra.Command {
	var radius float64
	cmd := &cobra.Command{
		Use:   "nearest lat,lng",
		Short: "Print the graph node closest to a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseLatLng(args[0])
			if err != nil {
				return err
			}
			if radius <= 0 {
				radius = a.cfg.Routing.SnapRadius
			}

			g, planner, err := a.loadPlanner()
			if err != nil {
				return err
			}
			defer closeGraph(g, a.logger)

			n, err := planner.Nearest(p, radius)
			if err != nil {
				return err
			}
			lon, lat := n.Point.ToWGS84()
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"node_id":         n.ID,
				"lat":             lat,
				"lng":             lon,
				"e":               n.Point.E,
				"n":               n.Point.N,
				"distance_meters": n.Distance,
				"out_degree":      g.NodeOutDegree(n.ID),
			})
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 0, "Search radius in metres (defaults to routing.snap_radius)")
	return cmd
}
