package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/azybler/bike_router/pkg/geo"
	"github.com/azybler/bike_router/pkg/routing"
)

func newRouteCmd(a *app) *cobra.Command {
	var from, to string
	var via []string
	cmd := &cobra.Command{
		Use:   "route --from lat,lng --to lat,lng [--via lat,lng]...",
		Short: "Compute a route and print it as GeoJSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var waypoints []geo.PointCH
			for _, s := range append(append([]string{from}, via...), to) {
				p, err := parseLatLng(s)
				if err != nil {
					return err
				}
				waypoints = append(waypoints, p)
			}

			g, planner, err := a.loadPlanner()
			if err != nil {
				return err
			}
			defer closeGraph(g, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			plan, err := planner.Plan(ctx, waypoints)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(planCollection(plan))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start as lat,lng")
	cmd.Flags().StringVar(&to, "to", "", "Destination as lat,lng")
	cmd.Flags().StringArrayVar(&via, "via", nil, "Intermediate waypoint as lat,lng (repeatable)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

// planCollection returns the route line and one point per snapped waypoint.
func planCollection(plan *routing.Plan) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := geojson.NewFeature(geo.LineString(plan.Route.Points()))
	line.Properties["distance_meters"] = plan.Route.Length()
	line.Properties["ascent_meters"] = plan.Profile.TotalAscent()
	line.Properties["descent_meters"] = plan.Profile.TotalDescent()
	line.Properties["elevation"] = plan.Profile.Samples()
	fc.Append(line)

	for i, n := range plan.Nodes {
		f := geojson.NewFeature(n.Point.ToOrb())
		f.Properties["waypoint"] = i
		f.Properties["node_id"] = n.ID
		f.Properties["snap_distance_meters"] = n.Distance
		fc.Append(f)
	}
	return fc
}

