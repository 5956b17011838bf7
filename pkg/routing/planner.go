package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/azybler/bike_router/pkg/elevation"
	"github.com/azybler/bike_router/pkg/errs"
	"github.com/azybler/bike_router/pkg/geo"
	"github.com/azybler/bike_router/pkg/graph"
	"github.com/azybler/bike_router/pkg/route"
)

// ErrNoRoute is returned when no route exists between two waypoints.
var ErrNoRoute = errors.New("no route found")

// ErrPointTooFar is returned when a query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// Service is the interface for route and nearest-node queries.
type Service interface {
	Plan(ctx context.Context, waypoints []geo.PointCH) (*Plan, error)
	Nearest(point geo.PointCH, radius float64) (Node, error)
}

// PlannerConfig holds the planner settings.
type PlannerConfig struct {
	// SnapRadius is the maximum distance in metres between a waypoint and
	// the node it snaps to.
	SnapRadius float64
	// ProfileStep is the maximum distance in metres between two samples of
	// the elevation profile.
	ProfileStep float64
}

// DefaultPlannerConfig returns sensible defaults.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{SnapRadius: 500, ProfileStep: 5}
}

// Node is a graph node returned by a nearest-node query.
type Node struct {
	ID       int
	Point    geo.PointCH
	Distance float64
}

// Leg is the part of a plan between two consecutive distinct snapped nodes.
type Leg struct {
	FromNodeID int
	ToNodeID   int
	Start      float64 // position along the route
	Length     float64
}

// Plan is the output of a route query.
type Plan struct {
	Route   route.Route
	Profile *elevation.Profile
	// Nodes holds the node each waypoint snapped to.
	Nodes []Node
	Legs  []Leg
}

// Planner implements Service on top of a Router.
type Planner struct {
	g          *graph.Graph
	router     *Router
	components *graph.Components
	cfg        PlannerConfig
	logger     *slog.Logger
}

// NewPlanner creates a planner searching g with cost.
func NewPlanner(g *graph.Graph, cost CostFunction, cfg PlannerConfig, logger *slog.Logger) *Planner {
	start := time.Now()
	components := graph.NewComponents(g)
	logger.Info("connectivity index built",
		"components", components.Count(),
		"largest", components.LargestSize(),
		"duration", time.Since(start).Round(time.Millisecond))

	return &Planner{
		g:          g,
		router:     NewRouter(g, cost),
		components: components,
		cfg:        cfg,
		logger:     logger,
	}
}

// Nearest returns the node closest to point within radius metres.
func (p *Planner) Nearest(point geo.PointCH, radius float64) (Node, error) {
	if !(radius >= 0) {
		return Node{}, fmt.Errorf("%w: radius %v", errs.ErrInvalidArgument, radius)
	}
	id := p.g.NodeClosestTo(point, radius)
	if id < 0 {
		return Node{}, ErrPointTooFar
	}
	np := p.g.NodePoint(id)
	return Node{ID: id, Point: np, Distance: np.DistanceTo(point)}, nil
}

// Plan computes the best route through waypoints in order.
func (p *Planner) Plan(ctx context.Context, waypoints []geo.PointCH) (*Plan, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: %d waypoints, need at least 2", errs.ErrInvalidArgument, len(waypoints))
	}
	start := time.Now()

	// Step 1: Snap waypoints to nodes.
	nodes := make([]Node, len(waypoints))
	for i, w := range waypoints {
		n, err := p.Nearest(w, p.cfg.SnapRadius)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i, err)
		}
		nodes[i] = n
	}

	// Step 2: Search every leg.
	var legs []Leg
	var routes []route.Route
	for i := 1; i < len(nodes); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		from, to := nodes[i-1].ID, nodes[i].ID
		if from == to {
			continue
		}
		if !p.components.Connected(from, to) {
			return nil, fmt.Errorf("leg %d: %w", i-1, ErrNoRoute)
		}
		r, err := p.router.BestRouteBetween(from, to)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i-1, err)
		}
		if r == nil {
			return nil, fmt.Errorf("leg %d: %w", i-1, ErrNoRoute)
		}
		legs = append(legs, Leg{FromNodeID: from, ToNodeID: to, Length: r.Length()})
		routes = append(routes, r)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: all waypoints snap to node %d", errs.ErrInvalidArgument, nodes[0].ID)
	}

	// Step 3: Join the legs.
	var rt route.Route = routes[0]
	if len(routes) > 1 {
		mp, err := route.NewMultiPath(routes)
		if err != nil {
			return nil, err
		}
		for i := range legs {
			legs[i].Start = mp.SegmentStart(i)
		}
		rt = mp
	}

	// Step 4: Elevation profile.
	profile, err := elevation.Compute(rt, p.cfg.ProfileStep)
	if err != nil {
		return nil, fmt.Errorf("elevation profile: %w", err)
	}

	p.logger.Debug("route planned",
		"waypoints", len(waypoints),
		"legs", len(legs),
		"length_m", rt.Length(),
		"duration", time.Since(start))

	return &Plan{Route: rt, Profile: profile, Nodes: nodes, Legs: legs}, nil
}

var _ Service = (*Planner)(nil)
