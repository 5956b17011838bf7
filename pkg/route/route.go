// Package route models the result of a route search: a sequence of edges,
// possibly made of several legs, addressed by the distance along it.
//
// Routes are immutable. Slices returned by their methods are copies.
package route

import (
	"fmt"
	"slices"
	"sort"

	"github.com/azybler/bike_router/pkg/errs"
	"github.com/azybler/bike_router/pkg/geo"
)

// Route is either a *SinglePath or a *MultiPath.
//
// Positions are distances along the route in metres. Methods taking a
// position clamp it to [0, Length()]. A position on the boundary between two
// edges or segments belongs to the later one, except at the very end of the
// route where it belongs to the last one.
type Route interface {
	// Length returns the total length in metres.
	Length() float64
	// Edges returns the traversed edges in order.
	Edges() []Edge
	// Points returns the edge endpoints in order, shared vertices once.
	Points() []geo.PointCH
	// PointAt returns the point at position.
	PointAt(position float64) geo.PointCH
	// ElevationAt returns the elevation at position, NaN if unknown.
	ElevationAt(position float64) float64
	// NodeClosestTo returns the graph node of the edge at position nearest
	// along the edge. At exactly half the edge length the from node wins.
	NodeClosestTo(position float64) int
	// PointClosestTo returns the point of the route nearest to p.
	PointClosestTo(p geo.PointCH) RoutePoint
	// SegmentCount returns the number of single paths the route is made of.
	SegmentCount() int
	// IndexOfSegmentAt returns the index of the single path at position.
	IndexOfSegmentAt(position float64) int

	leaves() []*SinglePath
}

// locate returns the index i of the interval [starts[i], starts[i+1]) holding
// position, and the offset of position within it. starts holds n+1
// cumulative lengths for n >= 1 intervals.
func locate(starts []float64, position float64) (int, float64) {
	n := len(starts) - 1
	position = clamp(position, 0, starts[n])
	i := sort.Search(n, func(i int) bool { return starts[i+1] > position })
	if i == n {
		i = n - 1
	}
	return i, position - starts[i]
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SinglePath is a route along a contiguous edge sequence.
type SinglePath struct {
	edges  []Edge
	starts []float64
}

// NewSinglePath returns the route along edges. edges must not be empty and
// each edge must start where the previous one ends.
func NewSinglePath(edges []Edge) (*SinglePath, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("%w: route without edges", errs.ErrInvalidArgument)
	}
	starts := make([]float64, len(edges)+1)
	for i, e := range edges {
		if i > 0 && edges[i-1].ToNodeID != e.FromNodeID {
			return nil, fmt.Errorf("%w: edge %d starts at node %d, previous edge ends at node %d",
				errs.ErrInvalidArgument, i, e.FromNodeID, edges[i-1].ToNodeID)
		}
		starts[i+1] = starts[i] + e.Length
	}
	return &SinglePath{edges: slices.Clone(edges), starts: starts}, nil
}

func (r *SinglePath) Length() float64 { return r.starts[len(r.edges)] }

func (r *SinglePath) Edges() []Edge { return slices.Clone(r.edges) }

func (r *SinglePath) Points() []geo.PointCH {
	points := make([]geo.PointCH, 0, len(r.edges)+1)
	points = append(points, r.edges[0].From)
	for _, e := range r.edges {
		points = append(points, e.To)
	}
	return points
}

func (r *SinglePath) edgeAt(position float64) (Edge, float64) {
	i, offset := locate(r.starts, position)
	return r.edges[i], offset
}

func (r *SinglePath) PointAt(position float64) geo.PointCH {
	e, offset := r.edgeAt(position)
	return e.PointAt(offset)
}

func (r *SinglePath) ElevationAt(position float64) float64 {
	e, offset := r.edgeAt(position)
	return e.ElevationAt(offset)
}

func (r *SinglePath) NodeClosestTo(position float64) int {
	e, offset := r.edgeAt(position)
	if offset <= e.Length/2 {
		return e.FromNodeID
	}
	return e.ToNodeID
}

func (r *SinglePath) PointClosestTo(p geo.PointCH) RoutePoint {
	best := NoPoint
	for i, e := range r.edges {
		offset := clamp(e.PositionClosestTo(p), 0, e.Length)
		q := e.PointAt(offset)
		best = best.Min(RoutePoint{
			Point:               q,
			Position:            r.starts[i] + offset,
			DistanceToReference: q.DistanceTo(p),
		})
	}
	return best
}

func (r *SinglePath) SegmentCount() int { return 1 }

func (r *SinglePath) IndexOfSegmentAt(float64) int { return 0 }

func (r *SinglePath) leaves() []*SinglePath { return []*SinglePath{r} }

// MultiPath is a route made of consecutive routes, typically one per leg
// between waypoints. Nested multi paths are flattened on construction, so
// every lookup is a single binary search over the single paths.
type MultiPath struct {
	segments []*SinglePath
	starts   []float64
}

// NewMultiPath joins routes end to end. routes must not be empty.
func NewMultiPath(routes []Route) (*MultiPath, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: multi path without routes", errs.ErrInvalidArgument)
	}
	var segments []*SinglePath
	for i, r := range routes {
		if r == nil {
			return nil, fmt.Errorf("%w: route %d is nil", errs.ErrInvalidArgument, i)
		}
		segments = append(segments, r.leaves()...)
	}
	starts := make([]float64, len(segments)+1)
	for i, s := range segments {
		starts[i+1] = starts[i] + s.Length()
	}
	return &MultiPath{segments: segments, starts: starts}, nil
}


// SegmentStart returns the position at which segment i starts.
func (r *MultiPath) SegmentStart(i int) float64 { return r.starts[i] }

func (r *MultiPath) Length() float64 { return r.starts[len(r.segments)] }

func (r *MultiPath) Edges() []Edge {
	var edges []Edge
	for _, s := range r.segments {
		edges = append(edges, s.edges...)
	}
	return edges
}

func (r *MultiPath) Points() []geo.PointCH {
	var points []geo.PointCH
	for i, s := range r.segments {
		p := s.Points()
		if i > 0 {
			p = p[1:]
		}
		points = append(points, p...)
	}
	return points
}

func (r *MultiPath) segmentAt(position float64) (*SinglePath, float64) {
	i, offset := locate(r.starts, position)
	return r.segments[i], offset
}

func (r *MultiPath) PointAt(position float64) geo.PointCH {
	s, offset := r.segmentAt(position)
	return s.PointAt(offset)
}

func (r *MultiPath) ElevationAt(position float64) float64 {
	s, offset := r.segmentAt(position)
	return s.ElevationAt(offset)
}

func (r *MultiPath) NodeClosestTo(position float64) int {
	s, offset := r.segmentAt(position)
	return s.NodeClosestTo(offset)
}

func (r *MultiPath) PointClosestTo(p geo.PointCH) RoutePoint {
	best := NoPoint
	for i, s := range r.segments {
		best = best.Min(s.PointClosestTo(p).WithPositionShiftedBy(r.starts[i]))
	}
	return best
}

func (r *MultiPath) SegmentCount() int { return len(r.segments) }

func (r *MultiPath) IndexOfSegmentAt(position float64) int {
	i, _ := locate(r.starts, position)
	return i
}

func (r *MultiPath) leaves() []*SinglePath { return r.segments }

var (
	_ Route = (*SinglePath)(nil)
	_ Route = (*MultiPath)(nil)
)
