// Package routing searches the road network for the best route between
// nodes and plans routes through a list of waypoints.
package routing

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/azybler/bike_router/pkg/errs"
	"github.com/azybler/bike_router/pkg/graph"
	"github.com/azybler/bike_router/pkg/route"
)

const noEdge = -1

// QueryState holds per-query state for Dijkstra.
type QueryState struct {
	Dist     []float64
	PredNode []int32 // node the best known edge leaves from
	PredEdge []int32 // best known edge into the node (noEdge = none)
	Settled  []bool
	Touched  []int32 // nodes touched during this query (for fast reset)
	PQ       MinHeap
}

// NewQueryState creates a new QueryState for a graph with n nodes.
func NewQueryState(n int) *QueryState {
	dist := make([]float64, n)
	predEdge := make([]int32, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		predEdge[i] = noEdge
	}
	return &QueryState{
		Dist:     dist,
		PredNode: make([]int32, n),
		PredEdge: predEdge,
		Settled:  make([]bool, n),
		Touched:  make([]int32, 0, 1024),
		PQ:       MinHeap{items: make([]PQItem, 0, 256)},
	}
}

// Reset clears only the touched entries for fast reuse.
func (qs *QueryState) Reset() {
	for _, node := range qs.Touched {
		qs.Dist[node] = math.Inf(1)
		qs.PredEdge[node] = noEdge
		qs.Settled[node] = false
	}
	qs.Touched = qs.Touched[:0]
	qs.PQ.Reset()
}

func (qs *QueryState) touch(node int, dist float64, from, edge int) {
	if math.IsInf(qs.Dist[node], 1) {
		qs.Touched = append(qs.Touched, int32(node))
	}
	qs.Dist[node] = dist
	qs.PredNode[node] = int32(from)
	qs.PredEdge[node] = int32(edge)
}

// Router runs Dijkstra searches over a graph. It is safe for concurrent
// use; every search owns its QueryState, recycled through a pool.
type Router struct {
	g      *graph.Graph
	cost   CostFunction
	states sync.Pool
}

// NewRouter returns a router weighing edges with cost.
func NewRouter(g *graph.Graph, cost CostFunction) *Router {
	r := &Router{g: g, cost: cost}
	r.states.New = func() any { return NewQueryState(g.NodeCount()) }
	return r
}

// BestRouteBetween returns the cheapest route from start to end, or nil if
// end cannot be reached. start and end must be distinct nodes.
func (r *Router) BestRouteBetween(start, end int) (route.Route, error) {
	n := r.g.NodeCount()
	if start < 0 || start >= n || end < 0 || end >= n {
		return nil, fmt.Errorf("%w: nodes %d and %d outside [0,%d)", errs.ErrInvalidArgument, start, end, n)
	}
	if start == end {
		return nil, fmt.Errorf("%w: route from node %d to itself", errs.ErrInvalidArgument, start)
	}

	qs := r.states.Get().(*QueryState)
	defer func() {
		qs.Reset()
		r.states.Put(qs)
	}()

	if !r.search(qs, start, end) {
		return nil, nil
	}
	return r.buildRoute(qs, start, end)
}

// search settles nodes in order of distance from start until end is
// settled. It reports whether end was reached.
func (r *Router) search(qs *QueryState, start, end int) bool {
	g := r.g
	qs.touch(start, 0, start, noEdge)
	qs.PQ.Push(start, 0)

	for qs.PQ.Len() > 0 {
		item := qs.PQ.Pop()
		u := item.Node
		if qs.Settled[u] {
			continue // stale entry
		}
		qs.Settled[u] = true
		if u == end {
			return true
		}

		for i := 0; i < g.NodeOutDegree(u); i++ {
			e := g.NodeOutEdgeID(u, i)
			v := g.EdgeTargetNodeID(e)
			if qs.Settled[v] {
				continue
			}
			w := g.EdgeLength(e) * r.cost.CostFactor(u, e)
			if math.IsInf(w, 1) || math.IsNaN(w) {
				continue
			}
			if d := item.Dist + w; d < qs.Dist[v] {
				qs.touch(v, d, u, e)
				qs.PQ.Push(v, d)
			}
		}
	}
	return false
}

// buildRoute walks the predecessor edges back from end.
func (r *Router) buildRoute(qs *QueryState, start, end int) (route.Route, error) {
	var edges []route.Edge
	for v := end; v != start; v = int(qs.PredNode[v]) {
		edges = append(edges, route.EdgeOf(r.g, int(qs.PredEdge[v]), int(qs.PredNode[v])))
	}
	slices.Reverse(edges)
	path, err := route.NewSinglePath(edges)
	if err != nil {
		return nil, err
	}
	return path, nil
}
