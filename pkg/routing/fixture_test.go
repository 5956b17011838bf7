package routing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azybler/bike_router/pkg/geo"
	"github.com/azybler/bike_router/pkg/graph"
)

var origin = geo.PointCH{E: 2_600_000, N: 1_200_000}

func at(de, dn float64) geo.PointCH {
	return geo.PointCH{E: origin.E + de, N: origin.N + dn}
}

// testGraph is the network used by the routing tests, with node ids
// resolved from builder handles.
type testGraph struct {
	g     *graph.Graph
	nodes []int // handle → node id
}

func (tg testGraph) id(handle int) int { return tg.nodes[handle] }

// buildTestGraph creates a small network. Lengths in metres.
//
//	0 ---100--- 1 ---250--- 2 --200--> 6      7 (isolated)
//	|                       |
//	300 (steps)            300
//	|                       |
//	3 ---250--- 4 ---50---- 5
//
// All edges bidirectional except 2→6. 4-5 climbs 25 m towards 5.
func buildTestGraph(t *testing.T) testGraph {
	t.Helper()
	b := graph.NewBuilder(geo.SwissBounds)
	points := []geo.PointCH{
		at(0, 0), at(100, 0), at(300, 0),
		at(0, -300), at(250, -300), at(300, -300),
		at(500, 0), at(5_000, 5_000),
	}
	for _, p := range points {
		b.AddNode(p)
	}

	both := func(u, v int, spec graph.EdgeSpec) {
		b.AddEdge(u, v, spec)
		b.AddEdge(v, u, spec)
	}
	road := graph.AttributeSetOf(graph.HighwayResidential, graph.SurfaceAsphalt)
	both(0, 1, graph.EdgeSpec{Attributes: road})
	both(1, 2, graph.EdgeSpec{Length: 250, Attributes: road})
	both(2, 5, graph.EdgeSpec{Attributes: road})
	both(0, 3, graph.EdgeSpec{Attributes: graph.AttributeSetOf(graph.HighwaySteps)})
	both(3, 4, graph.EdgeSpec{Attributes: road})

	up := make([]float32, 26)
	down := make([]float32, 26)
	for i := range up {
		up[i] = 400 + float32(i)
		down[len(down)-1-i] = up[i]
	}
	b.AddEdge(4, 5, graph.EdgeSpec{Attributes: road, Profile: up})
	b.AddEdge(5, 4, graph.EdgeSpec{Attributes: road, Profile: down})
	b.AddEdge(2, 6, graph.EdgeSpec{Attributes: graph.AttributeSetOf(graph.HighwayCycleway, graph.OnewayYes)})

	built, err := b.Build()
	require.NoError(t, err)
	g, err := graph.New(built.Buffers, geo.SwissBounds)
	require.NoError(t, err)
	return testGraph{g: g, nodes: built.NodeIDs}
}

// plainDijkstra runs an O(n²) Dijkstra over g and returns the distance
// from source to every node.
func plainDijkstra(g *graph.Graph, source int) []float64 {
	n := g.NodeCount()
	dist := make([]float64, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0

	for {
		u := -1
		for v := 0; v < n; v++ {
			if !done[v] && !math.IsInf(dist[v], 1) && (u < 0 || dist[v] < dist[u]) {
				u = v
			}
		}
		if u < 0 {
			return dist
		}
		done[u] = true
		for i := 0; i < g.NodeOutDegree(u); i++ {
			e := g.NodeOutEdgeID(u, i)
			v := g.EdgeTargetNodeID(e)
			if d := dist[u] + g.EdgeLength(e); d < dist[v] {
				dist[v] = d
			}
		}
	}
}
