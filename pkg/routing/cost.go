package routing

import (
	"math"

	"github.com/azybler/bike_router/pkg/graph"
)

// CostFunction weighs edges for the route search. CostFactor multiplies the
// length of edgeID when leaving nodeID; it must be at least 1, or +Inf to
// forbid the edge.
type CostFunction interface {
	CostFactor(nodeID, edgeID int) float64
}

// CostFunc adapts a plain function to CostFunction.
type CostFunc func(nodeID, edgeID int) float64

func (f CostFunc) CostFactor(nodeID, edgeID int) float64 { return f(nodeID, edgeID) }

// UniformCost finds the shortest route by length.
var UniformCost CostFunction = CostFunc(func(int, int) float64 { return 1 })

// AvoidAttributes forbids every edge of g carrying one of the attributes in
// avoid. All other edges cost their length.
func AvoidAttributes(g *graph.Graph, avoid graph.AttributeSet) CostFunction {
	if avoid == 0 {
		return UniformCost
	}
	return CostFunc(func(_, edgeID int) float64 {
		if g.EdgeAttributes(edgeID).Intersects(avoid) {
			return math.Inf(1)
		}
		return 1
	})
}
