package route

import (
	"math"

	"github.com/azybler/bike_router/pkg/elevation"
	"github.com/azybler/bike_router/pkg/geo"
	"github.com/azybler/bike_router/pkg/graph"
)

// Edge is one traversed graph edge with its geometry and elevation.
type Edge struct {
	FromNodeID int
	ToNodeID   int
	From       geo.PointCH
	To         geo.PointCH
	Length     float64
	// Profile gives the elevation at a distance from From. Nil means unknown.
	Profile elevation.Func
}

// EdgeOf resolves graph edge edgeID leaving fromNodeID.
func EdgeOf(g *graph.Graph, edgeID, fromNodeID int) Edge {
	to := g.EdgeTargetNodeID(edgeID)
	return Edge{
		FromNodeID: fromNodeID,
		ToNodeID:   to,
		From:       g.NodePoint(fromNodeID),
		To:         g.NodePoint(to),
		Length:     g.EdgeLength(edgeID),
		Profile:    g.EdgeProfile(edgeID),
	}
}

// PointAt returns the point position metres from From on the line through
// From and To. Positions outside [0, Length] extrapolate.
func (e Edge) PointAt(position float64) geo.PointCH {
	if e.Length == 0 {
		return e.From
	}
	return e.From.Lerp(e.To, position/e.Length)
}

// ElevationAt evaluates the edge's elevation function at position.
func (e Edge) ElevationAt(position float64) float64 {
	if e.Profile == nil {
		return math.NaN()
	}
	return e.Profile(position)
}

// PositionClosestTo returns the scalar projection of p onto From→To,
// measured from From. It is not clamped.
func (e Edge) PositionClosestTo(p geo.PointCH) float64 {
	return geo.ProjectionLength(e.From, e.To, p)
}
