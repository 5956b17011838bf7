package route

import (
	"math"

	"github.com/azybler/bike_router/pkg/geo"
)

// RoutePoint relates a point on a route to a reference point.
type RoutePoint struct {
	Point geo.PointCH
	// Position is the distance along the route in metres.
	Position float64
	// DistanceToReference is the distance from Point to the reference point.
	DistanceToReference float64
}

// NoPoint is the RoutePoint that loses against every other.
var NoPoint = RoutePoint{Position: math.NaN(), DistanceToReference: math.Inf(1)}

// IsNoPoint reports whether p carries no point.
func (p RoutePoint) IsNoPoint() bool {
	return math.IsInf(p.DistanceToReference, 1)
}

// WithPositionShiftedBy returns p moved d metres further along the route.
func (p RoutePoint) WithPositionShiftedBy(d float64) RoutePoint {
	p.Position += d
	return p
}

// Min returns whichever of p and that is closer to the reference, p on a tie.
func (p RoutePoint) Min(that RoutePoint) RoutePoint {
	if that.DistanceToReference < p.DistanceToReference {
		return that
	}
	return p
}
