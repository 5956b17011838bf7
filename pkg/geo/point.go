package geo

import "math"

// PointCH is a point in the Swiss CH1903+ (LV95) planar system, in metres.
type PointCH struct {
	E float64 // east
	N float64 // north
}

// SquaredDistanceTo returns the squared Euclidean distance between p and that.
func (p PointCH) SquaredDistanceTo(that PointCH) float64 {
	de := that.E - p.E
	dn := that.N - p.N
	return de*de + dn*dn
}

// DistanceTo returns the Euclidean distance in metres between p and that.
func (p PointCH) DistanceTo(that PointCH) float64 {
	return math.Sqrt(p.SquaredDistanceTo(that))
}

// Lerp returns the point at ratio t on the line through p and that.
// t is not clamped, so values outside [0,1] extrapolate.
func (p PointCH) Lerp(that PointCH, t float64) PointCH {
	return PointCH{
		E: math.FMA(that.E-p.E, t, p.E),
		N: math.FMA(that.N-p.N, t, p.N),
	}
}

// ProjectionLength returns the signed length of the projection of p onto the
// line a→b, measured from a. It is 0 when a and b coincide.
func ProjectionLength(a, b, p PointCH) float64 {
	ue, un := b.E-a.E, b.N-a.N
	norm := math.Hypot(ue, un)
	if norm == 0 {
		return 0
	}
	return ((p.E-a.E)*ue + (p.N-a.N)*un) / norm
}

// Bounds is an axis-aligned rectangle in CH1903+ coordinates.
type Bounds struct {
	MinE, MaxE float64
	MinN, MaxN float64
}

// SwissBounds covers Switzerland with a margin.
var SwissBounds = Bounds{
	MinE: 2_485_000,
	MaxE: 2_834_000,
	MinN: 1_075_000,
	MaxN: 1_296_000,
}

// Width is the east-west extent in metres.
func (b Bounds) Width() float64 { return b.MaxE - b.MinE }

// Height is the north-south extent in metres.
func (b Bounds) Height() float64 { return b.MaxN - b.MinN }

// Contains reports whether p lies inside b, borders included.
func (b Bounds) Contains(p PointCH) bool {
	return b.MinE <= p.E && p.E <= b.MaxE && b.MinN <= p.N && p.N <= b.MaxN
}
