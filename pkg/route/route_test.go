package route

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/bike_router/pkg/elevation"
	"github.com/azybler/bike_router/pkg/errs"
	"github.com/azybler/bike_router/pkg/geo"
	"github.com/azybler/bike_router/pkg/graph"
)

func pt(e, n float64) geo.PointCH { return geo.PointCH{E: e, N: n} }

func assertPoint(t *testing.T, want, got geo.PointCH, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.E, got.E, 1e-9, msgAndArgs...)
	assert.InDelta(t, want.N, got.N, 1e-9, msgAndArgs...)
}

// Node 1 (0,0) → 2 (10,0) → 3 (10,20) → 4 (0,20).
var (
	east = Edge{
		FromNodeID: 1, ToNodeID: 2,
		From: pt(0, 0), To: pt(10, 0),
		Length:  10,
		Profile: elevation.Sampled([]float32{100, 110}, 10),
	}
	north = Edge{
		FromNodeID: 2, ToNodeID: 3,
		From: pt(10, 0), To: pt(10, 20),
		Length: 20,
	}
	west = Edge{
		FromNodeID: 3, ToNodeID: 4,
		From: pt(10, 20), To: pt(0, 20),
		Length:  10,
		Profile: elevation.Constant(50),
	}
)

func singlePath(t *testing.T, edges ...Edge) *SinglePath {
	t.Helper()
	r, err := NewSinglePath(edges)
	require.NoError(t, err)
	return r
}

func multiPath(t *testing.T, routes ...Route) *MultiPath {
	t.Helper()
	r, err := NewMultiPath(routes)
	require.NoError(t, err)
	return r
}

func TestEdge(t *testing.T) {
	assert.Equal(t, pt(5, 0), east.PointAt(5))
	assert.Equal(t, pt(-5, 0), east.PointAt(-5))
	assert.Equal(t, pt(15, 0), east.PointAt(15))
	assert.Equal(t, 105.0, east.ElevationAt(5))
	assert.True(t, math.IsNaN(north.ElevationAt(5)))
	assert.True(t, math.IsNaN(east.ElevationAt(math.NaN())))
	assert.Equal(t, -3.0, east.PositionClosestTo(pt(-3, 7)))
	assert.Equal(t, 12.0, east.PositionClosestTo(pt(12, -1)))
}

func TestEdgeOf(t *testing.T) {
	b := graph.NewBuilder(geo.SwissBounds)
	from := b.AddNode(pt(2_600_000, 1_200_000))
	to := b.AddNode(pt(2_600_006, 1_200_008))
	b.AddEdge(from, to, graph.EdgeSpec{Profile: []float32{400, 401, 402, 403, 404, 405}})
	built, err := b.Build()
	require.NoError(t, err)
	g, err := graph.New(built.Buffers, geo.SwissBounds)
	require.NoError(t, err)

	e := EdgeOf(g, built.EdgeIDs[0], built.NodeIDs[from])
	assert.Equal(t, built.NodeIDs[from], e.FromNodeID)
	assert.Equal(t, built.NodeIDs[to], e.ToNodeID)
	assert.Equal(t, pt(2_600_006, 1_200_008), e.To)
	assert.Equal(t, 10.0, e.Length)
	assert.InDelta(t, 402.5, e.ElevationAt(5), 1e-9)
	assert.Equal(t, pt(2_600_003, 1_200_004), e.PointAt(5))
}

func TestNewSinglePathRejectsInvalidEdges(t *testing.T) {
	_, err := NewSinglePath(nil)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	_, err = NewSinglePath([]Edge{east, west})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}

func TestSinglePath(t *testing.T) {
	r := singlePath(t, east, north)

	assert.Equal(t, 30.0, r.Length())
	assert.Equal(t, []geo.PointCH{pt(0, 0), pt(10, 0), pt(10, 20)}, r.Points())
	assert.Equal(t, 1, r.SegmentCount())
	assert.Equal(t, 0, r.IndexOfSegmentAt(25))

	tests := []struct {
		position float64
		point    geo.PointCH
		node     int
	}{
		{-5, pt(0, 0), 1},
		{0, pt(0, 0), 1},
		{5, pt(5, 0), 1},
		{6, pt(6, 0), 2},
		{10, pt(10, 0), 2},
		{20, pt(10, 10), 2},
		{25, pt(10, 15), 3},
		{30, pt(10, 20), 3},
		{45, pt(10, 20), 3},
	}
	for _, tt := range tests {
		assertPoint(t, tt.point, r.PointAt(tt.position), "PointAt(%v)", tt.position)
		assert.Equal(t, tt.node, r.NodeClosestTo(tt.position), "NodeClosestTo(%v)", tt.position)
	}
}

func TestSinglePathElevationAt(t *testing.T) {
	r := singlePath(t, east, north)

	assert.Equal(t, 100.0, r.ElevationAt(-1))
	assert.Equal(t, 105.0, r.ElevationAt(5))
	assert.InDelta(t, 109.9, r.ElevationAt(9.9), 1e-9)
	// The boundary belongs to the edge without elevation data.
	assert.True(t, math.IsNaN(r.ElevationAt(10)))
	assert.True(t, math.IsNaN(r.ElevationAt(30)))
}

func TestSinglePathPointClosestTo(t *testing.T) {
	r := singlePath(t, east, north)

	got := r.PointClosestTo(pt(12, 5))
	assert.Equal(t, RoutePoint{Point: pt(10, 5), Position: 15, DistanceToReference: 2}, got)

	got = r.PointClosestTo(pt(-3, -4))
	assert.Equal(t, RoutePoint{Point: pt(0, 0), Position: 0, DistanceToReference: 5}, got)

	// Equidistant from both edges: the first one found wins.
	got = r.PointClosestTo(pt(11, -1))
	assert.Equal(t, RoutePoint{Point: pt(10, 0), Position: 10, DistanceToReference: math.Sqrt2}, got)
}

func TestSinglePathEdgesIsCopy(t *testing.T) {
	r := singlePath(t, east, north)
	edges := r.Edges()
	edges[0].Length = 99
	assert.Equal(t, 30.0, r.Length())
	assert.Equal(t, 10.0, r.Edges()[0].Length)
}

func TestMultiPath(t *testing.T) {
	m := multiPath(t, singlePath(t, east, north), singlePath(t, west))

	assert.Equal(t, 40.0, m.Length())
	assert.Equal(t, []geo.PointCH{pt(0, 0), pt(10, 0), pt(10, 20), pt(0, 20)}, m.Points())
	assert.Len(t, m.Edges(), 3)
	assert.Equal(t, 3, m.Edges()[2].FromNodeID)
	assert.Equal(t, 2, m.SegmentCount())
	assert.Equal(t, 30.0, m.SegmentStart(1))

	assert.Equal(t, 0, m.IndexOfSegmentAt(-3))
	assert.Equal(t, 0, m.IndexOfSegmentAt(29.9))
	assert.Equal(t, 1, m.IndexOfSegmentAt(30))
	assert.Equal(t, 1, m.IndexOfSegmentAt(40))
	assert.Equal(t, 1, m.IndexOfSegmentAt(100))

	assert.Equal(t, pt(5, 20), m.PointAt(35))
	assert.Equal(t, pt(5, 0), m.PointAt(5))
	assert.Equal(t, 50.0, m.ElevationAt(35))
	assert.Equal(t, 105.0, m.ElevationAt(5))
	assert.Equal(t, 3, m.NodeClosestTo(30))
	assert.Equal(t, 4, m.NodeClosestTo(36))

	got := m.PointClosestTo(pt(2, 21))
	assertPoint(t, pt(2, 20), got.Point)
	assert.InDelta(t, 38, got.Position, 1e-9)
	assert.InDelta(t, 1, got.DistanceToReference, 1e-9)
}

func TestMultiPathFlattensNestedRoutes(t *testing.T) {
	inner := multiPath(t, singlePath(t, east), singlePath(t, north))
	outer := multiPath(t, inner, singlePath(t, west))

	assert.Equal(t, 3, outer.SegmentCount())
	assert.Equal(t, 40.0, outer.Length())
	assert.Equal(t, 0, outer.IndexOfSegmentAt(9))
	assert.Equal(t, 1, outer.IndexOfSegmentAt(10))
	assert.Equal(t, 2, outer.IndexOfSegmentAt(31))
	assert.Equal(t, []geo.PointCH{pt(0, 0), pt(10, 0), pt(10, 20), pt(0, 20)}, outer.Points())
	assert.Equal(t, pt(10, 5), outer.PointAt(15))
}

func TestNewMultiPathRejectsEmpty(t *testing.T) {
	_, err := NewMultiPath(nil)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	_, err = NewMultiPath([]Route{nil})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}

func TestRoutePoint(t *testing.T) {
	assert.True(t, NoPoint.IsNoPoint())
	assert.True(t, math.IsNaN(NoPoint.Position))

	a := RoutePoint{Point: pt(1, 1), Position: 3, DistanceToReference: 2}
	b := RoutePoint{Point: pt(2, 2), Position: 7, DistanceToReference: 2}
	c := RoutePoint{Point: pt(3, 3), Position: 9, DistanceToReference: 1}

	assert.Equal(t, a, a.Min(b))
	assert.Equal(t, b, b.Min(a))
	assert.Equal(t, c, a.Min(c))
	assert.Equal(t, a, NoPoint.Min(a))
	assert.Equal(t, a, a.Min(NoPoint))
	assert.False(t, a.IsNoPoint())

	shifted := a.WithPositionShiftedBy(10)
	assert.Equal(t, 13.0, shifted.Position)
	assert.Equal(t, a.Point, shifted.Point)
	assert.Equal(t, a.DistanceToReference, shifted.DistanceToReference)
}

func TestElevationProfileOfRoute(t *testing.T) {
	flat := Edge{FromNodeID: 1, ToNodeID: 2, From: pt(0, 0), To: pt(10, 0), Length: 10}
	p, err := elevation.Compute(singlePath(t, flat), 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0, 0}, p.Samples())
	assert.Equal(t, 10.0, p.Length())

	// 100 105 ? ? ? ? 50 50 50
	m := multiPath(t, singlePath(t, east, north), singlePath(t, west))
	p, err = elevation.Compute(m, 5)
	require.NoError(t, err)
	want := []float32{100, 105, 94, 83, 72, 61, 50, 50, 50}
	got := p.Samples()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "sample %d", i)
	}
	assert.InDelta(t, 5, p.TotalAscent(), 1e-4)
	assert.InDelta(t, 55, p.TotalDescent(), 1e-4)
}
