package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/bike_router/pkg/geo"
	"github.com/azybler/bike_router/pkg/graph"
)

// writeTestGraph writes a three-node path 0 → 1 → 2, 300 m per edge, and
// returns the WGS84 positions of its nodes as "lat,lng".
func writeTestGraph(t *testing.T) (string, []string) {
	t.Helper()
	b := graph.NewBuilder(geo.SwissBounds)
	points := []geo.PointCH{
		{E: 2_600_000, N: 1_200_000},
		{E: 2_600_300, N: 1_200_000},
		{E: 2_600_300, N: 1_200_300},
	}
	for _, p := range points {
		b.AddNode(p)
	}
	for i := 0; i < 2; i++ {
		b.AddEdge(i, i+1, graph.EdgeSpec{Attributes: graph.AttributeSetOf(graph.HighwayCycleway)})
		b.AddEdge(i+1, i, graph.EdgeSpec{Attributes: graph.AttributeSetOf(graph.HighwayCycleway)})
	}
	built, err := b.Build()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, built.WriteDir(dir))

	coords := make([]string, len(points))
	for i, p := range points {
		lon, lat := p.ToWGS84()
		coords[i] = fmt.Sprintf("%.7f,%.7f", lat, lon)
	}
	return dir, coords
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRouteCommand(t *testing.T) {
	dir, coords := writeTestGraph(t)

	out, err := run(t, "route", "--graph", dir, "--log-level", "warn", "--from", coords[0], "--to", coords[2])
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	line, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, line, 3)
	assert.InDelta(t, 600, fc.Features[0].Properties["distance_meters"], 1e-9)
	assert.Equal(t, 2.0, fc.Features[2].Properties["waypoint"])
}

func TestRouteCommandVia(t *testing.T) {
	dir, coords := writeTestGraph(t)

	out, err := run(t, "route", "--graph", dir, "--from", coords[0], "--via", coords[2], "--to", coords[1])
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	require.NoError(t, err)
	assert.InDelta(t, 900, fc.Features[0].Properties["distance_meters"], 1e-9)
	assert.Len(t, fc.Features, 4)
}

func TestNearestCommand(t *testing.T) {
	dir, coords := writeTestGraph(t)

	out, err := run(t, "nearest", "--graph", dir, coords[1])
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.InDelta(t, 2_600_300, resp["e"], 1e-9)
	assert.InDelta(t, 1_200_000, resp["n"], 1e-9)
	assert.Equal(t, 2.0, resp["out_degree"])
	assert.Less(t, resp["distance_meters"], 5.0)
}

func TestCommandErrors(t *testing.T) {
	dir, coords := writeTestGraph(t)

	tests := [][]string{
		{"route", "--graph", dir, "--from", coords[0]},
		{"route", "--graph", dir, "--from", "46.9", "--to", coords[1]},
		{"nearest", "--graph", dir},
		{"nearest", "--graph", t.TempDir(), coords[0]},
		{"nearest", "--graph", dir, "--log-format", "xml", coords[0]},
		{"nearest", "--config", "missing.yaml", coords[0]},
	}
	for _, args := range tests {
		_, err := run(t, args...)
		assert.Error(t, err, "%v", args)
	}
}
