// Package graph decodes the binary road network files and answers node,
// edge and nearest-node queries over them.
//
// A Graph is immutable once built and safe for concurrent use.
package graph

import (
	"errors"
	"math"

	"github.com/azybler/bike_router/pkg/elevation"
	"github.com/azybler/bike_router/pkg/geo"
)

// Graph is the road network: nodes, spatial index, edges and attribute sets.
type Graph struct {
	nodes         Nodes
	sectors       Sectors
	edges         Edges
	attributeSets []AttributeSet
	bounds        geo.Bounds

	mapped []*mappedFile
}

// Close releases the memory mappings of a graph returned by Load.
// It is a no-op for graphs built with New.
func (g *Graph) Close() error {
	var errList []error
	for _, m := range g.mapped {
		errList = append(errList, m.Close())
	}
	g.mapped = nil
	return errors.Join(errList...)
}

// Bounds returns the area covered by the spatial index.
func (g *Graph) Bounds() geo.Bounds { return g.bounds }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return g.nodes.Count() }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges.Count() }

// NodePoint returns the position of the node.
func (g *Graph) NodePoint(nodeID int) geo.PointCH { return g.nodes.Point(nodeID) }

// NodeOutDegree returns the number of edges leaving the node.
func (g *Graph) NodeOutDegree(nodeID int) int { return g.nodes.OutDegree(nodeID) }

// NodeOutEdgeID returns the id of the i-th edge leaving the node.
// It panics unless 0 <= i < NodeOutDegree(nodeID).
func (g *Graph) NodeOutEdgeID(nodeID, i int) int { return g.nodes.EdgeID(nodeID, i) }

// NodeClosestTo returns the id of the node closest to point within
// searchDistance metres, or -1 if there is none. Among equally close nodes
// the lowest id wins.
func (g *Graph) NodeClosestTo(point geo.PointCH, searchDistance float64) int {
	best := -1
	bestSq := math.Inf(1)
	for _, s := range g.sectors.InArea(point, searchDistance) {
		for id := s.StartNodeID; id < s.EndNodeID; id++ {
			if d := point.SquaredDistanceTo(g.nodes.Point(id)); d < bestSq {
				best, bestSq = id, d
			}
		}
	}
	if best < 0 || bestSq > searchDistance*searchDistance {
		return -1
	}
	return best
}

// EdgeTargetNodeID returns the node the edge leads to.
func (g *Graph) EdgeTargetNodeID(edgeID int) int { return g.edges.TargetNodeID(edgeID) }

// EdgeIsInverted reports whether the edge runs against its OSM way.
func (g *Graph) EdgeIsInverted(edgeID int) bool { return g.edges.IsInverted(edgeID) }

// EdgeLength returns the length of the edge in metres.
func (g *Graph) EdgeLength(edgeID int) float64 { return g.edges.Length(edgeID) }

// EdgeElevationGain returns the positive elevation gain of the edge in metres.
func (g *Graph) EdgeElevationGain(edgeID int) float64 { return g.edges.ElevationGain(edgeID) }

// EdgeAttributes returns the OSM attributes of the edge.
func (g *Graph) EdgeAttributes(edgeID int) AttributeSet {
	return g.attributeSets[g.edges.AttributesIndex(edgeID)]
}

// EdgeProfile returns the elevation along the edge as a function of the
// distance from its start. Edges without samples yield NaN everywhere.
func (g *Graph) EdgeProfile(edgeID int) elevation.Func {
	if !g.edges.HasProfile(edgeID) {
		return elevation.Constant(math.NaN())
	}
	return elevation.Sampled(g.edges.ProfileSamples(edgeID), g.edges.Length(edgeID))
}

// AttributeSetCount returns the number of distinct attribute sets.
func (g *Graph) AttributeSetCount() int { return len(g.attributeSets) }
