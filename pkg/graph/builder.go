package graph

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/azybler/bike_router/pkg/codec"
	"github.com/azybler/bike_router/pkg/errs"
	"github.com/azybler/bike_router/pkg/geo"
)

const (
	maxOutDegree   = 1<<outDegreeBits - 1
	maxSectorNodes = math.MaxUint16
	maxQ12_4       = 4095.9375
)

// EdgeSpec describes an edge added to a Builder.
type EdgeSpec struct {
	// Length in metres. Zero means the straight-line distance between the nodes.
	Length float64
	// ElevationGain in metres. Zero with a Profile means it is derived from the samples.
	ElevationGain float64
	Attributes    AttributeSet
	// Profile holds samples 2 m apart in the direction of travel, or nil.
	Profile []float32
	// Inverted marks an edge running against its OSM way; its profile is
	// stored reversed.
	Inverted bool
}

type builderEdge struct {
	from, to int
	spec     EdgeSpec
}

// Builder assembles the binary file set of a graph. Nodes are renumbered so
// that every sector holds a contiguous id range, and edges so that the
// outgoing edges of every node are contiguous.
type Builder struct {
	bounds geo.Bounds
	points []geo.PointCH
	edges  []builderEdge
}

// Built is the result of Builder.Build.
type Built struct {
	Buffers
	// NodeIDs maps the handles returned by AddNode to node ids.
	NodeIDs []int
	// EdgeIDs maps the handles returned by AddEdge to edge ids.
	EdgeIDs []int
}

// NewBuilder returns an empty builder for a network inside bounds.
func NewBuilder(bounds geo.Bounds) *Builder {
	return &Builder{bounds: bounds}
}

// AddNode adds a node and returns its handle.
func (b *Builder) AddNode(p geo.PointCH) int {
	b.points = append(b.points, p)
	return len(b.points) - 1
}

// AddEdge adds a directed edge between two node handles and returns its handle.
func (b *Builder) AddEdge(from, to int, spec EdgeSpec) int {
	b.edges = append(b.edges, builderEdge{from: from, to: to, spec: spec})
	return len(b.edges) - 1
}

// Build encodes the graph.
func (b *Builder) Build() (*Built, error) {
	sectors := NewSectors(nil, b.bounds)

	// Step 1: Order nodes by sector.
	cells := make([]int, len(b.points))
	order := make([]int, len(b.points))
	for i, p := range b.points {
		cells[i] = sectors.CellOf(p)
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int { return cmp.Compare(cells[x], cells[y]) })
	nodeIDs := make([]int, len(b.points))
	for id, handle := range order {
		nodeIDs[handle] = id
	}

	// Step 2: Sector ranges.
	sectorBuf := make([]byte, sectorsFileSize)
	counts := make([]int, SectorCount)
	for _, c := range cells {
		counts[c]++
	}
	start := 0
	for i, n := range counts {
		if n > maxSectorNodes {
			return nil, fmt.Errorf("%w: sector %d holds %d nodes", errs.ErrInvalidArgument, i, n)
		}
		off := i * sectorBytes
		binary.BigEndian.PutUint32(sectorBuf[off+offsetSectorStart:], uint32(start))
		binary.BigEndian.PutUint16(sectorBuf[off+offsetSectorCount:], uint16(n))
		start += n
	}

	// Step 3: Order edges by source node.
	edgeOrder := make([]int, len(b.edges))
	for i := range edgeOrder {
		edgeOrder[i] = i
	}
	slices.SortStableFunc(edgeOrder, func(x, y int) int {
		return cmp.Compare(nodeIDs[b.edges[x].from], nodeIDs[b.edges[y].from])
	})
	edgeIDs := make([]int, len(b.edges))
	for id, handle := range edgeOrder {
		edgeIDs[handle] = id
	}

	// Step 4: Encode edges, profiles and attribute sets.
	edgeBuf := make([]byte, len(b.edges)*edgeBytes)
	profileBuf := make([]byte, len(b.edges)*profileIDBytes)
	var samples []uint16
	var sets []AttributeSet
	setIndex := make(map[AttributeSet]int)
	degree := make([]int, len(b.points))
	firstEdge := make([]int, len(b.points))
	for i := range firstEdge {
		firstEdge[i] = -1
	}

	for id, handle := range edgeOrder {
		e := b.edges[handle]
		from, to := nodeIDs[e.from], nodeIDs[e.to]
		if firstEdge[from] < 0 {
			firstEdge[from] = id
		}
		degree[from]++

		length := e.spec.Length
		if length == 0 {
			length = b.points[e.from].DistanceTo(b.points[e.to])
		}
		gain := e.spec.ElevationGain
		if gain == 0 && e.spec.Profile != nil {
			gain = positiveGain(e.spec.Profile)
		}
		if length > maxQ12_4 || gain > maxQ12_4 {
			return nil, fmt.Errorf("%w: edge %d length %v or gain %v exceeds %v", errs.ErrInvalidArgument, handle, length, gain, maxQ12_4)
		}

		target := int32(to)
		if e.spec.Inverted {
			target = ^target
		}
		idx, ok := setIndex[e.spec.Attributes]
		if !ok {
			idx = len(sets)
			setIndex[e.spec.Attributes] = idx
			sets = append(sets, e.spec.Attributes)
		}
		rawLength := codec.Q12_4OfDouble(length)

		off := id * edgeBytes
		binary.BigEndian.PutUint32(edgeBuf[off+offsetEdgeTarget:], uint32(target))
		binary.BigEndian.PutUint16(edgeBuf[off+offsetEdgeLength:], rawLength)
		binary.BigEndian.PutUint16(edgeBuf[off+offsetEdgeElevation:], codec.Q12_4OfDouble(gain))
		binary.BigEndian.PutUint16(edgeBuf[off+offsetEdgeAttrs:], uint16(idx))

		var pid uint32
		if e.spec.Profile != nil {
			if n := SampleCount(rawLength); len(e.spec.Profile) != n {
				return nil, fmt.Errorf("%w: edge %d has %d samples, want %d", errs.ErrInvalidArgument, handle, len(e.spec.Profile), n)
			}
			stored := slices.Clone(e.spec.Profile)
			if e.spec.Inverted {
				slices.Reverse(stored)
			}
			typ, words := encodeProfile(stored)
			pid = uint32(typ)<<profileTypeShift | uint32(len(samples))
			samples = append(samples, words...)
		}
		binary.BigEndian.PutUint32(profileBuf[id*profileIDBytes:], pid)
	}

	// Step 5: Encode nodes.
	nodeBuf := make([]byte, len(b.points)*nodeBytes)
	for handle, p := range b.points {
		id := nodeIDs[handle]
		if degree[id] > maxOutDegree {
			return nil, fmt.Errorf("%w: node %d has out-degree %d", errs.ErrInvalidArgument, handle, degree[id])
		}
		first := max(firstEdge[id], 0)
		off := id * nodeBytes
		binary.BigEndian.PutUint32(nodeBuf[off+offsetE*4:], uint32(codec.Q28_4OfDouble(p.E)))
		binary.BigEndian.PutUint32(nodeBuf[off+offsetN*4:], uint32(codec.Q28_4OfDouble(p.N)))
		binary.BigEndian.PutUint32(nodeBuf[off+offsetOutEdges*4:], uint32(degree[id])<<outDegreeShift|uint32(first))
	}

	elevationBuf := make([]byte, len(samples)*sampleBytes)
	for i, s := range samples {
		binary.BigEndian.PutUint16(elevationBuf[i*sampleBytes:], s)
	}
	attrBuf := make([]byte, len(sets)*attributeSetBytes)
	for i, s := range sets {
		binary.BigEndian.PutUint64(attrBuf[i*attributeSetBytes:], s.Bits())
	}

	return &Built{
		Buffers: Buffers{
			Nodes:      nodeBuf,
			Sectors:    sectorBuf,
			Edges:      edgeBuf,
			ProfileIDs: profileBuf,
			Elevations: elevationBuf,
			Attributes: attrBuf,
		},
		NodeIDs: nodeIDs,
		EdgeIDs: edgeIDs,
	}, nil
}

// encodeProfile picks the most compact scheme able to represent samples exactly.
func encodeProfile(samples []float32) (ProfileType, []uint16) {
	q := make([]uint16, len(samples))
	for i, s := range samples {
		q[i] = codec.Q12_4OfDouble(float64(s))
	}
	lo, hi := 0, 0
	for i := 1; i < len(q); i++ {
		d := int(q[i]) - int(q[i-1])
		lo, hi = min(lo, d), max(hi, d)
	}

	switch {
	case lo >= -8 && hi <= 7:
		return ProfileDeltaQ0_4, packDeltas(q, 4)
	case lo >= -128 && hi <= 127:
		return ProfileDeltaQ4_4, packDeltas(q, 8)
	}
	return ProfileRaw, q
}

func packDeltas(q []uint16, bits int) []uint16 {
	perWord := 16 / bits
	mask := uint16(1<<bits - 1)
	words := make([]uint16, 1+(len(q)-1+perWord-1)/perWord)
	words[0] = q[0]
	for i := 1; i < len(q); i++ {
		j := i - 1
		d := uint16(int(q[i])-int(q[i-1])) & mask
		shift := 16 - bits*(j%perWord+1)
		words[1+j/perWord] |= d << shift
	}
	return words
}

func positiveGain(samples []float32) float64 {
	var gain float64
	for i := 1; i < len(samples); i++ {
		if d := float64(samples[i] - samples[i-1]); d > 0 {
			gain += d
		}
	}
	return gain
}
