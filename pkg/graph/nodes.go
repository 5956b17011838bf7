package graph

import (
	"encoding/binary"
	"fmt"

	"github.com/azybler/bike_router/pkg/codec"
	"github.com/azybler/bike_router/pkg/errs"
	"github.com/azybler/bike_router/pkg/geo"
)

// Node record layout: three big-endian 32-bit words.
const (
	offsetE        = 0
	offsetN        = offsetE + 1
	offsetOutEdges = offsetN + 1
	nodeInts       = offsetOutEdges + 1
	nodeBytes      = nodeInts * 4

	outDegreeShift = 28
	outDegreeBits  = 4
	firstEdgeBits  = 28
)

// Nodes is the packed node table: E and N in Q28.4, then the out-degree in
// the top 4 bits and the id of the first outgoing edge in the low 28 bits.
type Nodes struct {
	buf []byte
}

// NewNodes wraps the contents of nodes.bin.
func NewNodes(buf []byte) Nodes {
	return Nodes{buf: buf}
}

func (n Nodes) word(id, field int) uint32 {
	return binary.BigEndian.Uint32(n.buf[(id*nodeInts+field)*4:])
}

// Count returns the number of nodes.
func (n Nodes) Count() int {
	return len(n.buf) / nodeBytes
}

// NodeE returns the east coordinate of the node.
func (n Nodes) NodeE(id int) float64 {
	return codec.Q28_4AsDouble(int32(n.word(id, offsetE)))
}

// NodeN returns the north coordinate of the node.
func (n Nodes) NodeN(id int) float64 {
	return codec.Q28_4AsDouble(int32(n.word(id, offsetN)))
}

// Point returns the position of the node.
func (n Nodes) Point(id int) geo.PointCH {
	return geo.PointCH{E: n.NodeE(id), N: n.NodeN(id)}
}

// OutDegree returns the number of edges leaving the node.
func (n Nodes) OutDegree(id int) int {
	return int(codec.ExtractUnsigned(n.word(id, offsetOutEdges), outDegreeShift, outDegreeBits))
}

// EdgeID returns the id of the i-th edge leaving the node.
// It panics unless 0 <= i < OutDegree(id).
func (n Nodes) EdgeID(id, i int) int {
	w := n.word(id, offsetOutEdges)
	degree := int(codec.ExtractUnsigned(w, outDegreeShift, outDegreeBits))
	if i < 0 || i >= degree {
		panic(fmt.Errorf("%w: edge index %d of node %d with out-degree %d", errs.ErrInvalidArgument, i, id, degree))
	}
	return int(codec.ExtractUnsigned(w, 0, firstEdgeBits)) + i
}

// firstEdgeID returns the first outgoing edge id without bounds checking.
func (n Nodes) firstEdgeID(id int) int {
	return int(codec.ExtractUnsigned(n.word(id, offsetOutEdges), 0, firstEdgeBits))
}
