package graph

import (
	"encoding/binary"
	"slices"

	"github.com/azybler/bike_router/pkg/codec"
)

// Edge record layout, 10 bytes, big-endian.
const (
	offsetEdgeTarget    = 0
	offsetEdgeLength    = offsetEdgeTarget + 4
	offsetEdgeElevation = offsetEdgeLength + 2
	offsetEdgeAttrs     = offsetEdgeElevation + 2
	edgeBytes           = offsetEdgeAttrs + 2

	profileIDBytes   = 4
	profileTypeShift = 30
	profileTypeBits  = 2
	firstSampleBits  = 30

	sampleBytes = 2
	// Samples are spaced 2 m apart, expressed in Q12.4.
	sampleSpacingQ = 2 << 4
)

// ProfileType is the compression scheme of an edge's elevation samples.
type ProfileType int

const (
	// ProfileNone means the edge has no elevation data.
	ProfileNone ProfileType = iota
	// ProfileRaw stores every sample as a Q12.4 value.
	ProfileRaw
	// ProfileDeltaQ4_4 stores one Q12.4 sample, then two signed 8-bit deltas per word.
	ProfileDeltaQ4_4
	// ProfileDeltaQ0_4 stores one Q12.4 sample, then four signed 4-bit deltas per word.
	ProfileDeltaQ0_4
)

// Edges is the packed edge table together with the per-edge profile ids and
// the shared elevation sample array.
type Edges struct {
	buf        []byte
	profileIDs []byte
	elevations []byte
}

// NewEdges wraps the contents of edges.bin, profile_ids.bin and elevation.bin.
func NewEdges(buf, profileIDs, elevations []byte) Edges {
	return Edges{buf: buf, profileIDs: profileIDs, elevations: elevations}
}

// Count returns the number of edges.
func (e Edges) Count() int {
	return len(e.buf) / edgeBytes
}

func (e Edges) rawTarget(id int) int32 {
	return int32(binary.BigEndian.Uint32(e.buf[id*edgeBytes+offsetEdgeTarget:]))
}

func (e Edges) rawLength(id int) uint16 {
	return binary.BigEndian.Uint16(e.buf[id*edgeBytes+offsetEdgeLength:])
}

// IsInverted reports whether the edge runs against the direction of its OSM way.
func (e Edges) IsInverted(id int) bool {
	return e.rawTarget(id) < 0
}

// TargetNodeID returns the id of the node the edge leads to.
func (e Edges) TargetNodeID(id int) int {
	t := e.rawTarget(id)
	if t < 0 {
		return int(^t)
	}
	return int(t)
}

// Length returns the length of the edge in metres.
func (e Edges) Length(id int) float64 {
	return codec.Q12_4AsDouble(e.rawLength(id))
}

// ElevationGain returns the positive elevation gain of the edge in metres.
func (e Edges) ElevationGain(id int) float64 {
	return codec.Q12_4AsDouble(binary.BigEndian.Uint16(e.buf[id*edgeBytes+offsetEdgeElevation:]))
}

// AttributesIndex returns the index of the edge's attribute set.
func (e Edges) AttributesIndex(id int) int {
	return int(binary.BigEndian.Uint16(e.buf[id*edgeBytes+offsetEdgeAttrs:]))
}

func (e Edges) profileID(id int) uint32 {
	return binary.BigEndian.Uint32(e.profileIDs[id*profileIDBytes:])
}

// ProfileType returns the compression scheme of the edge's samples.
func (e Edges) ProfileType(id int) ProfileType {
	return ProfileType(codec.ExtractUnsigned(e.profileID(id), profileTypeShift, profileTypeBits))
}

// HasProfile reports whether the edge carries elevation samples.
func (e Edges) HasProfile(id int) bool {
	return e.ProfileType(id) != ProfileNone
}

func (e Edges) sample(index int) uint16 {
	return binary.BigEndian.Uint16(e.elevations[index*sampleBytes:])
}

// SampleCount returns the number of elevation samples of an edge of the given
// raw Q12.4 length: one every 2 m, both ends included.
func SampleCount(rawLength uint16) int {
	return 1 + (int(rawLength)+sampleSpacingQ-1)/sampleSpacingQ
}

// ProfileSamples returns the decoded elevation samples of the edge in the
// direction of travel, or nil when the edge has no profile.
func (e Edges) ProfileSamples(id int) []float32 {
	pid := e.profileID(id)
	typ := ProfileType(codec.ExtractUnsigned(pid, profileTypeShift, profileTypeBits))
	if typ == ProfileNone {
		return nil
	}
	first := int(codec.ExtractUnsigned(pid, 0, firstSampleBits))
	samples := make([]float32, SampleCount(e.rawLength(id)))

	switch typ {
	case ProfileRaw:
		for i := range samples {
			samples[i] = codec.Q12_4AsFloat(e.sample(first + i))
		}
	case ProfileDeltaQ4_4:
		e.decodeDeltas(samples, first, 8)
	case ProfileDeltaQ0_4:
		e.decodeDeltas(samples, first, 4)
	}

	if e.IsInverted(id) {
		slices.Reverse(samples)
	}
	return samples
}

// decodeDeltas fills samples from one absolute Q12.4 sample at index first
// followed by words packing 16/bits signed deltas each, most significant first.
func (e Edges) decodeDeltas(samples []float32, first, bits int) {
	perWord := 16 / bits
	value := int32(e.sample(first))
	samples[0] = codec.Q28_4AsFloat(value)
	for i := 1; i < len(samples); i++ {
		j := i - 1
		word := uint32(e.sample(first + 1 + j/perWord))
		shift := 16 - bits*(j%perWord+1)
		value += codec.ExtractSigned(word, shift, bits)
		samples[i] = codec.Q28_4AsFloat(value)
	}
}
