package graph

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func words16(ws ...uint16) []byte {
	buf := make([]byte, 2*len(ws))
	for i, w := range ws {
		binary.BigEndian.PutUint16(buf[2*i:], w)
	}
	return buf
}

func words32(ws ...uint32) []byte {
	buf := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.BigEndian.PutUint32(buf[4*i:], w)
	}
	return buf
}

func TestEdgesDecodeLiteral(t *testing.T) {
	edgeBuf := []byte{0xFF, 0xFF, 0xFF, 0xF3, 0x01, 0x0B, 0x01, 0x00, 0x07, 0xE6}
	edges := NewEdges(edgeBuf, words32(3<<30|1), words16(0, 0x180C, 0xFEFF, 0xFFFE, 0xF000))

	assert.Equal(t, 1, edges.Count())
	assert.True(t, edges.IsInverted(0))
	assert.Equal(t, 12, edges.TargetNodeID(0))
	assert.Equal(t, 16.6875, edges.Length(0))
	assert.Equal(t, 16.0, edges.ElevationGain(0))
	assert.Equal(t, 2022, edges.AttributesIndex(0))
	assert.True(t, edges.HasProfile(0))
	assert.Equal(t, ProfileDeltaQ0_4, edges.ProfileType(0))

	want := []float32{384.0625, 384.125, 384.25, 384.3125, 384.375, 384.4375, 384.5, 384.5625, 384.6875, 384.75}
	assert.Equal(t, want, edges.ProfileSamples(0))
}

func TestEdgesDecodeProfileTypes(t *testing.T) {
	// Three non-inverted edges of length 4 m (three samples each) sharing one sample array.
	edgeBuf := make([]byte, 4*edgeBytes)
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint32(edgeBuf[i*edgeBytes:], uint32(i))
		binary.BigEndian.PutUint16(edgeBuf[i*edgeBytes+offsetEdgeLength:], 4<<4)
	}
	profileIDs := words32(
		0,       // none
		1<<30|0, // raw
		2<<30|3, // 8-bit deltas
		3<<30|5, // 4-bit deltas
	)
	elevations := words16(
		0x0010, 0x0020, 0x0030, // raw: 1, 2, 3
		0x1000, 0x10F0, // 256, then +16 and -16
		0x0100, 0x7800, // 16, then +7 and -8
	)
	edges := NewEdges(edgeBuf, profileIDs, elevations)

	assert.False(t, edges.HasProfile(0))
	assert.Nil(t, edges.ProfileSamples(0))
	assert.Equal(t, []float32{1, 2, 3}, edges.ProfileSamples(1))
	assert.Equal(t, []float32{256, 257, 256}, edges.ProfileSamples(2))
	assert.Equal(t, []float32{16, 16.4375, 15.9375}, edges.ProfileSamples(3))
	assert.False(t, edges.IsInverted(3))
	assert.Equal(t, 3, edges.TargetNodeID(3))
}

func TestSampleCount(t *testing.T) {
	tests := []struct {
		raw  uint16
		want int
	}{
		{0, 1},
		{1, 2},
		{32, 2},
		{33, 3},
		{0x10B, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SampleCount(tt.raw), "raw=%d", tt.raw)
	}
}
