package codec

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/bike_router/pkg/errs"
)

func TestQ28_4RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2022))
	for i := 0; i < 1000; i++ {
		n := rng.Int31n(1<<27) - 1<<26
		assert.Equal(t, float64(n), Q28_4AsDouble(Q28_4OfInt(n)))
		assert.Equal(t, float32(n), Q28_4AsFloat(Q28_4OfInt(n)))
	}
}

func TestQ28_4Fraction(t *testing.T) {
	assert.Equal(t, 0.5, Q28_4AsDouble(0b1000))
	assert.Equal(t, -0.0625, Q28_4AsDouble(-1))
	assert.Equal(t, int32(-8), Q28_4OfDouble(-0.5))
	assert.Equal(t, int32(2_600_000*16), Q28_4OfDouble(2_600_000))
}

func TestQ12_4(t *testing.T) {
	assert.Equal(t, 16.6875, Q12_4AsDouble(0x10B))
	assert.Equal(t, 4095.9375, Q12_4AsDouble(0xFFFF))
	assert.Equal(t, float32(384.75), Q12_4AsFloat(0x180C))
	assert.Equal(t, uint16(0x10B), Q12_4OfDouble(16.6875))
	assert.Equal(t, uint16(32), Q12_4OfInt(2))
}

func TestExtractMatchesShiftAndMask(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		value := rng.Uint32()
		start := rng.Intn(32)
		length := 1 + rng.Intn(32-start)

		if length <= 31 {
			want := int32((value >> start) & ((1 << length) - 1))
			assert.Equal(t, want, ExtractUnsigned(value, start, length))
		}

		want := int64(value>>start) & (1<<length - 1)
		if want&(1<<(length-1)) != 0 {
			want -= 1 << length
		}
		assert.Equal(t, int32(want), ExtractSigned(value, start, length))
	}
}

func TestExtractLiterals(t *testing.T) {
	tests := []struct {
		name   string
		value  uint32
		start  int
		length int
		signed int32
		unsign int32
	}{
		{"low nibble", 0xFEFF, 0, 4, -1, 15},
		{"second nibble", 0xFEFF, 8, 4, -2, 14},
		{"high byte", 0xFEFF, 8, 8, -2, 254},
		{"positive", 0b0110_0000, 4, 4, 6, 6},
		{"out degree", 0x3000_0007, 28, 3, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.signed, ExtractSigned(tt.value, tt.start, tt.length))
			assert.Equal(t, tt.unsign, ExtractUnsigned(tt.value, tt.start, tt.length))
		})
	}
	assert.Equal(t, int32(-1), ExtractSigned(0xFFFF_FFFF, 0, 32))
}

func TestExtractInvalidRange(t *testing.T) {
	invalid := []struct {
		start, length int
		signed        bool
	}{
		{-1, 4, true},
		{0, 0, true},
		{30, 4, true},
		{0, 33, true},
		{0, 32, false},
		{-1, 4, false},
		{31, 2, false},
	}
	for _, tt := range invalid {
		err := capturePanic(func() {
			if tt.signed {
				ExtractSigned(0, tt.start, tt.length)
			} else {
				ExtractUnsigned(0, tt.start, tt.length)
			}
		})
		require.Error(t, err, "start=%d length=%d", tt.start, tt.length)
		assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	}
}

func capturePanic(f func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err, _ = rec.(error)
		}
	}()
	f()
	return nil
}
