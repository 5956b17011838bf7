// Package codec converts the fixed-point and packed bit-field values found in
// the graph files.
//
// Two fixed-point formats are used, both with 4 fractional bits: Q28.4 for
// signed 32-bit coordinates and Q12.4 for unsigned 16-bit lengths and
// elevations.
package codec

const fractionalBits = 4

const scale = 1 << fractionalBits

// Q28_4OfInt returns the Q28.4 representation of n.
func Q28_4OfInt(n int32) int32 {
	return n << fractionalBits
}

// Q28_4AsDouble converts a Q28.4 value to float64.
func Q28_4AsDouble(q int32) float64 {
	return float64(q) / scale
}

// Q28_4AsFloat converts a Q28.4 value to float32.
func Q28_4AsFloat(q int32) float32 {
	return float32(q) / scale
}

// Q12_4OfInt returns the Q12.4 representation of n. Values above 4095 overflow.
func Q12_4OfInt(n uint16) uint16 {
	return n << fractionalBits
}

// Q12_4AsDouble converts an unsigned Q12.4 value to float64.
func Q12_4AsDouble(q uint16) float64 {
	return float64(q) / scale
}

// Q12_4AsFloat converts an unsigned Q12.4 value to float32.
func Q12_4AsFloat(q uint16) float32 {
	return float32(q) / scale
}

// Q12_4OfDouble rounds v to the nearest Q12.4 value. v must lie in [0, 4095.9375].
func Q12_4OfDouble(v float64) uint16 {
	return uint16(v*scale + 0.5)
}

// Q28_4OfDouble rounds v to the nearest Q28.4 value.
func Q28_4OfDouble(v float64) int32 {
	if v < 0 {
		return int32(v*scale - 0.5)
	}
	return int32(v*scale + 0.5)
}
