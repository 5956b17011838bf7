package codec

import (
	"fmt"

	"github.com/azybler/bike_router/pkg/errs"
)

// ExtractSigned returns the length-bit field of value starting at bit start,
// sign-extended from its highest bit.
//
// It panics with an error wrapping errs.ErrInvalidArgument unless
// 0 <= start, 1 <= length and start+length <= 32.
func ExtractSigned(value uint32, start, length int) int32 {
	checkRange(start, length, 32)
	shifted := int32(value << (32 - start - length))
	return shifted >> (32 - length)
}

// ExtractUnsigned returns the length-bit field of value starting at bit start,
// zero-extended.
//
// It panics with an error wrapping errs.ErrInvalidArgument unless
// 0 <= start, 1 <= length <= 31 and start+length <= 32.
func ExtractUnsigned(value uint32, start, length int) int32 {
	checkRange(start, length, 31)
	return int32((value >> start) & (1<<length - 1))
}

func checkRange(start, length, maxLength int) {
	if start < 0 || length < 1 || length > maxLength || start+length > 32 {
		panic(fmt.Errorf("%w: bit field start=%d length=%d", errs.ErrInvalidArgument, start, length))
	}
}
