package elevation

import (
	"fmt"
	"math"

	"github.com/azybler/bike_router/pkg/errs"
)

// Source is anything with a length and an elevation at every position,
// typically a route.
type Source interface {
	Length() float64
	ElevationAt(position float64) float64
}

// Compute samples src every maxStepLength metres at most and returns the
// resulting profile. Stretches of unknown elevation are filled in: leading
// and trailing gaps take the nearest known value, interior gaps are
// interpolated linearly, and a source with no known elevation at all gets a
// flat profile at 0.
func Compute(src Source, maxStepLength float64) (*Profile, error) {
	if !(maxStepLength > 0) {
		return nil, fmt.Errorf("%w: step length %v must be positive", errs.ErrInvalidArgument, maxStepLength)
	}

	length := src.Length()
	count := int(math.Ceil(length/maxStepLength)) + 1
	step := length / float64(count-1)

	samples := make([]float32, count)
	for i := range samples {
		samples[i] = float32(src.ElevationAt(float64(i) * step))
	}
	fillGaps(samples)

	return NewProfile(length, samples)
}

func fillGaps(samples []float32) {
	first := -1
	for i, v := range samples {
		if !isNaN(v) {
			first = i
			break
		}
	}
	if first < 0 {
		clear(samples)
		return
	}
	last := first
	for i := len(samples) - 1; i > first; i-- {
		if !isNaN(samples[i]) {
			last = i
			break
		}
	}

	for i := 0; i < first; i++ {
		samples[i] = samples[first]
	}
	for i := last + 1; i < len(samples); i++ {
		samples[i] = samples[last]
	}

	known := first
	for i := first + 1; i <= last; i++ {
		if isNaN(samples[i]) {
			continue
		}
		if i-known > 1 {
			y0, y1 := float64(samples[known]), float64(samples[i])
			span := float64(i - known)
			for k := known + 1; k < i; k++ {
				samples[k] = float32(interpolate(y0, y1, float64(k-known)/span))
			}
		}
		known = i
	}
}

func isNaN(v float32) bool { return v != v }
