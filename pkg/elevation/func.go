// Package elevation holds the elevation functions attached to edges, the
// resampled elevation profile of a whole route and the computation that
// builds one from the other.
package elevation

import "math"

// Func maps a position along an edge or route, in metres, to an elevation.
// It returns NaN where the elevation is unknown.
type Func func(position float64) float64

// Constant returns a Func that always returns y.
func Constant(y float64) Func {
	return func(float64) float64 { return y }
}

// Sampled returns a Func that linearly interpolates samples spread evenly
// over [0, xMax]. Outside that interval it returns the first or last sample.
//
// samples must not be empty. A single sample yields a constant function.
func Sampled(samples []float32, xMax float64) Func {
	s := append([]float32(nil), samples...)
	if len(s) == 1 || xMax <= 0 {
		return Constant(float64(s[0]))
	}
	step := xMax / float64(len(s)-1)
	last := len(s) - 1
	return func(x float64) float64 {
		if math.IsNaN(x) {
			return math.NaN()
		}
		if x <= 0 {
			return float64(s[0])
		}
		if x >= xMax {
			return float64(s[last])
		}
		pos := x / step
		i := int(pos)
		if i >= last {
			return float64(s[last])
		}
		return interpolate(float64(s[i]), float64(s[i+1]), pos-float64(i))
	}
}

func interpolate(y0, y1, x float64) float64 {
	return math.FMA(y1-y0, x, y0)
}
