package elevation

import (
	"fmt"
	"math"

	"github.com/azybler/bike_router/pkg/errs"
)

// Profile is the elevation of a route sampled at a fixed step.
// It is immutable.
type Profile struct {
	length   float64
	samples  []float32
	fn       Func
	min, max float64
	ascent   float64
	descent  float64
}

// NewProfile returns the profile of a route of the given length whose
// elevations are samples, spread evenly from 0 to length.
func NewProfile(length float64, samples []float32) (*Profile, error) {
	if !(length > 0) {
		return nil, fmt.Errorf("%w: profile length %v must be positive", errs.ErrInvalidArgument, length)
	}
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: profile needs at least 2 samples, got %d", errs.ErrInvalidArgument, len(samples))
	}

	s := append([]float32(nil), samples...)
	p := &Profile{
		length:  length,
		samples: s,
		fn:      Sampled(s, length),
		min:     math.Inf(1),
		max:     math.Inf(-1),
	}
	for i, v := range s {
		p.min = math.Min(p.min, float64(v))
		p.max = math.Max(p.max, float64(v))
		if i == 0 {
			continue
		}
		d := float64(v) - float64(s[i-1])
		if d > 0 {
			p.ascent += d
		} else {
			p.descent -= d
		}
	}
	return p, nil
}

// Length returns the length of the profiled route in metres.
func (p *Profile) Length() float64 { return p.length }

// MinElevation returns the lowest sample.
func (p *Profile) MinElevation() float64 { return p.min }

// MaxElevation returns the highest sample.
func (p *Profile) MaxElevation() float64 { return p.max }

// TotalAscent returns the sum of all positive differences between consecutive samples.
func (p *Profile) TotalAscent() float64 { return p.ascent }

// TotalDescent returns the sum of all negative differences between consecutive samples, as a positive number.
func (p *Profile) TotalDescent() float64 { return p.descent }

// ElevationAt returns the elevation at position, clamped to [0, Length()].
func (p *Profile) ElevationAt(position float64) float64 {
	return p.fn(math.Max(0, math.Min(position, p.length)))
}

// Samples returns a copy of the samples.
func (p *Profile) Samples() []float32 {
	return append([]float32(nil), p.samples...)
}
