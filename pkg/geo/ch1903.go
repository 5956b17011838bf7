// Package geo provides the planar geometry of the road network and the
// conversions between Swiss CH1903+ coordinates and WGS84.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Approximate swisstopo formulas, accurate to about a metre inside Switzerland.

// ToWGS84 returns the longitude and latitude of p in degrees.
func (p PointCH) ToWGS84() (lon, lat float64) {
	x := 1e-6 * (p.E - 2_600_000)
	y := 1e-6 * (p.N - 1_200_000)
	lon0 := 2.6779094 + 4.728982*x + 0.791484*x*y + 0.1306*x*y*y - 0.0436*x*x*x
	lat0 := 16.9023892 + 3.238272*y - 0.270978*x*x - 0.002528*y*y - 0.0447*x*x*y - 0.0140*y*y*y
	return lon0 * 100 / 36, lat0 * 100 / 36
}

// FromWGS84 converts a longitude/latitude pair in degrees to CH1903+.
func FromWGS84(lon, lat float64) PointCH {
	l := 1e-4 * (3600*lon - 26782.5)
	f := 1e-4 * (3600*lat - 169028.66)
	e := 2600072.37 + 211455.93*l - 10938.51*l*f - 0.36*l*f*f - 44.54*l*l*l
	n := 1200147.07 + 308807.95*f + 3745.25*l*l + 76.63*f*f - 194.56*l*l*f + 119.79*f*f*f
	return PointCH{E: e, N: n}
}

// ToOrb returns p as a WGS84 orb.Point (longitude, latitude).
func (p PointCH) ToOrb() orb.Point {
	lon, lat := p.ToWGS84()
	return orb.Point{lon, lat}
}

// FromOrb converts a WGS84 orb.Point to CH1903+.
func FromOrb(p orb.Point) PointCH {
	return FromWGS84(p.Lon(), p.Lat())
}

// LineString converts a sequence of CH1903+ points to a WGS84 line.
func LineString(points []PointCH) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.ToOrb()
	}
	return ls
}

// ValidWGS84 reports whether lon/lat are finite and in range.
func ValidWGS84(lon, lat float64) bool {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
