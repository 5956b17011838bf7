package graph

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/paulmach/osm"

	"github.com/azybler/bike_router/pkg/errs"
)

// Attribute is one OSM tag/value pair relevant to cycling. Its value is its
// bit position in an AttributeSet and must never change, since attribute sets
// are stored in attributes.bin.
type Attribute uint8

const (
	HighwayService Attribute = iota
	HighwayTrack
	HighwayResidential
	HighwayFootway
	HighwayPath
	HighwayUnclassified
	HighwayTertiary
	HighwaySecondary
	HighwayPrimary
	HighwayCycleway
	HighwayLivingStreet
	HighwaySteps
	HighwayPedestrian
	HighwayTrunk
	HighwayBridleway
	HighwayTertiaryLink
	HighwaySecondaryLink
	HighwayPrimaryLink
	HighwayTrunkLink

	TracktypeGrade1
	TracktypeGrade2
	TracktypeGrade3
	TracktypeGrade4
	TracktypeGrade5

	SurfaceAsphalt
	SurfaceUnpaved
	SurfaceGravel
	SurfacePaved
	SurfaceGround
	SurfaceGrass
	SurfaceDirt
	SurfaceFineGravel
	SurfaceCompacted
	SurfacePavingStones
	SurfaceConcrete
	SurfaceSand
	SurfaceWood
	SurfaceSett
	SurfaceCobblestone
	SurfacePebblestone

	BicycleYes
	BicycleNo
	BicycleDesignated
	BicycleDismount
	BicycleUseSidepath
	BicycleOptionalSidepath
	BicyclePermissive
	BicyclePrivate

	VehicleNo
	VehiclePrivate

	AccessYes
	AccessNo
	AccessPrivate
	AccessPermissive

	MotorroadYes

	OnewayYes
	OnewayM1
	OnewayBicycleYes
	OnewayBicycleNo

	LcnYes
	RcnYes
	NcnYes

	// AttributeCount is the number of defined attributes.
	AttributeCount int = iota
)

var attributeTags = [AttributeCount]osm.Tag{
	{Key: "highway", Value: "service"},
	{Key: "highway", Value: "track"},
	{Key: "highway", Value: "residential"},
	{Key: "highway", Value: "footway"},
	{Key: "highway", Value: "path"},
	{Key: "highway", Value: "unclassified"},
	{Key: "highway", Value: "tertiary"},
	{Key: "highway", Value: "secondary"},
	{Key: "highway", Value: "primary"},
	{Key: "highway", Value: "cycleway"},
	{Key: "highway", Value: "living_street"},
	{Key: "highway", Value: "steps"},
	{Key: "highway", Value: "pedestrian"},
	{Key: "highway", Value: "trunk"},
	{Key: "highway", Value: "bridleway"},
	{Key: "highway", Value: "tertiary_link"},
	{Key: "highway", Value: "secondary_link"},
	{Key: "highway", Value: "primary_link"},
	{Key: "highway", Value: "trunk_link"},

	{Key: "tracktype", Value: "grade1"},
	{Key: "tracktype", Value: "grade2"},
	{Key: "tracktype", Value: "grade3"},
	{Key: "tracktype", Value: "grade4"},
	{Key: "tracktype", Value: "grade5"},

	{Key: "surface", Value: "asphalt"},
	{Key: "surface", Value: "unpaved"},
	{Key: "surface", Value: "gravel"},
	{Key: "surface", Value: "paved"},
	{Key: "surface", Value: "ground"},
	{Key: "surface", Value: "grass"},
	{Key: "surface", Value: "dirt"},
	{Key: "surface", Value: "fine_gravel"},
	{Key: "surface", Value: "compacted"},
	{Key: "surface", Value: "paving_stones"},
	{Key: "surface", Value: "concrete"},
	{Key: "surface", Value: "sand"},
	{Key: "surface", Value: "wood"},
	{Key: "surface", Value: "sett"},
	{Key: "surface", Value: "cobblestone"},
	{Key: "surface", Value: "pebblestone"},

	{Key: "bicycle", Value: "yes"},
	{Key: "bicycle", Value: "no"},
	{Key: "bicycle", Value: "designated"},
	{Key: "bicycle", Value: "dismount"},
	{Key: "bicycle", Value: "use_sidepath"},
	{Key: "bicycle", Value: "optional_sidepath"},
	{Key: "bicycle", Value: "permissive"},
	{Key: "bicycle", Value: "private"},

	{Key: "vehicle", Value: "no"},
	{Key: "vehicle", Value: "private"},

	{Key: "access", Value: "yes"},
	{Key: "access", Value: "no"},
	{Key: "access", Value: "private"},
	{Key: "access", Value: "permissive"},

	{Key: "motorroad", Value: "yes"},

	{Key: "oneway", Value: "yes"},
	{Key: "oneway", Value: "-1"},
	{Key: "oneway:bicycle", Value: "yes"},
	{Key: "oneway:bicycle", Value: "no"},

	{Key: "lcn", Value: "yes"},
	{Key: "rcn", Value: "yes"},
	{Key: "ncn", Value: "yes"},
}

// Tag returns the OSM tag the attribute stands for.
func (a Attribute) Tag() osm.Tag { return attributeTags[a] }

// Key returns the OSM key, e.g. "highway".
func (a Attribute) Key() string { return attributeTags[a].Key }

// Value returns the OSM value, e.g. "track".
func (a Attribute) Value() string { return attributeTags[a].Value }

func (a Attribute) String() string {
	if int(a) >= AttributeCount {
		return fmt.Sprintf("Attribute(%d)", uint8(a))
	}
	t := attributeTags[a]
	return t.Key + "=" + t.Value
}

// AttributeFromTag returns the attribute matching tag, if any.
func AttributeFromTag(tag osm.Tag) (Attribute, bool) {
	for i, t := range attributeTags {
		if t == tag {
			return Attribute(i), true
		}
	}
	return 0, false
}

// ParseAttribute parses the "key=value" form returned by Attribute.String.
func ParseAttribute(s string) (Attribute, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, fmt.Errorf("%w: attribute %q is not key=value", errs.ErrInvalidArgument, s)
	}
	a, ok := AttributeFromTag(osm.Tag{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	if !ok {
		return 0, fmt.Errorf("%w: unknown attribute %q", errs.ErrInvalidArgument, s)
	}
	return a, nil
}

// AttributeSet is a set of attributes, one bit per attribute.
type AttributeSet uint64

const validAttributeBits uint64 = 1<<AttributeCount - 1

// NewAttributeSet returns the set encoded by bits. Bits at or above
// AttributeCount are invalid.
func NewAttributeSet(bits uint64) (AttributeSet, error) {
	if bits&^validAttributeBits != 0 {
		return 0, fmt.Errorf("%w: attribute bits %#x outside the %d defined attributes", errs.ErrInvalidArgument, bits, AttributeCount)
	}
	return AttributeSet(bits), nil
}

// AttributeSetOf returns the set containing exactly attrs. It panics if an
// attribute is not in the catalogue.
func AttributeSetOf(attrs ...Attribute) AttributeSet {
	var s AttributeSet
	for _, a := range attrs {
		if int(a) >= AttributeCount {
			panic(fmt.Errorf("%w: attribute %d outside the %d defined attributes", errs.ErrInvalidArgument, a, AttributeCount))
		}
		s |= 1 << a
	}
	return s
}

// Bits returns the raw encoding of the set.
func (s AttributeSet) Bits() uint64 { return uint64(s) }

// Len returns the number of attributes in the set.
func (s AttributeSet) Len() int { return bits.OnesCount64(uint64(s)) }

// Contains reports whether a is in the set.
func (s AttributeSet) Contains(a Attribute) bool {
	return s&(1<<a) != 0
}

// Intersects reports whether s and that share at least one attribute.
func (s AttributeSet) Intersects(that AttributeSet) bool {
	return s&that != 0
}

// Union returns the attributes in s or that.
func (s AttributeSet) Union(that AttributeSet) AttributeSet {
	return s | that
}

// Attributes returns the members of the set in ordinal order.
func (s AttributeSet) Attributes() []Attribute {
	attrs := make([]Attribute, 0, s.Len())
	for b := uint64(s); b != 0; b &= b - 1 {
		attrs = append(attrs, Attribute(bits.TrailingZeros64(b)))
	}
	return attrs
}

// Tags returns the members of the set as OSM tags, in ordinal order.
func (s AttributeSet) Tags() osm.Tags {
	tags := make(osm.Tags, 0, s.Len())
	for _, a := range s.Attributes() {
		tags = append(tags, a.Tag())
	}
	return tags
}

// String formats the set as {key=value,...} in ordinal order.
func (s AttributeSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, a := range s.Attributes() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
