package graph

import (
	"errors"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/bike_router/pkg/errs"
)

func TestAttributeSetString(t *testing.T) {
	s := AttributeSetOf(TracktypeGrade1, HighwayTrack)
	assert.Equal(t, "{highway=track,tracktype=grade1}", s.String())
	assert.Equal(t, "{}", AttributeSet(0).String())
}

func TestAttributeCatalogue(t *testing.T) {
	assert.Equal(t, 62, AttributeCount)
	assert.Equal(t, "highway=service", HighwayService.String())
	assert.Equal(t, "ncn=yes", NcnYes.String())
	assert.Equal(t, osm.Tag{Key: "oneway", Value: "-1"}, OnewayM1.Tag())
	assert.Equal(t, "oneway:bicycle", OnewayBicycleNo.Key())
	assert.Equal(t, "fine_gravel", SurfaceFineGravel.Value())

	seen := make(map[osm.Tag]bool)
	for i := 0; i < AttributeCount; i++ {
		tag := Attribute(i).Tag()
		assert.False(t, seen[tag], "duplicate tag %v", tag)
		seen[tag] = true

		a, ok := AttributeFromTag(tag)
		require.True(t, ok)
		assert.Equal(t, Attribute(i), a)
	}
}

func TestNewAttributeSet(t *testing.T) {
	s, err := NewAttributeSet(1<<61 | 1)
	require.NoError(t, err)
	assert.True(t, s.Contains(HighwayService))
	assert.True(t, s.Contains(NcnYes))
	assert.Equal(t, 2, s.Len())

	for _, bit := range []uint{62, 63} {
		_, err := NewAttributeSet(1 << bit)
		assert.True(t, errors.Is(err, errs.ErrInvalidArgument), "bit %d", bit)
	}
}

func TestAttributeSetOfRejectsUnknownAttribute(t *testing.T) {
	for _, a := range []Attribute{Attribute(AttributeCount), 63, 255} {
		func() {
			defer func() {
				err, _ := recover().(error)
				require.Error(t, err)
				assert.True(t, errors.Is(err, errs.ErrInvalidArgument), "attribute %d", a)
			}()
			AttributeSetOf(HighwayPath, a)
		}()
	}
}

func TestAttributeSetAlgebra(t *testing.T) {
	a := AttributeSetOf(HighwayPath, SurfaceGravel)
	b := AttributeSetOf(SurfaceGravel, BicycleNo)
	c := AttributeSetOf(HighwaySteps)

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))
	u := a.Union(c)
	assert.True(t, u.Contains(HighwaySteps))
	assert.True(t, u.Contains(HighwayPath))
	assert.False(t, u.Contains(BicycleNo))
	assert.Equal(t, []Attribute{HighwayPath, HighwaySteps, SurfaceGravel}, u.Attributes())
	assert.Equal(t, osm.Tags{{Key: "highway", Value: "path"}, {Key: "highway", Value: "steps"}, {Key: "surface", Value: "gravel"}}, u.Tags())
}

func TestParseAttribute(t *testing.T) {
	a, err := ParseAttribute("highway=steps")
	require.NoError(t, err)
	assert.Equal(t, HighwaySteps, a)

	a, err = ParseAttribute(" surface = sand ")
	require.NoError(t, err)
	assert.Equal(t, SurfaceSand, a)

	_, err = ParseAttribute("highway")
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	_, err = ParseAttribute("highway=motorway")
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}
