package coords

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToENU_FMCWScenario(t *testing.T) {
	// spec.md §8 scenario 4: range=1000, az=45, el=10 → approx [696.4, 696.4, 173.6]
	p := ToENU(1000, 45, 10)
	assert.InDelta(t, 696.4, p.X, 1e-1)
	assert.InDelta(t, 696.4, p.Y, 1e-1)
	assert.InDelta(t, 173.6, p.Z, 1e-1)
}

func TestToENU_RangeInvariant(t *testing.T) {
	for _, tc := range []struct{ r, az, el float64 }{
		{100, 0, 0}, {500, 90, 45}, {1000, 270, -30}, {1, 359.9, -89},
	} {
		p := ToENU(tc.r, tc.az, tc.el)
		require.True(t, p.Finite())
		assert.InDelta(t, tc.r, p.Norm(), 1e-3*tc.r+1e-9)
	}
}

func TestFromENU_RoundTrip(t *testing.T) {
	for _, tc := range []struct{ r, az, el float64 }{
		{100, 30, 10}, {1, 0, 0}, {5000, 359, -45}, {250, 180, 89},
	} {
		p := ToENU(tc.r, tc.az, tc.el)
		r2, az2, el2 := FromENU(p)
		assert.InDelta(t, tc.r, r2, 1e-6*tc.r+1e-9)
		assert.InDelta(t, tc.az, az2, 1e-6)
		assert.InDelta(t, tc.el, el2, 1e-6)
	}
}

func TestRadialVelocityENU_Collinear(t *testing.T) {
	pos := ToENU(1000, 45, 10)
	vel := RadialVelocityENU(-15, 45, 10)
	// velocity must be collinear (parallel or anti-parallel) with position.
	cross := pos.X*vel.Y - pos.Y*vel.X
	assert.InDelta(t, 0, cross, 1e-6)
}

func TestClampElevation(t *testing.T) {
	assert.Equal(t, -90.0, ClampElevation(-120))
	assert.Equal(t, 90.0, ClampElevation(120))
	assert.Equal(t, 0.0, ClampElevation(0))
}

func TestClampRange(t *testing.T) {
	assert.Equal(t, 0.0, ClampRange(-5))
	assert.Equal(t, 5.0, ClampRange(5))
}

func TestWrapAzimuthViaToENU(t *testing.T) {
	a := ToENU(10, 0, 0)
	b := ToENU(10, 360, 0)
	assert.InDelta(t, a.X, b.X, 1e-9)
	assert.InDelta(t, a.Y, b.Y, 1e-9)
}

func TestFromENU_ZeroRange(t *testing.T) {
	r, _, el := FromENU(ENU{0, 0, 0})
	assert.Equal(t, 0.0, r)
	assert.False(t, math.IsNaN(el))
}
