package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeymouthFlow(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   float64
		length   float64
		diameter float64
		positive bool
	}{
		{name: "normal drop", p1: 900, p2: 700, length: 50, diameter: 36, positive: true},
		{name: "no pressure difference", p1: 800, p2: 800, length: 50, diameter: 36, positive: false},
		{name: "reverse difference", p1: 700, p2: 900, length: 50, diameter: 36, positive: false},
		{name: "zero length", p1: 900, p2: 700, length: 0, diameter: 36, positive: false},
		{name: "zero diameter", p1: 900, p2: 700, length: 50, diameter: 0, positive: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := WeymouthFlow(tt.p1, tt.p2, tt.length, tt.diameter)
			if tt.positive {
				assert.Greater(t, q, 0.0)
			} else {
				assert.Zero(t, q)
			}
		})
	}
}

func TestWeymouthFlow_ScalesWithDiameter(t *testing.T) {
	small := WeymouthFlow(900, 700, 50, 20)
	large := WeymouthFlow(900, 700, 50, 36)
	require.Greater(t, large, small, "larger diameter must carry more gas")
}

func TestPanhandleAFlow_ComparableToWeymouth(t *testing.T) {
	w := WeymouthFlow(900, 700, 50, 36)
	p := PanhandleAFlow(900, 700, 50, 36)
	require.Greater(t, p, 0.0)
	// The two correlations agree within an order of magnitude.
	ratio := p / w
	assert.Greater(t, ratio, 0.1)
	assert.Less(t, ratio, 10.0)
}

func TestPressureDropSquared_SignedForm(t *testing.T) {
	k := 1e-6
	forward := PressureDropSquared(k, 500)
	reverse := PressureDropSquared(k, -500)
	assert.InDelta(t, 0.25, forward, 1e-9)
	assert.InDelta(t, -0.25, reverse, 1e-9)
}

func TestDownstreamPressure(t *testing.T) {
	// drop = k*f^2 = 1e-4 * 1e4 = 1 -> sqrt(810000-1)
	p := DownstreamPressure(900, 1e-4, 100)
	assert.InDelta(t, math.Sqrt(900*900-1), p, 1e-9)

	// Drop exceeding the head clamps at zero.
	assert.Zero(t, DownstreamPressure(10, 1, 100))
}

func TestZFactor(t *testing.T) {
	z := ZFactor(800, 530)
	assert.Greater(t, z, 0.2)
	assert.Less(t, z, 1.2)

	// Higher pressure compresses more: z decreases.
	assert.Less(t, ZFactor(1200, 530), ZFactor(400, 530))

	// Degenerate inputs return the ideal-gas value.
	assert.Equal(t, 1.0, ZFactor(0, 530))
	assert.Equal(t, 1.0, ZFactor(800, 0))
}

func TestFrictionFactor(t *testing.T) {
	f := FrictionFactor(24)
	assert.Greater(t, f, 0.005)
	assert.Less(t, f, 0.05)

	// Larger pipes are smoother relative to roughness.
	assert.Less(t, FrictionFactor(36), FrictionFactor(12))
}
