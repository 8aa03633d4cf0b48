package render

import (
	"math"
	"testing"

	"evdock-sim/algorithms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRejectsDegenerateSurface(t *testing.T) {
	cases := []Viewport{
		{Width: 0, Height: 100},
		{Width: 100, Height: -1},
		{Width: math.NaN(), Height: 100},
		{Width: math.Inf(1), Height: 100},
	}
	for _, vp := range cases {
		_, ok := vp.Fit(520, 320)
		assert.False(t, ok, "%+v", vp)
	}

	_, ok := Viewport{Width: 100, Height: 100}.Fit(0, 320)
	assert.False(t, ok)
}

func TestFitKeepsAspectAndCenters(t *testing.T) {
	tr, ok := Viewport{Width: 1040, Height: 1000}.Fit(520, 320)
	require.True(t, ok)

	assert.InDelta(t, 2, tr.Scale, 1e-9)
	assert.InDelta(t, 0, tr.OffsetX, 1e-9)
	assert.InDelta(t, (1000-640)/2.0, tr.OffsetY, 1e-9)
	assert.Equal(t, 1040, tr.PixelW)
	assert.Equal(t, 1000, tr.PixelH)
}

func TestFitAppliesDevicePixelRatio(t *testing.T) {
	tr, ok := Viewport{Width: 520, Height: 320, DPR: 2}.Fit(520, 320)
	require.True(t, ok)
	assert.InDelta(t, 2, tr.Scale, 1e-9)
	assert.Equal(t, 1040, tr.PixelW)

	// DPR 이 0 이면 1 로 본다
	tr, ok = Viewport{Width: 520, Height: 320}.Fit(520, 320)
	require.True(t, ok)
	assert.InDelta(t, 1, tr.Scale, 1e-9)
}

func TestTransformRoundTrip(t *testing.T) {
	tr, ok := Viewport{Width: 800, Height: 600, DPR: 1.5}.Fit(520, 320)
	require.True(t, ok)

	p := algorithms.V2(123.5, 77.25)
	back := tr.Invert(tr.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	assert.Equal(t, algorithms.Vec2{}, Transform{}.Invert(p))
}
