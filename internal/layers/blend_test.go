package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processing-engine/internal/core"
)

func pair(t *testing.T, a, b uint8) (*core.PixelBuffer, *core.PixelBuffer) {
	t.Helper()
	base, err := core.NewPixelBuffer(1, 1, 1, []uint8{a})
	require.NoError(t, err)
	over, err := core.NewPixelBuffer(1, 1, 1, []uint8{b})
	require.NoError(t, err)
	return base, over
}

func TestBlend_Modes(t *testing.T) {
	tests := []struct {
		mode    BlendMode
		a, b    uint8
		opacity float64
		want    uint8
	}{
		{BlendNormal, 100, 200, 1, 200},
		{BlendNormal, 100, 200, 0.5, 150},
		{BlendNormal, 100, 200, 0, 100},
		{BlendMultiply, 255, 128, 1, 128},
		{BlendMultiply, 0, 200, 1, 0},
		{BlendScreen, 0, 128, 1, 128},
		{BlendScreen, 255, 10, 1, 255},
		{BlendOverlay, 0, 200, 1, 0},
		{BlendOverlay, 255, 10, 1, 255},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			base, over := pair(t, tt.a, tt.b)
			out, err := Blend(base, over, tt.mode, tt.opacity, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.At(0, 0, 0))
		})
	}
}

func TestBlend_Errors(t *testing.T) {
	base, over := pair(t, 1, 2)
	_, err := Blend(base, over, BlendNormal, 2, nil)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = Blend(base, over, BlendNormal, 1, []bool{true, false})
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	wide, err := core.NewBlank(2, 1, 1)
	require.NoError(t, err)
	_, err = Blend(base, wide, BlendNormal, 1, nil)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestParseBlendMode(t *testing.T) {
	for in, want := range map[string]BlendMode{"": BlendNormal, "Screen": BlendScreen, "overlay": BlendOverlay, "multiply": BlendMultiply} {
		got, err := ParseBlendMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseBlendMode("dissolve")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestExpandChannels(t *testing.T) {
	gray, err := core.NewPixelBuffer(2, 1, 1, []uint8{7, 9})
	require.NoError(t, err)

	color, err := ExpandChannels(gray, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint8{7, 7, 7, 9, 9, 9}, color.Samples())

	same, err := ExpandChannels(color, 3)
	require.NoError(t, err)
	assert.Same(t, color, same)
}

func TestBlend_MaskAndChannelExpansion(t *testing.T) {
	base, err := core.NewPixelBuffer(2, 1, 1, []uint8{40, 40})
	require.NoError(t, err)
	over, err := core.NewPixelBuffer(2, 1, 3, []uint8{200, 100, 0, 200, 100, 0})
	require.NoError(t, err)

	out, err := Blend(base, over, BlendNormal, 1, []bool{false, true})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Channels())
	assert.Equal(t, []uint8{40, 40, 40, 200, 100, 0}, out.Samples())
}

func TestBlend_OverlaySplitsOnBase(t *testing.T) {
	// dark base: 2ab, light base: 1-2(1-a)(1-b)
	base, err := core.NewPixelBuffer(2, 1, 1, []uint8{51, 204})
	require.NoError(t, err)
	over, err := core.NewPixelBuffer(2, 1, 1, []uint8{102, 102})
	require.NoError(t, err)

	out, err := Blend(base, over, BlendOverlay, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint8{41, 194}, out.Samples())
}
