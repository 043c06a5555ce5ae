package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processing-engine/internal/core"
)

func TestCreateHybrid_SelfReconstructs(t *testing.T) {
	for _, channels := range []int{1, 3} {
		img := randomBuffer(t, 19, 14, channels, 17)

		out, err := CreateHybrid(img, img, 5, 5)
		require.NoError(t, err)
		require.True(t, out.SameShape(img))
		for i, v := range out.Pix() {
			assert.InDelta(t, int(img.Pix()[i]), int(v), 1, "sample %d", i)
		}
	}
}

func TestCreateHybrid_MixesBands(t *testing.T) {
	a := constantBuffer(t, 16, 16, 1, 90)
	b := squareBuffer(t, 16, 4, 12)

	out, err := CreateHybrid(a, b, 3, 3)
	require.NoError(t, err)

	// The low band of a flat image is the flat value; b only adds zero-mean detail.
	var sum int
	for _, v := range out.Pix() {
		sum += int(v)
	}
	assert.InDelta(t, 90, float64(sum)/256, 20)
	assert.False(t, out.Equal(a))
}

func TestCreateHybrid_ShapeMismatch(t *testing.T) {
	a := randomBuffer(t, 8, 8, 1, 1)

	_, err := CreateHybrid(a, randomBuffer(t, 8, 9, 1, 2), 3, 3)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	_, err = CreateHybrid(a, randomBuffer(t, 8, 8, 3, 2), 3, 3)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestCreateHybrid_InvalidRadius(t *testing.T) {
	a := randomBuffer(t, 8, 8, 1, 1)

	_, err := CreateHybrid(a, a, 0, 3)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	_, err = CreateHybrid(a, a, 3, -2)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
