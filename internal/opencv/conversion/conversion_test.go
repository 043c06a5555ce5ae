package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
)

func pattern(t *testing.T, width, height, channels int) *core.PixelBuffer {
	t.Helper()
	samples := make([]uint8, width*height*channels)
	for i := range samples {
		samples[i] = uint8(i * 3)
	}
	buf, err := core.NewPixelBuffer(width, height, channels, samples)
	require.NoError(t, err)
	return buf
}

func TestMatRoundTrip(t *testing.T) {
	for _, channels := range []int{1, 3} {
		buf := pattern(t, 7, 5, channels)

		mat, err := MatFromBuffer(buf)
		require.NoError(t, err)
		assert.Equal(t, MatType(channels), mat.Type())
		back, err := BufferFromMat(mat)
		mat.Close()
		require.NoError(t, err)
		assert.True(t, back.Equal(buf))
	}
}

func TestBufferFromMat_Errors(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	_, err := BufferFromMat(empty)
	assert.ErrorIs(t, err, core.ErrEmptyInput)

	f32 := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32F)
	defer f32.Close()
	_, err = BufferFromMat(f32)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = MatFromBuffer(nil)
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestToGrayscale(t *testing.T) {
	// pure blue, green, red and white
	buf, err := core.NewPixelBuffer(4, 1, 3, []uint8{255, 0, 0, 0, 255, 0, 0, 0, 255, 255, 255, 255})
	require.NoError(t, err)

	gray, err := ToGrayscale(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, gray.Channels())
	assert.Equal(t, []uint8{29, 150, 76, 255}, gray.Pix())

	again, err := ToGrayscale(gray)
	require.NoError(t, err)
	assert.True(t, again.Equal(gray))

	plane, err := LumaPlane(buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{29, 150, 76, 255}, plane)
}

func TestPlaneAndKernelMat(t *testing.T) {
	k, err := KernelMat([]float64{0, 1, 0, 1, -4, 1, 0, 1, 0}, 3)
	require.NoError(t, err)
	defer k.Close()
	assert.Equal(t, []float64{0, 1, 0, 1, -4, 1, 0, 1, 0}, PlaneFromMat(k))

	_, err = KernelMat([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	mat, err := MatFromBuffer(pattern(t, 3, 2, 1))
	require.NoError(t, err)
	defer mat.Close()
	assert.Equal(t, []float64{0, 3, 6, 9, 12, 15}, PlaneFromMat(mat))
}

func TestApply(t *testing.T) {
	buf := pattern(t, 4, 4, 3)
	out, err := Apply(buf, func(src gocv.Mat, dst *gocv.Mat) error {
		src.CopyTo(dst)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, out.Equal(buf))
}
