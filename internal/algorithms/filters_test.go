package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processing-engine/internal/core"
)

func TestApplyFilter_MedianRemovesIsolatedPixel(t *testing.T) {
	img := mustBuffer(t, 3, 3, 1, []uint8{
		0, 0, 0,
		0, 255, 0,
		0, 0, 0,
	})

	out, err := ApplyFilter(img, FilterMedian, 3)
	require.NoError(t, err)
	assert.Equal(t, make([]uint8, 9), out.Samples())
}

func TestApplyFilter_EvenKernelRejected(t *testing.T) {
	img := randomBuffer(t, 5, 5, 3, 1)
	before := img.Samples()

	for _, size := range []int{4, 2, 1, 0, -3} {
		out, err := ApplyFilter(img, FilterAverage, size)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, core.ErrInvalidParameter, "size %d", size)
	}
	assert.Equal(t, before, img.Samples())
}

func TestApplyFilter_ReplicateBorder(t *testing.T) {
	// One row: the replicated neighbours of x=0 are {0, 0, 90} and of x=2 {90, 180, 180}.
	img := mustBuffer(t, 3, 1, 1, []uint8{0, 90, 180})

	out, err := ApplyFilter(img, FilterAverage, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint8{30, 90, 150}, out.Samples())

	med, err := ApplyFilter(img, FilterMedian, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 90, 180}, med.Samples())
}

func TestApplyFilter_PreservesShapeAndConstants(t *testing.T) {
	for _, kind := range []FilterType{FilterAverage, FilterGaussian, FilterMedian} {
		for _, channels := range []int{1, 3} {
			img := constantBuffer(t, 9, 6, channels, 77)

			out, err := ApplyFilter(img, kind, 5)
			require.NoError(t, err)
			assert.Equal(t, 9, out.Width())
			assert.Equal(t, 6, out.Height())
			assert.Equal(t, channels, out.Channels())
			assert.True(t, out.Equal(img), "%s on constant image", kind)
		}
	}
}

func TestApplyFilter_ChannelsIndependent(t *testing.T) {
	samples := make([]uint8, 4*4*3)
	for i := 0; i < len(samples); i += 3 {
		samples[i] = 200 // blue only
	}
	img := mustBuffer(t, 4, 4, 3, samples)

	out, err := ApplyFilter(img, FilterGaussian, 3)
	require.NoError(t, err)
	for i, v := range out.Pix() {
		if i%3 == 0 {
			assert.Equal(t, uint8(200), v)
		} else {
			assert.Zero(t, v)
		}
	}
}

func TestKernels_SumToOne(t *testing.T) {
	for _, size := range []int{3, 5, 7, 15} {
		assert.InDelta(t, 1.0, BoxKernel(size).Sum(), 1e-12)
	}
	assert.InDelta(t, 0.8, GaussianSigma(3), 1e-12)
	assert.InDelta(t, 1.1, GaussianSigma(5), 1e-12)
}

func TestApplyFilter_LargeKernelAccepted(t *testing.T) {
	img := constantBuffer(t, 12, 8, 3, 140)

	for _, size := range []int{101, 151} {
		require.NoError(t, ValidateKernelSize(size))
		for _, kind := range []FilterType{FilterAverage, FilterGaussian, FilterMedian} {
			out, err := ApplyFilter(img, kind, size)
			require.NoError(t, err, "%s with kernel %d", kind, size)
			assert.True(t, out.Equal(img), "%s with kernel %d", kind, size)
		}
	}
	assert.NoError(t, NewSpatialFilter().Validate(map[string]interface{}{"kernel_size": 101.0}))
}

func TestConvolveKernel_Malformed(t *testing.T) {
	img := randomBuffer(t, 4, 4, 1, 1)
	_, err := ConvolveKernel(img, Kernel{Size: 3, Weights: []float64{1}})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	identity := NewKernel([][]float64{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}})
	out, err := ConvolveKernel(img, identity)
	require.NoError(t, err)
	assert.True(t, out.Equal(img))
}

func TestConvolveKernel_EvenKernelAnchor(t *testing.T) {
	// The 2x2 window extends right and down, so the last column sees itself twice.
	img := mustBuffer(t, 3, 1, 1, []uint8{10, 20, 40})
	diff := NewKernel([][]float64{{-1, 1}, {0, 0}})

	out, err := ConvolveKernel(img, diff)
	require.NoError(t, err)
	assert.Equal(t, []uint8{10, 20, 0}, out.Samples())
}

func TestParseFilterType(t *testing.T) {
	for in, want := range map[string]FilterType{
		"Average Filter":  FilterAverage,
		"average":         FilterAverage,
		"Gaussian Filter": FilterGaussian,
		"Median":          FilterMedian,
	} {
		got, err := ParseFilterType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFilterType("bilateral")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
