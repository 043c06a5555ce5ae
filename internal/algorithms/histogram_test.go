package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processing-engine/internal/core"
)

func TestCalculateHistogram_TwoLevels(t *testing.T) {
	samples := make([]uint8, 64)
	for i := 32; i < 64; i++ {
		samples[i] = 255
	}
	img := mustBuffer(t, 8, 8, 1, samples)

	hist, err := CalculateHistogram(img)
	require.NoError(t, err)
	require.Equal(t, 1, hist.Channels())

	var want [Levels]int
	want[0], want[255] = 32, 32
	assert.Equal(t, want, hist[0])
}

func TestCalculateHistogram_ColorChannelOrder(t *testing.T) {
	img := mustBuffer(t, 2, 1, 3, []uint8{10, 20, 30, 10, 40, 30})

	hist, err := CalculateHistogram(img)
	require.NoError(t, err)
	require.Equal(t, 3, hist.Channels())
	assert.Equal(t, 2, hist[0][10])
	assert.Equal(t, 1, hist[1][20])
	assert.Equal(t, 1, hist[1][40])
	assert.Equal(t, 2, hist[2][30])
}

func TestCalculateCDF_EndsAtPixelCount(t *testing.T) {
	for _, channels := range []int{1, 3} {
		img := randomBuffer(t, 17, 11, channels, 6)

		cdf, err := CalculateCDF(img)
		require.NoError(t, err)
		require.Equal(t, channels, cdf.Channels())
		for c := 0; c < channels; c++ {
			assert.Equal(t, 17*11, cdf[c][Levels-1])
			for v := 1; v < Levels; v++ {
				assert.GreaterOrEqual(t, cdf[c][v], cdf[c][v-1])
			}
		}
	}
}

func TestCumulative_MatchesHistogramTotal(t *testing.T) {
	img := randomBuffer(t, 9, 9, 3, 1)
	hist, err := CalculateHistogram(img)
	require.NoError(t, err)

	cdf := Cumulative(hist)
	for c := 0; c < 3; c++ {
		assert.Equal(t, hist.Total(c), cdf[c][Levels-1])
	}
}

func TestCalculateHistogram_EmptyInput(t *testing.T) {
	_, err := CalculateHistogram(nil)
	assert.ErrorIs(t, err, core.ErrEmptyInput)
	_, err = CalculateCDF(nil)
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}
