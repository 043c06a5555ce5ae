package algorithms

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"image-processing-engine/internal/core"
)

func mustBuffer(t *testing.T, width, height, channels int, samples []uint8) *core.PixelBuffer {
	t.Helper()
	buf, err := core.NewPixelBuffer(width, height, channels, samples)
	require.NoError(t, err)
	return buf
}

func constantBuffer(t *testing.T, width, height, channels int, value uint8) *core.PixelBuffer {
	t.Helper()
	samples := make([]uint8, width*height*channels)
	for i := range samples {
		samples[i] = value
	}
	return mustBuffer(t, width, height, channels, samples)
}

func randomBuffer(t *testing.T, width, height, channels int, seed uint64) *core.PixelBuffer {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, 7))
	samples := make([]uint8, width*height*channels)
	for i := range samples {
		samples[i] = uint8(rng.IntN(256))
	}
	return mustBuffer(t, width, height, channels, samples)
}

// stepBuffer is a grayscale image that is 0 left of column edge and 255 from it.
func stepBuffer(t *testing.T, width, height, edge int) *core.PixelBuffer {
	t.Helper()
	samples := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := edge; x < width; x++ {
			samples[y*width+x] = 255
		}
	}
	return mustBuffer(t, width, height, 1, samples)
}

// squareBuffer draws a filled bright square on a dark background.
func squareBuffer(t *testing.T, size, from, to int) *core.PixelBuffer {
	t.Helper()
	samples := make([]uint8, size*size)
	for y := from; y < to; y++ {
		for x := from; x < to; x++ {
			samples[y*size+x] = 255
		}
	}
	return mustBuffer(t, size, size, 1, samples)
}
