package algorithms

import (
	"image-processing-engine/internal/core"
)

// Levels is the number of 8-bit intensity levels.
const Levels = 256

// Histogram holds one 256-entry table per channel, in buffer channel order
// (B, G, R for color images). It is used for both counts and cumulative sums.
type Histogram [][Levels]int

// Channels returns the number of per-channel tables.
func (h Histogram) Channels() int { return len(h) }

// Total returns the sum of channel c. For a histogram this is the pixel
// count, which is also the last entry of its CDF.
func (h Histogram) Total(c int) int {
	var sum int
	for _, v := range h[c] {
		sum += v
	}
	return sum
}

// CalculateHistogram counts the samples at each intensity, per channel.
func CalculateHistogram(img *core.PixelBuffer) (Histogram, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("calculate_histogram", err)
	}
	return histogramOf(img), nil
}

func histogramOf(img *core.PixelBuffer) Histogram {
	ch := img.Channels()
	hist := make(Histogram, ch)
	for i, v := range img.Pix() {
		hist[i%ch][v]++
	}
	return hist
}

// CalculateCDF returns the running sum of the histogram per channel, so
// cdf[c][255] equals the pixel count.
func CalculateCDF(img *core.PixelBuffer) (Histogram, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("calculate_cdf", err)
	}
	return Cumulative(histogramOf(img)), nil
}

// Cumulative converts counts into non-decreasing cumulative sums.
func Cumulative(hist Histogram) Histogram {
	cdf := make(Histogram, len(hist))
	for c := range hist {
		running := 0
		for v := 0; v < Levels; v++ {
			running += hist[c][v]
			cdf[c][v] = running
		}
	}
	return cdf
}
