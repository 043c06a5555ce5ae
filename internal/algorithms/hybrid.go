package algorithms

import (
	"image-processing-engine/internal/core"
)

// CreateHybrid combines the low frequencies of a (cutoff radiusA) with the
// high frequencies of b (cutoff radiusB), channel by channel. Both images
// must share width, height and channel count. The raw filtered planes are
// summed and saturated, so CreateHybrid(a, a, r, r) reproduces a up to
// rounding.
func CreateHybrid(a, b *core.PixelBuffer, radiusA, radiusB int) (*core.PixelBuffer, error) {
	return createHybrid(a, b, radiusA, radiusB, defaultWorkers())
}

func createHybrid(a, b *core.PixelBuffer, radiusA, radiusB, workers int) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(a); err != nil {
		return nil, core.WrapOp("create_hybrid", err)
	}
	if err := core.ValidateBuffer(b); err != nil {
		return nil, core.WrapOp("create_hybrid", err)
	}
	if !a.SameShape(b) {
		return nil, core.WrapOp("create_hybrid", core.DimensionMismatchf("%s vs %s", a, b))
	}
	if err := validateRadius(radiusA); err != nil {
		return nil, core.WrapOp("create_hybrid", err)
	}
	if err := validateRadius(radiusB); err != nil {
		return nil, core.WrapOp("create_hybrid", err)
	}

	w, h, ch := a.Width(), a.Height(), a.Channels()
	out := make([]uint8, w*h*ch)
	for c := 0; c < ch; c++ {
		low := filterChannel(a.Channel(c), w, h, LowPass, radiusA, workers)
		high := filterChannel(b.Channel(c), w, h, HighPass, radiusB, workers)
		for i := range low {
			out[i*ch+c] = core.ClampUint8(low[i] + high[i])
		}
	}
	return core.Wrap(w, h, ch, out), nil
}
