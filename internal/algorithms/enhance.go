// Contrast enhancement: grayscale conversion, histogram equalization and min-max normalization
package algorithms

import (
	"math"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

// ToGrayscale converts a BGR image to its luma plane with OpenCV's BGR2GRAY
// weights. A grayscale input is copied unchanged, which makes the
// conversion idempotent.
func ToGrayscale(img *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("to_grayscale", err)
	}
	out, err := conversion.ToGrayscale(img)
	if err != nil {
		return nil, core.WrapOp("to_grayscale", err)
	}
	return out, nil
}

// Equalize remaps each channel through its CDF:
// v' = round((cdf[v]-cdf_min) / (total-cdf_min) * 255).
// A channel holding a single intensity is left unchanged.
func Equalize(img *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("equalize", err)
	}

	ch := img.Channels()
	total := img.PixelCount()
	cdf := Cumulative(histogramOf(img))

	luts := make([][Levels]uint8, ch)
	for c := 0; c < ch; c++ {
		cdfMin := firstNonZero(cdf[c])
		denom := total - cdfMin
		for v := 0; v < Levels; v++ {
			if denom == 0 {
				luts[c][v] = uint8(v)
				continue
			}
			luts[c][v] = core.ClampUint8(float64(cdf[c][v]-cdfMin) / float64(denom) * 255)
		}
	}
	return mapChannels(img, luts), nil
}

func firstNonZero(cdf [Levels]int) int {
	for _, v := range cdf {
		if v > 0 {
			return v
		}
	}
	return 0
}

// Normalize stretches each channel linearly so its minimum maps to 0 and its
// maximum to 255. A constant channel is left unchanged.
func Normalize(img *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("normalize", err)
	}

	ch := img.Channels()
	lo := make([]uint8, ch)
	hi := make([]uint8, ch)
	for c := range lo {
		lo[c] = 255
	}
	for i, v := range img.Pix() {
		c := i % ch
		lo[c] = min(lo[c], v)
		hi[c] = max(hi[c], v)
	}

	luts := make([][Levels]uint8, ch)
	for c := 0; c < ch; c++ {
		span := float64(hi[c]) - float64(lo[c])
		for v := 0; v < Levels; v++ {
			if span == 0 {
				luts[c][v] = uint8(v)
				continue
			}
			luts[c][v] = core.ClampUint8(math.Round((float64(v) - float64(lo[c])) * 255 / span))
		}
	}
	return mapChannels(img, luts), nil
}

func mapChannels(img *core.PixelBuffer, luts [][Levels]uint8) *core.PixelBuffer {
	ch := img.Channels()
	src := img.Pix()
	dst := make([]uint8, len(src))
	for i, v := range src {
		dst[i] = luts[i%ch][v]
	}
	return core.Wrap(img.Width(), img.Height(), ch, dst)
}

// EnhanceOp selects one of the parameterless enhancement operations
type EnhanceOp int

const (
	EnhanceGrayscale EnhanceOp = iota
	EnhanceEqualize
	EnhanceNormalize
)

// EnhanceAlgorithm exposes an enhancement operation through the registry
type EnhanceAlgorithm struct {
	op EnhanceOp
}

func NewEnhanceAlgorithm(op EnhanceOp) *EnhanceAlgorithm {
	return &EnhanceAlgorithm{op: op}
}

func (e *EnhanceAlgorithm) Apply(input *core.PixelBuffer, _ map[string]interface{}) (*core.PixelBuffer, error) {
	switch e.op {
	case EnhanceGrayscale:
		return ToGrayscale(input)
	case EnhanceEqualize:
		return Equalize(input)
	case EnhanceNormalize:
		return Normalize(input)
	}
	return nil, core.InvalidParameterf("unknown enhancement: %d", int(e.op))
}

func (e *EnhanceAlgorithm) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (e *EnhanceAlgorithm) GetName() string {
	switch e.op {
	case EnhanceGrayscale:
		return "Grayscale"
	case EnhanceEqualize:
		return "Histogram Equalization"
	}
	return "Normalization"
}

func (e *EnhanceAlgorithm) GetDescription() string {
	switch e.op {
	case EnhanceGrayscale:
		return "Luma conversion of a BGR image"
	case EnhanceEqualize:
		return "Per-channel CDF remapping"
	}
	return "Per-channel min-max contrast stretch"
}

func (e *EnhanceAlgorithm) Validate(map[string]interface{}) error { return nil }

func (e *EnhanceAlgorithm) GetParameterInfo() []ParameterInfo { return nil }
