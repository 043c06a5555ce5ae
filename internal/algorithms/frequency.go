// Frequency domain filtering with circular low-pass and high-pass masks
package algorithms

import (
	"math"
	"strings"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

// FilterMode selects which side of the circular mask is kept
type FilterMode int

const (
	LowPass FilterMode = iota
	HighPass
)

func (m FilterMode) String() string {
	switch m {
	case LowPass:
		return "low_pass"
	case HighPass:
		return "high_pass"
	}
	return "unknown"
}

// ParseFilterMode accepts "low_pass", "high_pass" and the UI labels
// ("Low Pass (Blur)", "High Pass (Sharpen)").
func ParseFilterMode(s string) (FilterMode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(key, "("); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	switch strings.NewReplacer(" ", "_", "-", "_").Replace(key) {
	case "low_pass", "lowpass", "low":
		return LowPass, nil
	case "high_pass", "highpass", "high":
		return HighPass, nil
	}
	return 0, core.InvalidParameterf("unknown frequency filter mode: %q", s)
}

// flatRange is the spread below which a filtered plane is treated as
// constant and emitted without rescaling.
const flatRange = 1e-6

func validateRadius(radius int) error {
	if radius < 1 {
		return core.InvalidParameterf("radius must be >= 1, got %d", radius)
	}
	return nil
}

// ApplyFFT filters every channel in the frequency domain. The spectrum is
// centered, samples with dx²+dy² <= radius² are kept (LowPass) or removed
// (HighPass), and the real part of the inverse transform is min-max rescaled
// to [0,255] channel by channel. A channel whose result is constant is
// emitted as is.
func ApplyFFT(img *core.PixelBuffer, mode FilterMode, radius int) (*core.PixelBuffer, error) {
	return applyFFT(img, mode, radius, defaultWorkers())
}

func applyFFT(img *core.PixelBuffer, mode FilterMode, radius, workers int) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("apply_fft", err)
	}
	if mode != LowPass && mode != HighPass {
		return nil, core.WrapOp("apply_fft", core.InvalidParameterf("unknown frequency filter mode: %d", int(mode)))
	}
	if err := validateRadius(radius); err != nil {
		return nil, core.WrapOp("apply_fft", err)
	}

	w, h, ch := img.Width(), img.Height(), img.Channels()
	out := make([]uint8, w*h*ch)
	for c := 0; c < ch; c++ {
		filtered := rescaleToUint8(filterChannel(img.Channel(c), w, h, mode, radius, workers))
		for i, v := range filtered {
			out[i*ch+c] = v
		}
	}
	return core.Wrap(w, h, ch, out), nil
}

// filterChannel returns the real-valued result of masking one plane.
func filterChannel(samples []float64, w, h int, mode FilterMode, radius, workers int) []float64 {
	plane := newPlaneFromReal(samples, w, h)
	plane.forward(workers)

	centered := plane.shifted()
	applyCircularMask(centered, mode, radius)

	restored := centered.unshifted()
	restored.inverse(workers)
	return restored.realPart()
}

// applyCircularMask zeroes the rejected side of a circle of radius around
// the center of a shifted spectrum.
func applyCircularMask(p *frequencyPlane, mode FilterMode, radius int) {
	cx, cy := p.width/2, p.height/2
	r2 := radius * radius
	for y := 0; y < p.height; y++ {
		dy := y - cy
		for x := 0; x < p.width; x++ {
			dx := x - cx
			inside := dx*dx+dy*dy <= r2
			if inside != (mode == LowPass) {
				p.data[y*p.width+x] = 0
			}
		}
	}
}

// rescaleToUint8 maps [min,max] linearly onto [0,255].
func rescaleToUint8(values []float64) []uint8 {
	out := make([]uint8, len(values))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if hi-lo < flatRange {
		for i, v := range values {
			out[i] = core.ClampUint8(v)
		}
		return out
	}

	scale := 255 / (hi - lo)
	for i, v := range values {
		out[i] = core.ClampUint8((v - lo) * scale)
	}
	return out
}

// MagnitudeSpectrum renders log(1+|F|) of the centered spectrum of the luma
// plane as a single-channel 8-bit image.
func MagnitudeSpectrum(img *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("spectrum", err)
	}

	w, h := img.Width(), img.Height()
	luma, err := conversion.LumaPlane(img)
	if err != nil {
		return nil, core.WrapOp("spectrum", err)
	}
	plane := newPlaneFromReal(luma, w, h)
	plane.forward(defaultWorkers())
	centered := plane.shifted()

	values := make([]float64, len(centered.data))
	for i, v := range centered.data {
		values[i] = math.Log1p(math.Hypot(real(v), imag(v)))
	}
	return core.Wrap(w, h, 1, rescaleToUint8(values)), nil
}

// FrequencyAlgorithm exposes ApplyFFT through the registry
type FrequencyAlgorithm struct{}

// NewFrequencyAlgorithm creates the registry adapter for ApplyFFT
func NewFrequencyAlgorithm() *FrequencyAlgorithm {
	return &FrequencyAlgorithm{}
}

func (f *FrequencyAlgorithm) Apply(input *core.PixelBuffer, params map[string]interface{}) (*core.PixelBuffer, error) {
	mode, radius, err := f.parse(params)
	if err != nil {
		return nil, core.WrapOp("apply_fft", err)
	}
	return ApplyFFT(input, mode, radius)
}

func (f *FrequencyAlgorithm) parse(params map[string]interface{}) (FilterMode, int, error) {
	name, err := paramString(params, "mode", "low_pass")
	if err != nil {
		return 0, 0, err
	}
	mode, err := ParseFilterMode(name)
	if err != nil {
		return 0, 0, err
	}
	radius, err := paramInt(params, "radius", 30)
	if err != nil {
		return 0, 0, err
	}
	return mode, radius, nil
}

func (f *FrequencyAlgorithm) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"mode":   "low_pass",
		"radius": 30.0,
	}
}

func (f *FrequencyAlgorithm) GetName() string {
	return "FFT Filter"
}

func (f *FrequencyAlgorithm) GetDescription() string {
	return "Circular low-pass or high-pass mask on the centered spectrum"
}

func (f *FrequencyAlgorithm) Validate(params map[string]interface{}) error {
	_, radius, err := f.parse(params)
	if err != nil {
		return err
	}
	return validateRadius(radius)
}

func (f *FrequencyAlgorithm) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "mode",
			Type:        "enum",
			Default:     "low_pass",
			Description: "Which side of the mask to keep",
			Options:     []string{"low_pass", "high_pass"},
		},
		{
			Name:        "radius",
			Type:        "int",
			Min:         1.0,
			Default:     30.0,
			Description: "Mask radius in frequency samples",
		},
	}
}

// SpectrumAlgorithm exposes MagnitudeSpectrum through the registry
type SpectrumAlgorithm struct{}

func NewSpectrumAlgorithm() *SpectrumAlgorithm {
	return &SpectrumAlgorithm{}
}

func (s *SpectrumAlgorithm) Apply(input *core.PixelBuffer, _ map[string]interface{}) (*core.PixelBuffer, error) {
	return MagnitudeSpectrum(input)
}

func (s *SpectrumAlgorithm) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (s *SpectrumAlgorithm) GetName() string { return "Magnitude Spectrum" }

func (s *SpectrumAlgorithm) GetDescription() string {
	return "Log magnitude of the centered Fourier spectrum"
}

func (s *SpectrumAlgorithm) Validate(map[string]interface{}) error { return nil }

func (s *SpectrumAlgorithm) GetParameterInfo() []ParameterInfo { return nil }
