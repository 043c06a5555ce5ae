// Gradient edge detectors: Sobel, Prewitt, Roberts and Canny
package algorithms

import (
	"math"
	"strings"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

// EdgeOperator selects an edge detector. Every detector works on the luma
// plane and returns a single-channel image.
type EdgeOperator int

const (
	EdgeSobel EdgeOperator = iota
	EdgeRoberts
	EdgePrewitt
	EdgeCanny
)

func (e EdgeOperator) String() string {
	switch e {
	case EdgeSobel:
		return "sobel"
	case EdgeRoberts:
		return "roberts"
	case EdgePrewitt:
		return "prewitt"
	case EdgeCanny:
		return "canny"
	}
	return "unknown"
}

// ParseEdgeOperator accepts operator names case-insensitively.
func ParseEdgeOperator(s string) (EdgeOperator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sobel":
		return EdgeSobel, nil
	case "roberts":
		return EdgeRoberts, nil
	case "prewitt":
		return EdgePrewitt, nil
	case "canny":
		return EdgeCanny, nil
	}
	return 0, core.InvalidParameterf("unknown edge operator: %q", s)
}

// Sobel returns the saturated Sobel gradient magnitude.
func Sobel(img *core.PixelBuffer) (*core.PixelBuffer, error) {
	return gradientEdges("sobel", img, sobelX, sobelY, defaultWorkers())
}

// Prewitt returns the saturated Prewitt gradient magnitude.
func Prewitt(img *core.PixelBuffer) (*core.PixelBuffer, error) {
	return gradientEdges("prewitt", img, prewittX, prewittY, defaultWorkers())
}

// Roberts returns the saturated Roberts cross gradient magnitude. The 2x2
// window extends right and down from each pixel.
func Roberts(img *core.PixelBuffer) (*core.PixelBuffer, error) {
	return gradientEdges("roberts", img, robertsX, robertsY, defaultWorkers())
}

// DetectEdges dispatches to the fixed-kernel detectors, and to Canny with
// CannyDefaultLow and CannyDefaultHigh.
func DetectEdges(img *core.PixelBuffer, op EdgeOperator) (*core.PixelBuffer, error) {
	switch op {
	case EdgeSobel:
		return Sobel(img)
	case EdgeRoberts:
		return Roberts(img)
	case EdgePrewitt:
		return Prewitt(img)
	case EdgeCanny:
		return Canny(img, CannyDefaultLow, CannyDefaultHigh)
	}
	return nil, core.WrapOp("detect_edges", core.InvalidParameterf("unknown edge operator: %d", int(op)))
}

func gradientEdges(op string, img *core.PixelBuffer, kx, ky Kernel, workers int) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp(op, err)
	}

	w, h := img.Width(), img.Height()
	gray, err := conversion.LumaPlane(img)
	if err != nil {
		return nil, core.WrapOp(op, err)
	}
	gx := convolvePlane(gray, w, h, kx, workers)
	gy := convolvePlane(gray, w, h, ky, workers)

	out := make([]uint8, w*h)
	for i := range out {
		out[i] = core.ClampUint8(math.Hypot(gx[i], gy[i]))
	}
	return core.Wrap(w, h, 1, out), nil
}

// EdgeAlgorithm exposes one edge operator through the registry
type EdgeAlgorithm struct {
	op EdgeOperator
}

// NewEdgeAlgorithm creates the registry adapter for op
func NewEdgeAlgorithm(op EdgeOperator) *EdgeAlgorithm {
	return &EdgeAlgorithm{op: op}
}

func (e *EdgeAlgorithm) Apply(input *core.PixelBuffer, params map[string]interface{}) (*core.PixelBuffer, error) {
	if e.op != EdgeCanny {
		return DetectEdges(input, e.op)
	}
	low, high, err := e.thresholds(params)
	if err != nil {
		return nil, core.WrapOp("canny", err)
	}
	return Canny(input, low, high)
}

func (e *EdgeAlgorithm) thresholds(params map[string]interface{}) (float64, float64, error) {
	low, err := paramFloat(params, "low", CannyDefaultLow)
	if err != nil {
		return 0, 0, err
	}
	high, err := paramFloat(params, "high", CannyDefaultHigh)
	if err != nil {
		return 0, 0, err
	}
	return low, high, nil
}

func (e *EdgeAlgorithm) GetDefaultParams() map[string]interface{} {
	if e.op != EdgeCanny {
		return map[string]interface{}{}
	}
	return map[string]interface{}{
		"low":  CannyDefaultLow,
		"high": CannyDefaultHigh,
	}
}

func (e *EdgeAlgorithm) GetName() string {
	switch e.op {
	case EdgeSobel:
		return "Sobel"
	case EdgeRoberts:
		return "Roberts"
	case EdgePrewitt:
		return "Prewitt"
	}
	return "Canny"
}

func (e *EdgeAlgorithm) GetDescription() string {
	if e.op == EdgeCanny {
		return "Binary edge map with non-maximum suppression and hysteresis"
	}
	return "Gradient magnitude of the " + e.GetName() + " operator"
}

func (e *EdgeAlgorithm) Validate(params map[string]interface{}) error {
	if e.op != EdgeCanny {
		return nil
	}
	low, high, err := e.thresholds(params)
	if err != nil {
		return err
	}
	return validateThresholds(low, high)
}

func (e *EdgeAlgorithm) GetParameterInfo() []ParameterInfo {
	if e.op != EdgeCanny {
		return nil
	}
	return []ParameterInfo{
		{
			Name:        "low",
			Type:        "float",
			Min:         0.0,
			Default:     CannyDefaultLow,
			Description: "Weak edge threshold on gradient magnitude",
		},
		{
			Name:        "high",
			Type:        "float",
			Min:         0.0,
			Default:     CannyDefaultHigh,
			Description: "Strong edge threshold, must exceed low",
		},
	}
}
