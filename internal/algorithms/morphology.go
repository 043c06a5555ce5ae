// Morphological operations algorithms
package algorithms

import (
	"image"

	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

const (
	maxMorphKernel     = 15
	maxMorphIterations = 10
)

// MorphOp selects a morphological operation
type MorphOp int

const (
	MorphErode MorphOp = iota
	MorphDilate
	MorphOpen
	MorphClose
)

func (m MorphOp) String() string {
	switch m {
	case MorphErode:
		return "erode"
	case MorphDilate:
		return "dilate"
	case MorphOpen:
		return "open"
	case MorphClose:
		return "close"
	}
	return "unknown"
}

func validateMorphology(kernelSize, iterations int) error {
	if kernelSize < 3 || kernelSize > maxMorphKernel || kernelSize%2 == 0 {
		return core.InvalidParameterf("kernel_size must be odd and between 3 and %d, got %d", maxMorphKernel, kernelSize)
	}
	if iterations < 1 || iterations > maxMorphIterations {
		return core.InvalidParameterf("iterations must be between 1 and %d, got %d", maxMorphIterations, iterations)
	}
	return nil
}

// Morphology applies op with a square structuring element, channel by
// channel. Open is erosion followed by dilation, Close the reverse; each
// stage runs the given number of iterations. Pixels outside the image never
// win the min or max, which matches replicating the border.
func Morphology(img *core.PixelBuffer, op MorphOp, kernelSize, iterations int) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp(op.String(), err)
	}
	if err := validateMorphology(kernelSize, iterations); err != nil {
		return nil, core.WrapOp(op.String(), err)
	}

	var stages []bool // true = erode
	switch op {
	case MorphErode:
		stages = []bool{true}
	case MorphDilate:
		stages = []bool{false}
	case MorphOpen:
		stages = []bool{true, false}
	case MorphClose:
		stages = []bool{false, true}
	default:
		return nil, core.InvalidParameterf("unknown morphological operation: %d", int(op))
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kernelSize, kernelSize))
	defer kernel.Close()

	out, err := conversion.Apply(img, func(src gocv.Mat, dst *gocv.Mat) error {
		if len(stages) == 2 && iterations == 1 {
			return gocv.MorphologyEx(src, dst, morphType(op), kernel)
		}

		src.CopyTo(dst)
		temp := gocv.NewMat()
		defer temp.Close()
		for _, erode := range stages {
			for i := 0; i < iterations; i++ {
				if erode {
					gocv.Erode(*dst, &temp, kernel)
				} else {
					gocv.Dilate(*dst, &temp, kernel)
				}
				temp.CopyTo(dst)
			}
		}
		return nil
	})
	if err != nil {
		return nil, core.WrapOp(op.String(), err)
	}
	return out, nil
}

func morphType(op MorphOp) gocv.MorphType {
	if op == MorphClose {
		return gocv.MorphClose
	}
	return gocv.MorphOpen
}

// MorphologyAlgorithm exposes one morphological operation through the registry
type MorphologyAlgorithm struct {
	op MorphOp
}

func NewMorphologyAlgorithm(op MorphOp) *MorphologyAlgorithm {
	return &MorphologyAlgorithm{op: op}
}

func (m *MorphologyAlgorithm) Apply(input *core.PixelBuffer, params map[string]interface{}) (*core.PixelBuffer, error) {
	size, iterations, err := m.parse(params)
	if err != nil {
		return nil, core.WrapOp(m.op.String(), err)
	}
	return Morphology(input, m.op, size, iterations)
}

func (m *MorphologyAlgorithm) parse(params map[string]interface{}) (int, int, error) {
	size, err := paramInt(params, "kernel_size", 3)
	if err != nil {
		return 0, 0, err
	}
	iterations, err := paramInt(params, "iterations", 1)
	if err != nil {
		return 0, 0, err
	}
	return size, iterations, nil
}

func (m *MorphologyAlgorithm) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel_size": 3.0,
		"iterations":  1.0,
	}
}

func (m *MorphologyAlgorithm) GetName() string {
	switch m.op {
	case MorphErode:
		return "Erosion"
	case MorphDilate:
		return "Dilation"
	case MorphOpen:
		return "Opening"
	}
	return "Closing"
}

func (m *MorphologyAlgorithm) GetDescription() string {
	switch m.op {
	case MorphErode:
		return "Morphological erosion to remove small bright noise"
	case MorphDilate:
		return "Morphological dilation to fill small dark gaps"
	case MorphOpen:
		return "Erosion followed by dilation"
	}
	return "Dilation followed by erosion"
}

func (m *MorphologyAlgorithm) Validate(params map[string]interface{}) error {
	size, iterations, err := m.parse(params)
	if err != nil {
		return err
	}
	return validateMorphology(size, iterations)
}

func (m *MorphologyAlgorithm) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "kernel_size",
			Type:        "int",
			Min:         3.0,
			Max:         float64(maxMorphKernel),
			Default:     3.0,
			Description: "Size of the square structuring element (odd)",
		},
		{
			Name:        "iterations",
			Type:        "int",
			Min:         1.0,
			Max:         float64(maxMorphIterations),
			Default:     1.0,
			Description: "Number of passes per stage",
		},
	}
}
