// Spatial filters for noise reduction: average, Gaussian and median
package algorithms

import (
	"image"
	"strings"

	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

// FilterType selects a spatial filter
type FilterType int

const (
	FilterAverage FilterType = iota
	FilterGaussian
	FilterMedian
)

func (f FilterType) String() string {
	switch f {
	case FilterAverage:
		return "average"
	case FilterGaussian:
		return "gaussian"
	case FilterMedian:
		return "median"
	}
	return "unknown"
}

// ParseFilterType accepts canonical names and the UI labels ("Average Filter").
func ParseFilterType(s string) (FilterType, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), " filter") {
	case "average", "box", "mean":
		return FilterAverage, nil
	case "gaussian":
		return FilterGaussian, nil
	case "median":
		return FilterMedian, nil
	}
	return 0, core.InvalidParameterf("unknown filter type: %q", s)
}

// ApplyFilter smooths every channel of img with a kernelSize x kernelSize
// filter. Borders replicate the outermost pixels, so output dimensions
// equal input dimensions.
func ApplyFilter(img *core.PixelBuffer, kind FilterType, kernelSize int) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("apply_filter", err)
	}
	if err := ValidateKernelSize(kernelSize); err != nil {
		return nil, core.WrapOp("apply_filter", err)
	}

	var run func(src gocv.Mat, dst *gocv.Mat) error
	switch kind {
	case FilterAverage:
		box, err := conversion.KernelMat(BoxKernel(kernelSize).Weights, kernelSize)
		if err != nil {
			return nil, core.WrapOp("apply_filter", err)
		}
		defer box.Close()
		run = func(src gocv.Mat, dst *gocv.Mat) error {
			return gocv.Filter2D(src, dst, -1, box, image.Pt(-1, -1), 0, gocv.BorderReplicate)
		}
	case FilterGaussian:
		sigma := GaussianSigma(kernelSize)
		run = func(src gocv.Mat, dst *gocv.Mat) error {
			return gocv.GaussianBlur(src, dst, image.Pt(kernelSize, kernelSize), sigma, sigma, gocv.BorderReplicate)
		}
	case FilterMedian:
		// medianBlur always replicates the border
		run = func(src gocv.Mat, dst *gocv.Mat) error {
			gocv.MedianBlur(src, dst, kernelSize)
			return nil
		}
	default:
		return nil, core.WrapOp("apply_filter", core.InvalidParameterf("unknown filter type: %d", int(kind)))
	}

	out, err := conversion.Apply(img, run)
	if err != nil {
		return nil, core.WrapOp("apply_filter", err)
	}
	return out, nil
}

// SpatialFilter exposes ApplyFilter through the registry
type SpatialFilter struct{}

// NewSpatialFilter creates the registry adapter for ApplyFilter
func NewSpatialFilter() *SpatialFilter {
	return &SpatialFilter{}
}

func (f *SpatialFilter) Apply(input *core.PixelBuffer, params map[string]interface{}) (*core.PixelBuffer, error) {
	kind, size, err := f.parse(params)
	if err != nil {
		return nil, core.WrapOp("apply_filter", err)
	}
	return ApplyFilter(input, kind, size)
}

func (f *SpatialFilter) parse(params map[string]interface{}) (FilterType, int, error) {
	name, err := paramString(params, "type", "gaussian")
	if err != nil {
		return 0, 0, err
	}
	kind, err := ParseFilterType(name)
	if err != nil {
		return 0, 0, err
	}
	size, err := paramInt(params, "kernel_size", 3)
	if err != nil {
		return 0, 0, err
	}
	return kind, size, nil
}

func (f *SpatialFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"type":        "gaussian",
		"kernel_size": 3.0,
	}
}

func (f *SpatialFilter) GetName() string {
	return "Spatial Filter"
}

func (f *SpatialFilter) GetDescription() string {
	return "Average, Gaussian or median smoothing with an odd square kernel"
}

func (f *SpatialFilter) Validate(params map[string]interface{}) error {
	_, size, err := f.parse(params)
	if err != nil {
		return err
	}
	return ValidateKernelSize(size)
}

func (f *SpatialFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "type",
			Type:        "enum",
			Default:     "gaussian",
			Description: "Filter type",
			Options:     []string{"average", "gaussian", "median"},
		},
		{
			Name:        "kernel_size",
			Type:        "int",
			Min:         3.0,
			Default:     3.0,
			Description: "Size of the kernel (must be odd)",
		},
	}
}
