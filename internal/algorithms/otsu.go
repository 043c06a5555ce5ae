// Global Otsu thresholding on the luma histogram
package algorithms

import (
	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

// OtsuThreshold returns the level t that maximizes the between-class
// variance of the luma histogram, where class 0 holds values <= t.
// A single-valued image yields that value.
func OtsuThreshold(img *core.PixelBuffer) (int, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return 0, core.WrapOp("otsu", err)
	}

	gray, err := conversion.GrayMat(img)
	if err != nil {
		return 0, core.WrapOp("otsu", err)
	}
	defer gray.Close()

	minVal, maxVal, _, _ := gocv.MinMaxLoc(gray)
	if minVal == maxVal {
		return int(minVal), nil
	}

	binary := gocv.NewMat()
	defer binary.Close()
	level := gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	return int(level), nil
}

// Threshold maps luma values above t to 255 and the rest to 0.
func Threshold(img *core.PixelBuffer, t int) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("threshold", err)
	}
	if t < 0 || t > 255 {
		return nil, core.WrapOp("threshold", core.InvalidParameterf("threshold must be in [0,255], got %d", t))
	}

	gray, err := conversion.GrayMat(img)
	if err != nil {
		return nil, core.WrapOp("threshold", err)
	}
	defer gray.Close()

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, float32(t), 255, gocv.ThresholdBinary)

	out, err := conversion.BufferFromMat(binary)
	if err != nil {
		return nil, core.WrapOp("threshold", err)
	}
	return out, nil
}

// OtsuAlgorithm binarizes with the Otsu level, or a fixed one when
// the "threshold" parameter is non-negative.
type OtsuAlgorithm struct{}

func NewOtsuAlgorithm() *OtsuAlgorithm {
	return &OtsuAlgorithm{}
}

func (o *OtsuAlgorithm) Apply(input *core.PixelBuffer, params map[string]interface{}) (*core.PixelBuffer, error) {
	t, err := paramInt(params, "threshold", -1)
	if err != nil {
		return nil, core.WrapOp("otsu", err)
	}
	if t < 0 {
		if t, err = OtsuThreshold(input); err != nil {
			return nil, err
		}
	}
	return Threshold(input, t)
}

func (o *OtsuAlgorithm) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{"threshold": -1.0}
}

func (o *OtsuAlgorithm) GetName() string {
	return "Otsu Threshold"
}

func (o *OtsuAlgorithm) GetDescription() string {
	return "Binary image split at the level maximizing between-class variance"
}

func (o *OtsuAlgorithm) Validate(params map[string]interface{}) error {
	t, err := paramInt(params, "threshold", -1)
	if err != nil {
		return err
	}
	if t > 255 {
		return core.InvalidParameterf("threshold must be at most 255, got %d", t)
	}
	return nil
}

func (o *OtsuAlgorithm) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "threshold",
			Type:        "int",
			Min:         -1.0,
			Max:         255.0,
			Default:     -1.0,
			Description: "Fixed level, or -1 to compute it with Otsu's method",
		},
	}
}
