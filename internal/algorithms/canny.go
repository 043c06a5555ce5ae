package algorithms

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

// Default Canny thresholds on the Sobel L1 gradient magnitude.
const (
	CannyDefaultLow  = 100.0
	CannyDefaultHigh = 200.0
)

const (
	cannyBlurSize  = 5
	cannyBlurSigma = 1.4
)

func validateThresholds(low, high float64) error {
	if math.IsNaN(low) || math.IsNaN(high) {
		return core.InvalidParameterf("thresholds must be numbers")
	}
	if low < 0 {
		return core.InvalidParameterf("low threshold must be >= 0, got %v", low)
	}
	if high <= low {
		return core.InvalidParameterf("high threshold (%v) must be greater than low threshold (%v)", high, low)
	}
	return nil
}

// Canny blurs the luma plane with a fixed 5x5 Gaussian, then runs OpenCV's
// detector: Sobel gradients with |gx|+|gy| magnitude, non-maximum
// suppression, double thresholding and hysteresis. Neighbours outside the
// image count as zero magnitude during suppression, so edges on opposite
// borders are treated alike. The result is single-channel with values 0
// or 255.
func Canny(img *core.PixelBuffer, low, high float64) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("canny", err)
	}
	if err := validateThresholds(low, high); err != nil {
		return nil, core.WrapOp("canny", err)
	}

	gray, err := conversion.GrayMat(img)
	if err != nil {
		return nil, core.WrapOp("canny", err)
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	err = gocv.GaussianBlur(gray, &blurred, image.Pt(cannyBlurSize, cannyBlurSize),
		cannyBlurSigma, cannyBlurSigma, gocv.BorderReplicate)
	if err != nil {
		return nil, core.WrapOp("canny", err)
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(low), float32(high))

	out, err := conversion.BufferFromMat(edges)
	if err != nil {
		return nil, core.WrapOp("canny", err)
	}
	return out, nil
}
