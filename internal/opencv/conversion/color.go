package conversion

import (
	"fmt"

	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
)

// GrayMat returns the 8-bit luma Mat of buf. BGR input is converted with
// OpenCV's fixed-point weights Y = 0.114 B + 0.587 G + 0.299 R; grayscale
// input is copied. The caller closes the Mat.
func GrayMat(buf *core.PixelBuffer) (gocv.Mat, error) {
	src, err := MatFromBuffer(buf)
	if err != nil {
		return gocv.Mat{}, err
	}
	if buf.IsGray() {
		return src, nil
	}
	defer src.Close()

	dst := gocv.NewMat()
	if err := gocv.CvtColor(src, &dst, gocv.ColorBGRToGray); err != nil {
		dst.Close()
		return gocv.Mat{}, fmt.Errorf("failed to convert to grayscale: %w", err)
	}
	return dst, nil
}

// ToGrayscale converts buf to a single-channel luma buffer.
func ToGrayscale(buf *core.PixelBuffer) (*core.PixelBuffer, error) {
	gray, err := GrayMat(buf)
	if err != nil {
		return nil, err
	}
	defer gray.Close()
	return BufferFromMat(gray)
}

// LumaPlane returns the luma samples of buf as float64 values.
func LumaPlane(buf *core.PixelBuffer) ([]float64, error) {
	gray, err := ToGrayscale(buf)
	if err != nil {
		return nil, err
	}
	out := make([]float64, gray.PixelCount())
	for i, v := range gray.Pix() {
		out[i] = float64(v)
	}
	return out, nil
}
