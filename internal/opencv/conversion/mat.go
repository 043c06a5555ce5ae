// Package conversion moves pixel data between core.PixelBuffer and gocv.Mat.
package conversion

import (
	"fmt"

	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
)

// BufferFromMat copies an 8-bit 1-, 3- or 4-channel Mat into a buffer. The
// alpha channel of a BGRA Mat is dropped.
func BufferFromMat(mat gocv.Mat) (*core.PixelBuffer, error) {
	if mat.Empty() {
		return nil, core.EmptyInputf("mat is empty")
	}

	src := mat
	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3:
	case gocv.MatTypeCV8UC4:
		src = gocv.NewMat()
		defer src.Close()
		if err := gocv.CvtColor(mat, &src, gocv.ColorBGRAToBGR); err != nil {
			return nil, fmt.Errorf("failed to drop alpha channel: %w", err)
		}
	default:
		return nil, core.InvalidParameterf("unsupported mat type: %v", mat.Type())
	}

	if !src.IsContinuous() {
		src = src.Clone()
		defer src.Close()
	}
	return core.NewPixelBuffer(src.Cols(), src.Rows(), src.Channels(), src.ToBytes())
}

// MatFromBuffer copies buf into a new 8-bit Mat. The caller closes it.
func MatFromBuffer(buf *core.PixelBuffer) (gocv.Mat, error) {
	if err := core.ValidateBuffer(buf); err != nil {
		return gocv.Mat{}, err
	}
	mat, err := gocv.NewMatFromBytes(buf.Height(), buf.Width(), MatType(buf.Channels()), buf.Samples())
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create mat: %w", err)
	}
	return mat, nil
}

// MatType is the 8-bit Mat type holding the given channel count.
func MatType(channels int) gocv.MatType {
	if channels == 1 {
		return gocv.MatTypeCV8UC1
	}
	return gocv.MatTypeCV8UC3
}

// Apply runs fn on a Mat copy of buf and converts the 8-bit destination back.
func Apply(buf *core.PixelBuffer, fn func(src gocv.Mat, dst *gocv.Mat) error) (*core.PixelBuffer, error) {
	src, err := MatFromBuffer(buf)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	if err := fn(src, &dst); err != nil {
		return nil, err
	}
	return BufferFromMat(dst)
}

// PlaneFromMat reads a single-channel Mat of any depth as float64 samples in
// row-major order.
func PlaneFromMat(mat gocv.Mat) []float64 {
	f64 := mat
	if mat.Type() != gocv.MatTypeCV64F {
		f64 = gocv.NewMat()
		defer f64.Close()
		mat.ConvertTo(&f64, gocv.MatTypeCV64F)
	}

	rows, cols := f64.Rows(), f64.Cols()
	out := make([]float64, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out[y*cols+x] = f64.GetDoubleAt(y, x)
		}
	}
	return out
}

// KernelMat builds a size x size CV64F kernel from row-major weights. The
// caller closes it.
func KernelMat(weights []float64, size int) (gocv.Mat, error) {
	if size < 1 || len(weights) != size*size {
		return gocv.Mat{}, core.InvalidParameterf("malformed kernel: size %d with %d weights", size, len(weights))
	}
	k := gocv.NewMatWithSize(size, size, gocv.MatTypeCV64F)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			k.SetDoubleAt(i, j, weights[i*size+j])
		}
	}
	return k, nil
}
