// Convolution kernels and the replicate-border convolution used by the gradient operators
package algorithms

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

// Kernel is a square matrix of weights stored row-major. Size may be even
// for operators such as Roberts; the anchor is then the top-left of the
// central 2x2 block, matching a pad of Size/2 before and Size/2-1 after.
type Kernel struct {
	Size    int
	Weights []float64
}

// NewKernel builds a kernel from rows of weights.
func NewKernel(rows [][]float64) Kernel {
	k := Kernel{Size: len(rows), Weights: make([]float64, 0, len(rows)*len(rows))}
	for _, row := range rows {
		k.Weights = append(k.Weights, row...)
	}
	return k
}

// At returns the weight at (row i, column j).
func (k Kernel) At(i, j int) float64 {
	return k.Weights[i*k.Size+j]
}

// Sum returns the sum of all weights.
func (k Kernel) Sum() float64 {
	var s float64
	for _, w := range k.Weights {
		s += w
	}
	return s
}

// anchor is the offset of the output pixel inside the kernel window.
func (k Kernel) anchor() int {
	if k.Size%2 == 1 {
		return k.Size / 2
	}
	return k.Size/2 - 1
}

// ValidateKernelSize enforces an odd size of at least 3.
func ValidateKernelSize(size int) error {
	if size < 3 {
		return core.InvalidParameterf("kernel_size must be >= 3, got %d", size)
	}
	if size%2 == 0 {
		return core.InvalidParameterf("kernel_size must be odd, got %d", size)
	}
	return nil
}

// BoxKernel returns a size x size kernel of uniform weight 1/size².
func BoxKernel(size int) Kernel {
	n := size * size
	k := Kernel{Size: size, Weights: make([]float64, n)}
	for i := range k.Weights {
		k.Weights[i] = 1 / float64(n)
	}
	return k
}

// GaussianSigma derives the standard deviation used for a kernel size.
func GaussianSigma(size int) float64 {
	return math.Max(0.3*(float64(size-1)*0.5-1)+0.8, 0.5)
}

var (
	sobelX   = NewKernel([][]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}})
	sobelY   = NewKernel([][]float64{{1, 2, 1}, {0, 0, 0}, {-1, -2, -1}})
	prewittX = NewKernel([][]float64{{-1, 0, 1}, {-1, 0, 1}, {-1, 0, 1}})
	prewittY = NewKernel([][]float64{{1, 1, 1}, {0, 0, 0}, {-1, -1, -1}})
	robertsX = NewKernel([][]float64{{1, 0}, {0, -1}})
	robertsY = NewKernel([][]float64{{0, 1}, {-1, 0}})
)

// convolvePlane correlates a single float plane with k using replicated
// borders. The accumulation order is fixed per pixel.
func convolvePlane(src []float64, width, height int, k Kernel, workers int) []float64 {
	dst := make([]float64, width*height)
	a := k.anchor()
	forEachRow(height, workers, func(y int) {
		for x := 0; x < width; x++ {
			var acc float64
			for i := 0; i < k.Size; i++ {
				row := clampIndex(y+i-a, height) * width
				for j := 0; j < k.Size; j++ {
					acc += src[row+clampIndex(x+j-a, width)] * k.Weights[i*k.Size+j]
				}
			}
			dst[y*width+x] = acc
		}
	})
	return dst
}

// ConvolveKernel correlates every channel of img with a custom kernel using
// replicated borders and saturates the result to 8 bits.
func ConvolveKernel(img *core.PixelBuffer, k Kernel) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return nil, core.WrapOp("convolve", err)
	}
	kernel, err := conversion.KernelMat(k.Weights, k.Size)
	if err != nil {
		return nil, core.WrapOp("convolve", err)
	}
	defer kernel.Close()

	a := k.anchor()
	out, err := conversion.Apply(img, func(src gocv.Mat, dst *gocv.Mat) error {
		return gocv.Filter2D(src, dst, -1, kernel, image.Pt(a, a), 0, gocv.BorderReplicate)
	})
	if err != nil {
		return nil, core.WrapOp("convolve", err)
	}
	return out, nil
}
