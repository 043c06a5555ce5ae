package layers

import (
	"fmt"

	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

// Blend composites overlay onto base. Both must share width and height;
// a single-channel side is replicated to three channels when the other is
// color. Only pixels where mask is true change; a nil mask covers the image.
func Blend(base, overlay *core.PixelBuffer, mode BlendMode, opacity float64, mask []bool) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(base); err != nil {
		return nil, core.WrapOp("blend", err)
	}
	if err := core.ValidateBuffer(overlay); err != nil {
		return nil, core.WrapOp("blend", err)
	}
	if base.Width() != overlay.Width() || base.Height() != overlay.Height() {
		return nil, core.WrapOp("blend", core.DimensionMismatchf("%s vs %s", base, overlay))
	}
	if !(opacity >= 0 && opacity <= 1) {
		return nil, core.WrapOp("blend", core.InvalidParameterf("opacity must be in [0,1], got %v", opacity))
	}
	if mask != nil && len(mask) != base.PixelCount() {
		return nil, core.WrapOp("blend", core.DimensionMismatchf("mask of %d pixels for %s", len(mask), base))
	}

	ch := max(base.Channels(), overlay.Channels())
	a, err := ExpandChannels(base, ch)
	if err != nil {
		return nil, core.WrapOp("blend", err)
	}
	b, err := ExpandChannels(overlay, ch)
	if err != nil {
		return nil, core.WrapOp("blend", err)
	}

	out, err := blendMats(a, b, mode, opacity, mask)
	if err != nil {
		return nil, core.WrapOp("blend", err)
	}
	return out, nil
}

func blendMats(base, overlay *core.PixelBuffer, mode BlendMode, opacity float64, mask []bool) (*core.PixelBuffer, error) {
	base8, err := conversion.MatFromBuffer(base)
	if err != nil {
		return nil, err
	}
	defer base8.Close()
	over8, err := conversion.MatFromBuffer(overlay)
	if err != nil {
		return nil, err
	}
	defer over8.Close()

	a := unitMat(base8)
	defer a.Close()
	b := unitMat(over8)
	defer b.Close()

	blended, err := blendUnit(mode, a, b)
	if err != nil {
		return nil, err
	}
	defer blended.Close()

	mixed := gocv.NewMat()
	defer mixed.Close()
	gocv.AddWeighted(a, 1-opacity, blended, opacity, 0, &mixed)
	mixed.MultiplyFloat(255)

	mixed8 := gocv.NewMat()
	defer mixed8.Close()
	mixed.ConvertTo(&mixed8, gocv.MatTypeCV8U)

	if mask == nil {
		return conversion.BufferFromMat(mixed8)
	}

	maskMat, err := maskToMat(mask, base.Width(), base.Height())
	if err != nil {
		return nil, err
	}
	defer maskMat.Close()

	result := base8.Clone()
	defer result.Close()
	mixed8.CopyToWithMask(&result, maskMat)
	return conversion.BufferFromMat(result)
}

// unitMat converts an 8-bit Mat to CV64F samples in [0,1].
func unitMat(m gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	m.ConvertTo(&out, gocv.MatTypeCV64F)
	out.MultiplyFloat(1.0 / 255)
	return out
}

// blendUnit evaluates the blend function on [0,1] samples. The caller
// closes the result.
func blendUnit(mode BlendMode, a, b gocv.Mat) (gocv.Mat, error) {
	switch mode {
	case BlendMultiply:
		out := gocv.NewMat()
		if err := gocv.Multiply(a, b, &out); err != nil {
			out.Close()
			return gocv.Mat{}, fmt.Errorf("multiply blend failed: %w", err)
		}
		return out, nil
	case BlendScreen:
		return screen(a, b)
	case BlendOverlay:
		return overlayBlend(a, b)
	}
	return b.Clone(), nil
}

// screen is 1-(1-a)(1-b), computed as a+b-ab.
func screen(a, b gocv.Mat) (gocv.Mat, error) {
	sum := gocv.NewMat()
	defer sum.Close()
	if err := gocv.Add(a, b, &sum); err != nil {
		return gocv.Mat{}, fmt.Errorf("screen blend failed: %w", err)
	}
	prod := gocv.NewMat()
	defer prod.Close()
	if err := gocv.Multiply(a, b, &prod); err != nil {
		return gocv.Mat{}, fmt.Errorf("screen blend failed: %w", err)
	}
	out := gocv.NewMat()
	if err := gocv.Subtract(sum, prod, &out); err != nil {
		out.Close()
		return gocv.Mat{}, fmt.Errorf("screen blend failed: %w", err)
	}
	return out, nil
}

// overlayBlend is 2ab where a < 0.5 and 1-2(1-a)(1-b) elsewhere. Both
// branches equal b at a = 0.5, so the split point may go either way.
func overlayBlend(a, b gocv.Mat) (gocv.Mat, error) {
	low := gocv.NewMat()
	defer low.Close()
	if err := gocv.Multiply(a, b, &low); err != nil {
		return gocv.Mat{}, fmt.Errorf("overlay blend failed: %w", err)
	}
	low.MultiplyFloat(2)

	high, err := screen(a, b)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer high.Close()
	high.MultiplyFloat(2)
	high.SubtractFloat(1)

	// 1 where the base is light
	light := gocv.NewMat()
	defer light.Close()
	gocv.Threshold(a, &light, 0.5, 1, gocv.ThresholdBinary)

	diff := gocv.NewMat()
	defer diff.Close()
	if err := gocv.Subtract(high, low, &diff); err != nil {
		return gocv.Mat{}, fmt.Errorf("overlay blend failed: %w", err)
	}
	picked := gocv.NewMat()
	defer picked.Close()
	if err := gocv.Multiply(light, diff, &picked); err != nil {
		return gocv.Mat{}, fmt.Errorf("overlay blend failed: %w", err)
	}
	out := gocv.NewMat()
	if err := gocv.Add(low, picked, &out); err != nil {
		out.Close()
		return gocv.Mat{}, fmt.Errorf("overlay blend failed: %w", err)
	}
	return out, nil
}

func maskToMat(mask []bool, width, height int) (gocv.Mat, error) {
	bytes := make([]byte, len(mask))
	for i, in := range mask {
		if in {
			bytes[i] = 255
		}
	}
	m, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, bytes)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create mask: %w", err)
	}
	return m, nil
}

// ExpandChannels replicates a grayscale buffer to channels samples per pixel.
// Buffers that already have the requested count are returned as is.
func ExpandChannels(b *core.PixelBuffer, channels int) (*core.PixelBuffer, error) {
	if b.Channels() == channels || b.Channels() != 1 {
		return b, nil
	}
	return conversion.Apply(b, func(src gocv.Mat, dst *gocv.Mat) error {
		return gocv.CvtColor(src, dst, gocv.ColorGrayToBGR)
	})
}
