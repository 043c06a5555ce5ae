// Pixel buffer shared by every engine operation
package core

import (
	"fmt"
	"math"
)

// MaxDimension bounds width and height accepted by the engine.
const MaxDimension = 16384

// PixelBuffer is a dense row-major buffer of 8-bit samples with 1 (grayscale)
// or 3 (BGR) interleaved channels. A buffer is never modified after
// construction; operations always return a new buffer.
type PixelBuffer struct {
	width    int
	height   int
	channels int
	pix      []uint8
}

// NewPixelBuffer validates the shape and copies samples into a new buffer.
func NewPixelBuffer(width, height, channels int, samples []uint8) (*PixelBuffer, error) {
	if err := validateShape(width, height, channels); err != nil {
		return nil, err
	}
	if len(samples) != width*height*channels {
		return nil, InvalidParameterf("sample count %d does not match %dx%dx%d", len(samples), width, height, channels)
	}

	pix := make([]uint8, len(samples))
	copy(pix, samples)
	return &PixelBuffer{width: width, height: height, channels: channels, pix: pix}, nil
}

// NewBlank returns a zero-filled buffer.
func NewBlank(width, height, channels int) (*PixelBuffer, error) {
	if err := validateShape(width, height, channels); err != nil {
		return nil, err
	}
	return &PixelBuffer{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]uint8, width*height*channels),
	}, nil
}

// Wrap adopts pix without copying. The caller must not retain pix.
// It panics on a shape mismatch, which only happens on programming errors
// inside the engine.
func Wrap(width, height, channels int, pix []uint8) *PixelBuffer {
	if len(pix) != width*height*channels {
		panic(fmt.Sprintf("core: wrap %dx%dx%d with %d samples", width, height, channels, len(pix)))
	}
	return &PixelBuffer{width: width, height: height, channels: channels, pix: pix}
}

func validateShape(width, height, channels int) error {
	if width <= 0 || height <= 0 {
		return EmptyInputf("invalid dimensions: %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return InvalidParameterf("image too large: %dx%d (max: %d)", width, height, MaxDimension)
	}
	if channels != 1 && channels != 3 {
		return InvalidParameterf("unsupported channel count: %d", channels)
	}
	return nil
}

func (b *PixelBuffer) Width() int    { return b.width }
func (b *PixelBuffer) Height() int   { return b.height }
func (b *PixelBuffer) Channels() int { return b.channels }

// Pix exposes the backing samples. Callers must treat the slice as read-only.
func (b *PixelBuffer) Pix() []uint8 { return b.pix }

// Samples returns a copy of the backing samples.
func (b *PixelBuffer) Samples() []uint8 {
	out := make([]uint8, len(b.pix))
	copy(out, b.pix)
	return out
}

// IsGray reports whether the buffer has a single channel.
func (b *PixelBuffer) IsGray() bool { return b.channels == 1 }

// PixelCount is width*height.
func (b *PixelBuffer) PixelCount() int { return b.width * b.height }

// Offset returns the index of channel c at (x, y).
func (b *PixelBuffer) Offset(x, y, c int) int {
	return (y*b.width+x)*b.channels + c
}

// At returns channel c at (x, y).
func (b *PixelBuffer) At(x, y, c int) uint8 {
	return b.pix[b.Offset(x, y, c)]
}

// Clone returns an independent copy.
func (b *PixelBuffer) Clone() *PixelBuffer {
	return Wrap(b.width, b.height, b.channels, b.Samples())
}

// SameShape reports whether both buffers share width, height and channel count.
func (b *PixelBuffer) SameShape(o *PixelBuffer) bool {
	return o != nil && b.width == o.width && b.height == o.height && b.channels == o.channels
}

// Equal reports sample-exact equality.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if !b.SameShape(o) {
		return false
	}
	for i, v := range b.pix {
		if o.pix[i] != v {
			return false
		}
	}
	return true
}

// Channel extracts one channel as float64 samples in row-major order.
func (b *PixelBuffer) Channel(c int) []float64 {
	out := make([]float64, b.width*b.height)
	for i := range out {
		out[i] = float64(b.pix[i*b.channels+c])
	}
	return out
}

func (b *PixelBuffer) String() string {
	return fmt.Sprintf("PixelBuffer(%dx%dx%d)", b.width, b.height, b.channels)
}

// ValidateBuffer checks the buffer invariants every entry point relies on.
func ValidateBuffer(b *PixelBuffer) error {
	if b == nil {
		return EmptyInputf("image is nil")
	}
	if err := validateShape(b.width, b.height, b.channels); err != nil {
		return err
	}
	if len(b.pix) != b.width*b.height*b.channels {
		return InvalidParameterf("corrupt buffer: %d samples for %dx%dx%d", len(b.pix), b.width, b.height, b.channels)
	}
	return nil
}

// ClampUint8 rounds v to the nearest integer and saturates it to [0,255].
func ClampUint8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
