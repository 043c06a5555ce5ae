// Image loading, saving and resizing backed by OpenCV
package io

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger *logrus.Logger
}

func NewImageLoader(logger *logrus.Logger) *ImageLoader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage reads a file as a 3-channel BGR buffer.
func (il *ImageLoader) LoadImage(path string) (*core.PixelBuffer, error) {
	return il.load(path, gocv.IMReadColor)
}

// LoadImageGrayscale reads a file as a single-channel buffer.
func (il *ImageLoader) LoadImageGrayscale(path string) (*core.PixelBuffer, error) {
	return il.load(path, gocv.IMReadGrayScale)
}

func (il *ImageLoader) load(path string, flags gocv.IMReadFlag) (*core.PixelBuffer, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !IsSupportedImageFormat(path) {
		return nil, core.InvalidParameterf("unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, flags)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to load image: %s", path)
	}

	buf, err := conversion.BufferFromMat(mat)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    buf.Width(),
		"height":   buf.Height(),
		"channels": buf.Channels(),
	}).Info("Image loaded successfully")
	return buf, nil
}

// SaveImage writes buf in the format given by the path extension.
func (il *ImageLoader) SaveImage(buf *core.PixelBuffer, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	if err := core.ValidateBuffer(buf); err != nil {
		return fmt.Errorf("cannot save image: %w", err)
	}
	if !IsSupportedImageFormat(path) {
		return core.InvalidParameterf("unsupported image format: %s", path)
	}

	mat, err := conversion.MatFromBuffer(buf)
	if err != nil {
		return err
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    buf.Width(),
		"height":   buf.Height(),
		"channels": buf.Channels(),
	}).Info("Image saved successfully")
	return nil
}

// ValidateImageFile checks that path has a supported extension and decodes.
func (il *ImageLoader) ValidateImageFile(path string) error {
	if !IsSupportedImageFormat(path) {
		return core.InvalidParameterf("unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer mat.Close()
	if mat.Empty() || mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid or corrupted image file: %s", path)
	}
	return nil
}

func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "TIFF", "BMP"}
}

// IsSupportedImageFormat reports whether the extension of path is readable
// and writable.
func IsSupportedImageFormat(path string) bool {
	return lo.Contains(supportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// Resize scales buf to width x height, using area interpolation when
// shrinking and Lanczos4 otherwise.
func Resize(buf *core.PixelBuffer, width, height int) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(buf); err != nil {
		return nil, core.WrapOp("resize", err)
	}
	if width <= 0 || height <= 0 || width > core.MaxDimension || height > core.MaxDimension {
		return nil, core.WrapOp("resize", core.InvalidParameterf("invalid target size %dx%d", width, height))
	}
	if width == buf.Width() && height == buf.Height() {
		return buf.Clone(), nil
	}

	src, err := conversion.MatFromBuffer(buf)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	interp := gocv.InterpolationLanczos4
	if width < buf.Width() && height < buf.Height() {
		interp = gocv.InterpolationArea
	}

	dst := gocv.NewMat()
	defer dst.Close()
	if err := gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, interp); err != nil {
		return nil, core.WrapOp("resize", err)
	}
	return conversion.BufferFromMat(dst)
}

// MatchSize resizes b to the dimensions of a when they differ, and converts
// b to a's channel count. It implements the optional resize policy for
// hybrid images.
func MatchSize(a, b *core.PixelBuffer) (*core.PixelBuffer, error) {
	out, err := Resize(b, a.Width(), a.Height())
	if err != nil {
		return nil, err
	}
	if out.Channels() == a.Channels() {
		return out, nil
	}

	mat, err := conversion.MatFromBuffer(out)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	code := gocv.ColorGrayToBGR
	if a.IsGray() {
		code = gocv.ColorBGRToGray
	}
	converted := gocv.NewMat()
	defer converted.Close()
	if err := gocv.CvtColor(mat, &converted, code); err != nil {
		return nil, fmt.Errorf("failed to convert channels: %w", err)
	}
	return conversion.BufferFromMat(converted)
}
