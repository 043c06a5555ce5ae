// Concrete implementations of quality metrics
package metrics

import (
	"image"
	"math"

	"github.com/samber/lo"
	"gocv.io/x/gocv"

	"image-processing-engine/internal/algorithms"
	"image-processing-engine/internal/core"
	"image-processing-engine/internal/opencv/conversion"
)

// SSIM constants for 8-bit data: (0.01*255)^2 and (0.03*255)^2.
const (
	ssimC1     = 6.5025
	ssimC2     = 58.5225
	ssimWindow = 11
	ssimSigma  = 1.5
)

// validatePair checks both buffers and their dimensions.
func validatePair(op string, original, processed *core.PixelBuffer) error {
	if err := core.ValidateBuffer(original); err != nil {
		return core.WrapOp(op, err)
	}
	if err := core.ValidateBuffer(processed); err != nil {
		return core.WrapOp(op, err)
	}
	if original.Width() != processed.Width() || original.Height() != processed.Height() {
		return core.WrapOp(op, core.DimensionMismatchf("%s vs %s", original, processed))
	}
	return nil
}

// lumaPair validates a comparison and returns both luma planes.
func lumaPair(op string, original, processed *core.PixelBuffer) ([]float64, []float64, error) {
	if err := validatePair(op, original, processed); err != nil {
		return nil, nil, err
	}
	a, err := conversion.LumaPlane(original)
	if err != nil {
		return nil, nil, core.WrapOp(op, err)
	}
	b, err := conversion.LumaPlane(processed)
	if err != nil {
		return nil, nil, core.WrapOp(op, err)
	}
	return a, b, nil
}

// lumaMat returns the luma plane of b as a CV64F Mat. The caller closes it.
func lumaMat(b *core.PixelBuffer) (gocv.Mat, error) {
	gray, err := conversion.GrayMat(b)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer gray.Close()

	out := gocv.NewMat()
	gray.ConvertTo(&out, gocv.MatTypeCV64F)
	return out, nil
}

func meanSquaredError(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum / float64(len(a))
}

func variance(values []float64) float64 {
	mean := lo.Mean(values)
	return lo.SumBy(values, func(v float64) float64 { return (v - mean) * (v - mean) }) / float64(len(values))
}

// PSNR implements Peak Signal-to-Noise Ratio on luma
type PSNR struct{}

func NewPSNR() *PSNR {
	return &PSNR{}
}

// Calculate returns +Inf for identical images.
func (p *PSNR) Calculate(original, processed *core.PixelBuffer) (float64, error) {
	a, b, err := lumaPair("psnr", original, processed)
	if err != nil {
		return 0, err
	}
	mse := meanSquaredError(a, b)
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio in dB"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100
}

func (p *PSNR) IsHigherBetter() bool {
	return true
}

// MSE implements the mean squared error on luma
type MSE struct{}

func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed *core.PixelBuffer) (float64, error) {
	a, b, err := lumaPair("mse", original, processed)
	if err != nil {
		return 0, err
	}
	return meanSquaredError(a, b), nil
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetDescription() string {
	return "Mean squared error of the luma planes"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 255 * 255
}

func (m *MSE) IsHigherBetter() bool {
	return false
}

// SSIM implements the Structural Similarity Index with a Gaussian window
type SSIM struct{}

func NewSSIM() *SSIM {
	return &SSIM{}
}

// Calculate returns the mean of the local SSIM map.
func (s *SSIM) Calculate(original, processed *core.PixelBuffer) (float64, error) {
	if err := validatePair("ssim", original, processed); err != nil {
		return 0, err
	}

	f1, err := lumaMat(original)
	if err != nil {
		return 0, core.WrapOp("ssim", err)
	}
	defer f1.Close()
	f2, err := lumaMat(processed)
	if err != nil {
		return 0, core.WrapOp("ssim", err)
	}
	defer f2.Close()

	v, err := s.calculateSSIM(f1, f2)
	if err != nil {
		return 0, core.WrapOp("ssim", err)
	}
	return v, nil
}

func (s *SSIM) calculateSSIM(f1, f2 gocv.Mat) (float64, error) {
	var mats []gocv.Mat
	defer func() {
		for _, m := range mats {
			m.Close()
		}
	}()
	newMat := func() gocv.Mat {
		m := gocv.NewMat()
		mats = append(mats, m)
		return m
	}

	// The first failing OpenCV call wins; later results are ignored.
	var opErr error
	record := func(err error) {
		if err != nil && opErr == nil {
			opErr = err
		}
	}
	blur := func(src gocv.Mat) gocv.Mat {
		dst := newMat()
		record(gocv.GaussianBlur(src, &dst, image.Pt(ssimWindow, ssimWindow), ssimSigma, ssimSigma, gocv.BorderReplicate))
		return dst
	}
	multiply := func(a, b gocv.Mat) gocv.Mat {
		dst := newMat()
		record(gocv.Multiply(a, b, &dst))
		return dst
	}
	subtract := func(a, b gocv.Mat) gocv.Mat {
		dst := newMat()
		record(gocv.Subtract(a, b, &dst))
		return dst
	}
	add := func(a, b gocv.Mat) gocv.Mat {
		dst := newMat()
		record(gocv.Add(a, b, &dst))
		return dst
	}

	mu1 := blur(f1)
	mu2 := blur(f2)
	mu1Sq := multiply(mu1, mu1)
	mu2Sq := multiply(mu2, mu2)
	mu1Mu2 := multiply(mu1, mu2)

	sigma1Sq := subtract(blur(multiply(f1, f1)), mu1Sq)
	sigma2Sq := subtract(blur(multiply(f2, f2)), mu2Sq)
	sigma12 := subtract(blur(multiply(f1, f2)), mu1Mu2)
	if opErr != nil {
		return 0, opErr
	}

	// (2 mu1 mu2 + C1)(2 sigma12 + C2)
	num1 := mu1Mu2.Clone()
	mats = append(mats, num1)
	num1.MultiplyFloat(2)
	num1.AddFloat(ssimC1)
	num2 := sigma12.Clone()
	mats = append(mats, num2)
	num2.MultiplyFloat(2)
	num2.AddFloat(ssimC2)
	numerator := multiply(num1, num2)

	// (mu1² + mu2² + C1)(sigma1² + sigma2² + C2)
	den1 := add(mu1Sq, mu2Sq)
	den1.AddFloat(ssimC1)
	den2 := add(sigma1Sq, sigma2Sq)
	den2.AddFloat(ssimC2)
	denominator := multiply(den1, den2)
	if opErr != nil {
		return 0, opErr
	}

	ssimMap := newMat()
	gocv.Divide(numerator, denominator, &ssimMap)
	return ssimMap.Mean().Val1, nil
}

func (s *SSIM) GetName() string {
	return "SSIM"
}

func (s *SSIM) GetDescription() string {
	return "Structural Similarity Index - measures perceived structural similarity"
}

func (s *SSIM) GetRange() (float64, float64) {
	return 0, 1
}

func (s *SSIM) IsHigherBetter() bool {
	return true
}

// FMeasure compares two foreground maps, typically edge or threshold outputs.
// Non-binary inputs are binarized with Otsu's threshold first.
type FMeasure struct{}

func NewFMeasure() *FMeasure {
	return &FMeasure{}
}

func (f *FMeasure) Calculate(original, processed *core.PixelBuffer) (float64, error) {
	if err := validatePair("f_measure", original, processed); err != nil {
		return 0, err
	}

	truth, err := f.ensureBinary(original)
	if err != nil {
		return 0, err
	}
	pred, err := f.ensureBinary(processed)
	if err != nil {
		return 0, err
	}

	tp, fp, fn := f.calculateConfusionMatrix(truth, pred)

	precision := 0.0
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	recall := 0.0
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	if precision+recall == 0 {
		return 0, nil
	}
	return 2 * (precision * recall) / (precision + recall), nil
}

func (f *FMeasure) ensureBinary(input *core.PixelBuffer) ([]uint8, error) {
	gray, err := conversion.ToGrayscale(input)
	if err != nil {
		return nil, core.WrapOp("f_measure", err)
	}
	luma := gray.Pix()
	if lo.EveryBy(luma, func(v uint8) bool { return v == 0 || v == 255 }) {
		return luma, nil
	}

	t, err := algorithms.OtsuThreshold(input)
	if err != nil {
		return nil, err
	}
	binary, err := algorithms.Threshold(input, t)
	if err != nil {
		return nil, err
	}
	return binary.Pix(), nil
}

// calculateConfusionMatrix treats values above 127 as foreground
func (f *FMeasure) calculateConfusionMatrix(truth, pred []uint8) (tp, fp, fn float64) {
	for i := range truth {
		t, p := truth[i] > 127, pred[i] > 127
		switch {
		case t && p:
			tp++
		case !t && p:
			fp++
		case t && !p:
			fn++
		}
	}
	return tp, fp, fn
}

func (f *FMeasure) GetName() string {
	return "F-Measure"
}

func (f *FMeasure) GetDescription() string {
	return "Harmonic mean of precision and recall of the foreground"
}

func (f *FMeasure) GetRange() (float64, float64) {
	return 0, 1
}

func (f *FMeasure) IsHigherBetter() bool {
	return true
}

// ContrastRatio compares the luma standard deviation of both images
type ContrastRatio struct{}

func NewContrastRatio() *ContrastRatio {
	return &ContrastRatio{}
}

// Calculate returns 1 when the original has no contrast at all. The images
// may differ in size.
func (c *ContrastRatio) Calculate(original, processed *core.PixelBuffer) (float64, error) {
	if err := core.ValidateBuffer(original); err != nil {
		return 0, core.WrapOp("contrast_ratio", err)
	}
	if err := core.ValidateBuffer(processed); err != nil {
		return 0, core.WrapOp("contrast_ratio", err)
	}

	a, err := conversion.LumaPlane(original)
	if err != nil {
		return 0, core.WrapOp("contrast_ratio", err)
	}
	origContrast := math.Sqrt(variance(a))
	if origContrast == 0 {
		return 1.0, nil
	}
	b, err := conversion.LumaPlane(processed)
	if err != nil {
		return 0, core.WrapOp("contrast_ratio", err)
	}
	return math.Sqrt(variance(b)) / origContrast, nil
}

func (c *ContrastRatio) GetName() string {
	return "Contrast Ratio"
}

func (c *ContrastRatio) GetDescription() string {
	return "Ratio of contrast preservation"
}

func (c *ContrastRatio) GetRange() (float64, float64) {
	return 0, 2
}

func (c *ContrastRatio) IsHigherBetter() bool {
	return true
}

// Sharpness compares the variance of the Laplacian of both images
type Sharpness struct{}

func NewSharpness() *Sharpness {
	return &Sharpness{}
}

func (s *Sharpness) Calculate(original, processed *core.PixelBuffer) (float64, error) {
	if err := core.ValidateBuffer(original); err != nil {
		return 0, core.WrapOp("sharpness", err)
	}
	if err := core.ValidateBuffer(processed); err != nil {
		return 0, core.WrapOp("sharpness", err)
	}

	origSharpness, err := LaplacianVariance(original)
	if err != nil {
		return 0, err
	}
	if origSharpness == 0 {
		return 1.0, nil
	}
	procSharpness, err := LaplacianVariance(processed)
	if err != nil {
		return 0, err
	}
	return procSharpness / origSharpness, nil
}

// LaplacianVariance is the variance of the Laplacian of the luma plane, a
// common focus measure.
func LaplacianVariance(img *core.PixelBuffer) (float64, error) {
	if err := core.ValidateBuffer(img); err != nil {
		return 0, core.WrapOp("sharpness", err)
	}
	gray, err := lumaMat(img)
	if err != nil {
		return 0, core.WrapOp("sharpness", err)
	}
	defer gray.Close()

	// ksize 1 is the 4-neighbour kernel
	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderReplicate)

	mean := gocv.NewMat()
	defer mean.Close()
	stdDev := gocv.NewMat()
	defer stdDev.Close()
	gocv.MeanStdDev(laplacian, &mean, &stdDev)

	sd := stdDev.GetDoubleAt(0, 0)
	return sd * sd, nil
}

func (s *Sharpness) GetName() string {
	return "Sharpness"
}

func (s *Sharpness) GetDescription() string {
	return "Edge preservation measure"
}

func (s *Sharpness) GetRange() (float64, float64) {
	return 0, 2
}

func (s *Sharpness) IsHigherBetter() bool {
	return true
}
