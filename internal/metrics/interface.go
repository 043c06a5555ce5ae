// Quality metrics for comparing an image before and after an operation
package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"image-processing-engine/internal/core"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate compares processed against original
	Calculate(original, processed *core.PixelBuffer) (float64, error)

	GetName() string
	GetDescription() string

	// GetRange returns the practical value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with every built-in metric registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("ssim", NewSSIM())
	e.Register("f_measure", NewFMeasure())
	e.Register("mse", NewMSE())
	e.Register("contrast_ratio", NewContrastRatio())
	e.Register("sharpness", NewSharpness())
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names in sorted order.
func (e *Evaluator) Names() []string {
	names := lo.Keys(e.metrics)
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed *core.PixelBuffer) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, core.InvalidParameterf("metric not found: %s", name)
	}
	return metric.Calculate(original, processed)
}

// CalculateAll calculates every registered metric, skipping the ones that
// fail (F-measure on non-binary input, mismatched shapes, ...).
func (e *Evaluator) CalculateAll(original, processed *core.PixelBuffer) map[string]float64 {
	results := make(map[string]float64)
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}
	return results
}

// EvaluateStep calculates the metrics relevant to one processing step.
// Steps that change the shape (edge maps, grayscale of a color image) only
// get the shape-independent metrics.
func (e *Evaluator) EvaluateStep(before, after *core.PixelBuffer, algorithm string) map[string]float64 {
	results := make(map[string]float64)

	if before.SameShape(after) {
		if psnr, err := e.Calculate("psnr", before, after); err == nil {
			results["psnr"] = psnr
		}
		if ssim, err := e.Calculate("ssim", before, after); err == nil {
			results["ssim"] = ssim
		}
	}

	switch algorithm {
	case "filter", "fft", "noise":
		if contrast, err := e.Calculate("contrast_ratio", before, after); err == nil {
			results["contrast_preservation"] = contrast
		}
		if sharpness, err := e.Calculate("sharpness", before, after); err == nil {
			results["edge_preservation"] = sharpness
		}

	case "equalize", "normalize":
		if contrast, err := e.Calculate("contrast_ratio", before, after); err == nil {
			results["contrast_ratio"] = contrast
		}

	case "erode", "dilate", "open", "close":
		if sharpness, err := e.Calculate("sharpness", before, after); err == nil {
			results["edge_preservation"] = sharpness
		}
	}

	return results
}

// GetMetricInfo returns information about all metrics
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)
	for name, metric := range e.metrics {
		minVal, maxVal := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{minVal, maxVal},
			HigherBetter: metric.IsHigherBetter(),
		}
	}
	return info
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Range        [2]float64 `json:"range"`
	HigherBetter bool       `json:"higher_better"`
}

// QualityReport contains comprehensive quality assessment
type QualityReport struct {
	OverallScore float64            `json:"overall_score"`
	Metrics      map[string]float64 `json:"metrics"`
	Analysis     QualityAnalysis    `json:"analysis"`
	Timestamp    string             `json:"timestamp"`
}

// QualityAnalysis provides interpretation of metrics
type QualityAnalysis struct {
	QualityLevel string   `json:"quality_level"` // "excellent", "good", "fair", "poor"
	Issues       []string `json:"issues"`
	Suggestions  []string `json:"suggestions"`
}

// GenerateReport compares two images of the same shape with every metric.
func (e *Evaluator) GenerateReport(original, processed *core.PixelBuffer) (QualityReport, error) {
	if err := core.ValidateBuffer(original); err != nil {
		return QualityReport{}, core.WrapOp("generate_report", err)
	}
	if err := core.ValidateBuffer(processed); err != nil {
		return QualityReport{}, core.WrapOp("generate_report", err)
	}
	if original.Width() != processed.Width() || original.Height() != processed.Height() {
		return QualityReport{}, core.WrapOp("generate_report",
			core.DimensionMismatchf("%s vs %s", original, processed))
	}

	metrics := e.CalculateAll(original, processed)
	return QualityReport{
		OverallScore: e.calculateOverallScore(metrics),
		Metrics:      metrics,
		Analysis:     e.analyzeQuality(metrics),
		Timestamp:    time.Now().Format("2006-01-02 15:04:05"),
	}, nil
}

// calculateOverallScore returns a weighted score in percent
func (e *Evaluator) calculateOverallScore(metrics map[string]float64) float64 {
	weights := map[string]float64{
		"psnr":           0.3,
		"ssim":           0.3,
		"f_measure":      0.2,
		"contrast_ratio": 0.1,
		"sharpness":      0.1,
	}

	totalWeight := 0.0
	weightedSum := 0.0
	for name, weight := range weights {
		if value, exists := metrics[name]; exists {
			weightedSum += e.normalizeMetric(name, value) * weight
			totalWeight += weight
		}
	}

	if totalWeight == 0 {
		return 0
	}
	return (weightedSum / totalWeight) * 100
}

// normalizeMetric maps a metric value into [0,1], 1 being best
func (e *Evaluator) normalizeMetric(name string, value float64) float64 {
	metric, exists := e.metrics[name]
	if !exists {
		return 0
	}

	minVal, maxVal := metric.GetRange()
	value = max(minVal, min(maxVal, value))
	if maxVal == minVal {
		return 1.0
	}

	normalized := (value - minVal) / (maxVal - minVal)
	if !metric.IsHigherBetter() {
		normalized = 1.0 - normalized
	}
	return normalized
}

func (e *Evaluator) analyzeQuality(metrics map[string]float64) QualityAnalysis {
	analysis := QualityAnalysis{
		Issues:      make([]string, 0),
		Suggestions: make([]string, 0),
	}

	overallScore := e.calculateOverallScore(metrics)
	switch {
	case overallScore >= 90:
		analysis.QualityLevel = "excellent"
	case overallScore >= 75:
		analysis.QualityLevel = "good"
	case overallScore >= 60:
		analysis.QualityLevel = "fair"
	default:
		analysis.QualityLevel = "poor"
	}

	if psnr, exists := metrics["psnr"]; exists && psnr < 20 {
		analysis.Issues = append(analysis.Issues, "Low PSNR indicates significant noise or distortion")
		analysis.Suggestions = append(analysis.Suggestions, "Lower the noise intensity or smooth with a median filter")
	}
	if ssim, exists := metrics["ssim"]; exists && ssim < 0.7 {
		analysis.Issues = append(analysis.Issues, "Low SSIM indicates poor structural similarity")
		analysis.Suggestions = append(analysis.Suggestions, "Use a smaller kernel or a wider frequency radius")
	}
	if fMeasure, exists := metrics["f_measure"]; exists && fMeasure < 0.8 {
		analysis.Issues = append(analysis.Issues, "Low F-measure indicates poor foreground/background agreement")
		analysis.Suggestions = append(analysis.Suggestions, fmt.Sprintf("Adjust edge thresholds (F=%.2f)", fMeasure))
	}

	return analysis
}
