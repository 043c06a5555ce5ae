package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"image-processing-engine/internal/algorithms"
	"image-processing-engine/internal/core"
)

// addImageFlags registers the input/output flags shared by single-image commands.
func addImageFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringP("in", "i", "", "input image path")
	pf.StringP("out", "o", "", "output image path")
	pf.Bool("gray", false, "load the input as a single-channel image")
	_ = cmd.MarkPersistentFlagRequired("in")
	_ = cmd.MarkPersistentFlagRequired("out")
}

func (e *env) loadInput(cmd *cobra.Command, flag string) (*core.PixelBuffer, string, error) {
	path, _ := cmd.Flags().GetString(flag)
	gray, _ := cmd.Flags().GetBool("gray")
	if gray {
		buf, err := e.loader.LoadImageGrayscale(path)
		return buf, path, err
	}
	buf, err := e.loader.LoadImage(path)
	return buf, path, err
}

// runAlgorithm loads --in, applies the named algorithm and saves --out.
func (e *env) runAlgorithm(cmd *cobra.Command, name string, params map[string]interface{}) error {
	input, inPath, err := e.loadInput(cmd, "in")
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("out")

	start := time.Now()
	output, err := algorithms.Apply(name, input, params)
	if err != nil {
		e.logger.WithError(err).WithField("algorithm", name).Error("Processing failed")
		return err
	}
	e.logger.WithFields(logrus.Fields{
		"algorithm":   name,
		"params":      params,
		"input":       inPath,
		"shape":       output.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Processing completed")

	return e.loader.SaveImage(output, outPath)
}

// writeJSON encodes v indented. Non-finite metric values (PSNR of identical
// images) are not representable in JSON and must be passed through
// finiteMetrics first.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// finiteMetrics replaces +Inf with math.MaxFloat64 so reports stay encodable.
func finiteMetrics(m map[string]float64) map[string]float64 {
	return lo.MapValues(m, func(v float64, _ string) float64 {
		switch {
		case math.IsInf(v, 1):
			return math.MaxFloat64
		case math.IsInf(v, -1):
			return -math.MaxFloat64
		case math.IsNaN(v):
			return 0
		}
		return v
	})
}

func formatMetric(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.4f", v)
}
