package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"image-processing-engine/internal/algorithms"
)

func NewNoiseCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "noise",
		Short: "add uniform, gaussian or salt & pepper noise",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("type")
			intensity, _ := cmd.Flags().GetFloat64("intensity")
			seed, _ := cmd.Flags().GetInt("seed")
			return e.runAlgorithm(cmd, "noise", map[string]interface{}{
				"type":      kind,
				"intensity": intensity,
				"seed":      seed,
			})
		},
	}
	addImageFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.StringP("type", "t", "gaussian", "noise type (uniform|gaussian|salt_pepper)")
	pf.Float64P("intensity", "n", 10, "noise intensity 0..100")
	pf.Int("seed", 0, "random seed, 0 for a random run")
	return cmd
}

func NewFilterCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "average, gaussian or median smoothing",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("type")
			size, _ := cmd.Flags().GetInt("kernel")
			return e.runAlgorithm(cmd, "filter", map[string]interface{}{
				"type":        kind,
				"kernel_size": size,
			})
		},
	}
	addImageFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.StringP("type", "t", "gaussian", "filter type (average|gaussian|median)")
	pf.IntP("kernel", "k", 3, "odd kernel size")
	return cmd
}

func NewEdgeCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "sobel, roberts, prewitt or canny edge map",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("operator")
			op, err := algorithms.ParseEdgeOperator(name)
			if err != nil {
				return err
			}
			params := map[string]interface{}{}
			if op == algorithms.EdgeCanny {
				params["low"], _ = cmd.Flags().GetFloat64("low")
				params["high"], _ = cmd.Flags().GetFloat64("high")
			}
			return e.runAlgorithm(cmd, op.String(), params)
		},
	}
	addImageFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.StringP("operator", "p", "sobel", "edge operator (sobel|roberts|prewitt|canny)")
	pf.Float64("low", 100, "canny low threshold")
	pf.Float64("high", 200, "canny high threshold")
	return cmd
}

func NewFFTCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fft",
		Short: "ideal low- or high-pass filter in the frequency domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("mode")
			radius, _ := cmd.Flags().GetInt("radius")
			return e.runAlgorithm(cmd, "fft", map[string]interface{}{
				"mode":   mode,
				"radius": radius,
			})
		},
	}
	addImageFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.StringP("mode", "m", "low_pass", "filter mode (low_pass|high_pass)")
	pf.IntP("radius", "r", 30, "cutoff radius in frequency samples")
	return cmd
}

func NewSpectrumCmd(ctx context.Context, e *env) *cobra.Command {
	return newPlainCmd(e, "spectrum", "spectrum", "centered log-magnitude spectrum")
}

func NewGrayCmd(ctx context.Context, e *env) *cobra.Command {
	return newPlainCmd(e, "gray", "grayscale", "convert to single-channel luma")
}

func NewEqualizeCmd(ctx context.Context, e *env) *cobra.Command {
	return newPlainCmd(e, "equalize", "equalize", "histogram equalization per channel")
}

func NewNormalizeCmd(ctx context.Context, e *env) *cobra.Command {
	return newPlainCmd(e, "normalize", "normalize", "min-max stretch to 0..255 per channel")
}

func newPlainCmd(e *env, use, algorithm, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runAlgorithm(cmd, algorithm, nil)
		},
	}
	addImageFlags(cmd)
	return cmd
}

func NewMorphCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "morph",
		Short: "erode, dilate, open or close with a square element",
		RunE: func(cmd *cobra.Command, args []string) error {
			op, _ := cmd.Flags().GetString("op")
			size, _ := cmd.Flags().GetInt("kernel")
			iterations, _ := cmd.Flags().GetInt("iterations")
			switch op {
			case "erode", "dilate", "open", "close":
			default:
				return fmt.Errorf("unknown morphology op %q", op)
			}
			return e.runAlgorithm(cmd, op, map[string]interface{}{
				"kernel_size": size,
				"iterations":  iterations,
			})
		},
	}
	addImageFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.String("op", "open", "operation (erode|dilate|open|close)")
	pf.IntP("kernel", "k", 3, "odd structuring element size")
	pf.Int("iterations", 1, "repetitions of the operation")
	return cmd
}

func NewThresholdCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threshold",
		Short: "binarize on luma, using Otsu's level unless --level is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetInt("level")
			return e.runAlgorithm(cmd, "otsu", map[string]interface{}{"threshold": level})
		},
	}
	addImageFlags(cmd)
	cmd.PersistentFlags().Int("level", -1, "fixed threshold 0..255, -1 for Otsu")
	return cmd
}
