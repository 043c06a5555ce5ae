package cmd

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"image-processing-engine/internal/algorithms"
	imgio "image-processing-engine/internal/io"
)

func NewHybridCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hybrid",
		Short: "low frequencies of --low combined with high frequencies of --high",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, aPath, err := e.loadInput(cmd, "low")
			if err != nil {
				return err
			}
			b, bPath, err := e.loadInput(cmd, "high")
			if err != nil {
				return err
			}
			outPath, _ := cmd.Flags().GetString("out")
			radiusA, _ := cmd.Flags().GetInt("radius-low")
			radiusB, _ := cmd.Flags().GetInt("radius-high")

			if resize, _ := cmd.Flags().GetBool("resize"); resize && !a.SameShape(b) {
				e.logger.WithFields(logrus.Fields{
					"from": b.String(),
					"to":   a.String(),
				}).Info("Resizing high-frequency source")
				if b, err = imgio.MatchSize(a, b); err != nil {
					return err
				}
			}

			start := time.Now()
			out, err := algorithms.CreateHybrid(a, b, radiusA, radiusB)
			if err != nil {
				e.logger.WithError(err).Error("Hybrid failed")
				return err
			}
			e.logger.WithFields(logrus.Fields{
				"low":         aPath,
				"high":        bPath,
				"radius_low":  radiusA,
				"radius_high": radiusB,
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("Hybrid created")
			return e.loader.SaveImage(out, outPath)
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("low", "", "image providing the low frequencies")
	pf.String("high", "", "image providing the high frequencies")
	pf.StringP("out", "o", "", "output image path")
	pf.Int("radius-low", 20, "low-pass cutoff radius")
	pf.Int("radius-high", 20, "high-pass cutoff radius")
	pf.Bool("resize", false, "resize --high to match --low instead of failing on mismatch")
	pf.Bool("gray", false, "load both inputs as single-channel images")
	_ = cmd.MarkPersistentFlagRequired("low")
	_ = cmd.MarkPersistentFlagRequired("high")
	_ = cmd.MarkPersistentFlagRequired("out")
	return cmd
}
