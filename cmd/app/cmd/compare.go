package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"image-processing-engine/internal/metrics"
)

func NewCompareCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "quality report of a processed image against its original",
		RunE: func(cmd *cobra.Command, args []string) error {
			original, _, err := e.loadInput(cmd, "original")
			if err != nil {
				return err
			}
			processed, _, err := e.loadInput(cmd, "processed")
			if err != nil {
				return err
			}

			report, err := metrics.NewEvaluator().GenerateReport(original, processed)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch format, _ := cmd.Flags().GetString("format"); format {
			case "json":
				report.Metrics = finiteMetrics(report.Metrics)
				return writeJSON(w, report)
			case "text":
				fmt.Fprintf(w, "overall: %.1f (%s)\n", report.OverallScore, report.Analysis.QualityLevel)
				names := lo.Keys(report.Metrics)
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(w, "  %-22s %s\n", name, formatMetric(report.Metrics[name]))
				}
				for _, issue := range report.Analysis.Issues {
					fmt.Fprintf(w, "issue: %s\n", issue)
				}
				for _, s := range report.Analysis.Suggestions {
					fmt.Fprintf(w, "suggestion: %s\n", s)
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("original", "", "reference image")
	pf.String("processed", "", "image to evaluate")
	pf.Bool("gray", false, "load both images as single-channel")
	pf.StringP("format", "f", "text", "output format (text|json)")
	_ = cmd.MarkPersistentFlagRequired("original")
	_ = cmd.MarkPersistentFlagRequired("processed")
	return cmd
}
