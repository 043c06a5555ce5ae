package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"image-processing-engine/internal/algorithms"
)

// histogramDoc is the JSON shape of the histogram command.
type histogramDoc struct {
	Source     string           `json:"source"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Cumulative bool             `json:"cumulative"`
	Channels   map[string][]int `json:"channels"`
}

func channelNames(n int) []string {
	if n == 1 {
		return []string{"gray"}
	}
	return []string{"blue", "green", "red"}
}

func NewHistogramCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "histogram",
		Short: "per-channel intensity histogram or CDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			img, path, err := e.loadInput(cmd, "in")
			if err != nil {
				return err
			}
			cdf, _ := cmd.Flags().GetBool("cdf")

			var hist algorithms.Histogram
			if cdf {
				hist, err = algorithms.CalculateCDF(img)
			} else {
				hist, err = algorithms.CalculateHistogram(img)
			}
			if err != nil {
				return err
			}

			names := channelNames(hist.Channels())
			switch format, _ := cmd.Flags().GetString("format"); format {
			case "text":
				writeHistogramText(cmd.OutOrStdout(), hist, names)
				return nil
			case "json":
				doc := histogramDoc{
					Source:     path,
					Width:      img.Width(),
					Height:     img.Height(),
					Cumulative: cdf,
					Channels:   make(map[string][]int, len(names)),
				}
				for c, name := range names {
					doc.Channels[name] = hist[c][:]
				}
				return writeJSON(cmd.OutOrStdout(), doc)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("in", "i", "", "input image path")
	pf.Bool("gray", false, "load the input as a single-channel image")
	pf.Bool("cdf", false, "print the cumulative distribution instead of counts")
	pf.StringP("format", "f", "json", "output format (text|json)")
	_ = cmd.MarkPersistentFlagRequired("in")
	return cmd
}

// writeHistogramText prints one line per non-empty level.
func writeHistogramText(w io.Writer, hist algorithms.Histogram, names []string) {
	fmt.Fprintf(w, "level\t%s\n", strings.Join(names, "\t"))
	for level := 0; level < algorithms.Levels; level++ {
		row := make([]string, len(names))
		empty := true
		for c := range names {
			v := hist[c][level]
			if v != 0 {
				empty = false
			}
			row[c] = fmt.Sprint(v)
		}
		if empty {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\n", level, strings.Join(row, "\t"))
	}
}
