package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"image-processing-engine/internal/config"
	imgio "image-processing-engine/internal/io"
	"image-processing-engine/internal/logging"
)

// env carries what PersistentPreRunE builds for the subcommands.
type env struct {
	logger *logrus.Logger
	closer io.Closer
	loader *imgio.ImageLoader
}

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	e := &env{}
	cmd := &cobra.Command{
		Use:           "imgctl",
		Short:         "image processing engine",
		Long:          "noise, filtering, edge detection, frequency filtering, enhancement, hybrid images and quality metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFile, _ := cmd.Flags().GetString("log-file")
			logFormat, _ := cmd.Flags().GetString("log-format")
			debug, _ := cmd.Flags().GetBool("debug")

			cfg := config.LogConfig{
				Level:  strings.ToLower(logLevel),
				Format: logFormat,
				File:   logFile,
			}
			logger, closer, err := logging.New(cfg, debug, os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			e.logger = logger
			e.closer = closer
			e.loader = imgio.NewImageLoader(logger)
			logger.WithFields(logrus.Fields{
				"version": gitsha,
				"command": cmd.CommandPath(),
			}).Debug("Starting")
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.closer != nil {
				return e.closer.Close()
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd.OutOrStdout(), cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewNoiseCmd(ctx, e),
		NewFilterCmd(ctx, e),
		NewEdgeCmd(ctx, e),
		NewFFTCmd(ctx, e),
		NewSpectrumCmd(ctx, e),
		NewGrayCmd(ctx, e),
		NewEqualizeCmd(ctx, e),
		NewNormalizeCmd(ctx, e),
		NewMorphCmd(ctx, e),
		NewThresholdCmd(ctx, e),
		NewHybridCmd(ctx, e),
		NewHistogramCmd(ctx, e),
		NewPipelineCmd(ctx, e),
		NewCompareCmd(ctx, e),
		NewListCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-format", "json", "Log format (json|text)")
	pf.String("log-file", "", "also write logs to this file, rotated by size")
	pf.Bool("debug", false, "debug logging with text output")
	return cmd
}

func printCommandTree(w io.Writer, cmd *cobra.Command, indent int) {
	fmt.Fprintln(w, strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(w, subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}
