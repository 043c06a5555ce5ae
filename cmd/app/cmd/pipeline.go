package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"image-processing-engine/internal/config"
	"image-processing-engine/internal/logging"
	"image-processing-engine/internal/pipeline"
)

func NewPipelineCmd(ctx context.Context, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "run a YAML recipe of steps or layers over an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			recipePath, _ := cmd.Flags().GetString("recipe")
			recipe, err := config.LoadRecipe(recipePath)
			if err != nil {
				return err
			}

			logger := e.logger
			if recipe.Log.File != "" && !cmd.Flags().Changed("log-file") {
				debug, _ := cmd.Flags().GetBool("debug")
				recipeLogger, closer, err := logging.New(recipe.Log, debug, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer closer.Close()
				logger = recipeLogger
			}

			input, inPath, err := e.loadInput(cmd, "in")
			if err != nil {
				return err
			}
			outPath, _ := cmd.Flags().GetString("out")

			p, err := pipeline.New(recipe, logger)
			if err != nil {
				return err
			}
			result, err := p.Run(ctx, input, inPath)
			if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
				p.Stats().WriteStatus(cmd.ErrOrStderr(), 10)
			}
			if err != nil {
				return err
			}
			if err := e.loader.SaveImage(result.Output, outPath); err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"recipe": recipe.Name,
				"run_id": result.RunID,
				"output": outPath,
			}).Info("Recipe applied")

			if report, _ := cmd.Flags().GetBool("report"); report {
				result.Metrics = finiteMetrics(result.Metrics)
				for i := range result.Steps {
					result.Steps[i].Metrics = finiteMetrics(result.Steps[i].Metrics)
				}
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}
	addImageFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.StringP("recipe", "r", "", "recipe YAML file")
	pf.Bool("stats", false, "print operation timings to stderr")
	pf.Bool("report", false, "print the run report as JSON")
	_ = cmd.MarkPersistentFlagRequired("recipe")
	return cmd
}
