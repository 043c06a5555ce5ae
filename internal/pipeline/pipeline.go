// Recipe runner combining sequential and layer-based processing
package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"image-processing-engine/internal/algorithms"
	"image-processing-engine/internal/config"
	"image-processing-engine/internal/core"
	"image-processing-engine/internal/layers"
	"image-processing-engine/internal/metrics"
)

// StepReport describes one executed step (sequential mode) or layer.
type StepReport struct {
	Index     int                `json:"index"`
	Name      string             `json:"name"`
	Algorithm string             `json:"algorithm"`
	Skipped   bool               `json:"skipped,omitempty"`
	Duration  time.Duration      `json:"duration"`
	Shape     string             `json:"shape,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID    string             `json:"run_id"`
	Mode     string             `json:"mode"`
	Output   *core.PixelBuffer  `json:"-"`
	Steps    []StepReport       `json:"steps"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Duration time.Duration      `json:"duration"`
}

// Pipeline runs a validated recipe. In sequential mode every step result is
// pushed to the history so callers can undo; in layers mode the steps become
// a layer stack blended over the input.
type Pipeline struct {
	recipe    *config.Recipe
	logger    *logrus.Logger
	history   *core.History
	regions   *core.RegionManager
	regionIDs map[string]string
	evaluator *metrics.Evaluator
	stats     *Stats
}

// New prepares a pipeline for recipe, registering its regions.
func New(recipe *config.Recipe, logger *logrus.Logger) (*Pipeline, error) {
	if recipe == nil {
		return nil, core.EmptyInputf("recipe is nil")
	}
	if err := recipe.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	p := &Pipeline{
		recipe:    recipe,
		logger:    logger,
		history:   core.NewHistory(recipe.HistoryLimit),
		regions:   core.NewRegionManager(),
		regionIDs: make(map[string]string, len(recipe.Regions)),
		evaluator: metrics.NewEvaluator(),
		stats:     NewStats(logger),
	}
	for _, region := range recipe.Regions {
		id, err := p.addRegion(region)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", region.Name, err)
		}
		p.regionIDs[region.Name] = id
	}
	return p, nil
}

func (p *Pipeline) addRegion(region config.Region) (string, error) {
	if len(region.Rect) == 4 {
		r := region.Rect
		return p.regions.CreateRectangleSelection(image.Rect(r[0], r[1], r[2], r[3]))
	}
	points := make([]image.Point, len(region.Points))
	for i, pt := range region.Points {
		points[i] = image.Pt(pt[0], pt[1])
	}
	return p.regions.CreatePolygonSelection(points)
}

// History exposes the undo history of the last sequential run.
func (p *Pipeline) History() *core.History { return p.history }

// Stats exposes the recorded operation timings.
func (p *Pipeline) Stats() *Stats { return p.stats }

// Run processes input according to the recipe. source labels the input in
// logs and history, typically the file path.
func (p *Pipeline) Run(ctx context.Context, input *core.PixelBuffer, source string) (*Result, error) {
	if err := core.ValidateBuffer(input); err != nil {
		return nil, core.WrapOp("pipeline", err)
	}

	start := time.Now()
	result := &Result{
		RunID: uuid.NewString(),
		Mode:  p.recipe.Mode,
		Steps: make([]StepReport, 0, len(p.recipe.Steps)),
	}
	log := p.logger.WithFields(logrus.Fields{
		"run_id": result.RunID,
		"mode":   result.Mode,
		"source": source,
		"input":  input.String(),
	})
	log.Info("Pipeline started")

	var err error
	if p.recipe.Mode == config.ModeLayers {
		err = p.runLayers(ctx, input, result)
	} else {
		err = p.runSequential(ctx, input, source, result)
	}
	result.Duration = time.Since(start)
	p.stats.Record("run", result.Duration, logrus.Fields{"run_id": result.RunID}, err)
	if err != nil {
		return nil, err
	}

	if p.recipe.Metrics {
		metricsStart := time.Now()
		report, mErr := p.evaluator.GenerateReport(input, result.Output)
		if mErr == nil {
			result.Metrics = report.Metrics
			result.Metrics["overall_score"] = report.OverallScore
		}
		p.stats.Record("metrics", time.Since(metricsStart), logrus.Fields{"run_id": result.RunID}, nil)
	}

	log.WithFields(logrus.Fields{
		"output":      result.Output.String(),
		"duration_ms": result.Duration.Milliseconds(),
		"steps":       len(result.Steps),
	}).Info("Pipeline completed")
	return result, nil
}

func (p *Pipeline) runSequential(ctx context.Context, input *core.PixelBuffer, source string, result *Result) error {
	if err := p.history.SetOriginal(input, source); err != nil {
		return err
	}

	for i, step := range p.recipe.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		report := StepReport{Index: i, Name: step.Label(), Algorithm: step.Algorithm}
		if !step.IsEnabled() {
			p.logger.WithFields(logrus.Fields{"step": i, "algorithm": step.Algorithm}).Debug("Skipping disabled step")
			report.Skipped = true
			result.Steps = append(result.Steps, report)
			continue
		}

		current := p.history.Current()
		stepStart := time.Now()
		out, err := algorithms.Apply(step.Algorithm, current, step.Params)
		report.Duration = time.Since(stepStart)
		p.stats.Record("step", report.Duration, logrus.Fields{"step": i, "algorithm": step.Algorithm}, err)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Label(), err)
		}

		if p.recipe.Metrics {
			report.Metrics = p.evaluator.EvaluateStep(current, out, step.Algorithm)
		}
		if err := p.history.Push(out); err != nil {
			return err
		}
		report.Shape = out.String()
		result.Steps = append(result.Steps, report)
	}

	result.Output = p.history.Current()
	return nil
}

func (p *Pipeline) runLayers(ctx context.Context, input *core.PixelBuffer, result *Result) error {
	stack := layers.NewLayerStack(p.regions, p.logger)

	for i, step := range p.recipe.Steps {
		id, err := stack.AddLayer(step.Label(), step.Algorithm, step.Params, p.regionIDs[step.Region])
		if err != nil {
			return err
		}
		mode, err := layers.ParseBlendMode(step.Blend)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Label(), err)
		}
		if err := stack.SetBlendMode(id, mode); err != nil {
			return err
		}
		if err := stack.SetOpacity(id, step.OpacityOrDefault()); err != nil {
			return err
		}
		if err := stack.SetEnabled(id, step.IsEnabled()); err != nil {
			return err
		}
		result.Steps = append(result.Steps, StepReport{
			Index:     i,
			Name:      step.Label(),
			Algorithm: step.Algorithm,
			Skipped:   !step.IsEnabled(),
		})
	}

	start := time.Now()
	out, err := stack.ProcessLayers(ctx, input)
	p.stats.Record("layers", time.Since(start), logrus.Fields{"layer_count": stack.Len()}, err)
	if err != nil {
		return err
	}
	result.Output = out
	return nil
}
