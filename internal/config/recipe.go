// Pipeline recipes loaded from YAML
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"image-processing-engine/internal/algorithms"
	"image-processing-engine/internal/core"
	"image-processing-engine/internal/layers"
)

// Processing modes
const (
	ModeSequential = "sequential"
	ModeLayers     = "layers"
)

// Recipe describes an ordered list of operations applied to one image.
type Recipe struct {
	Name         string    `yaml:"name,omitempty"`
	Mode         string    `yaml:"mode"`
	HistoryLimit int       `yaml:"history_limit,omitempty"`
	Metrics      bool      `yaml:"metrics"`
	Regions      []Region  `yaml:"regions,omitempty"`
	Steps        []Step    `yaml:"steps"`
	Log          LogConfig `yaml:"log,omitempty"`
}

// Step is one operation of a recipe. Opacity, Blend and Region are only
// used in layers mode.
type Step struct {
	Name      string                 `yaml:"name,omitempty"`
	Algorithm string                 `yaml:"algorithm"`
	Params    map[string]interface{} `yaml:"params,omitempty"`
	Enabled   *bool                  `yaml:"enabled,omitempty"`
	Opacity   *float64               `yaml:"opacity,omitempty"`
	Blend     string                 `yaml:"blend,omitempty"`
	Region    string                 `yaml:"region,omitempty"`
}

// Region names a rectangle or polygon that layers can be restricted to.
// A rectangle is given by Rect as [x0, y0, x1, y1]; a polygon by Points.
type Region struct {
	Name   string   `yaml:"name"`
	Rect   []int    `yaml:"rect,omitempty"`
	Points [][2]int `yaml:"points,omitempty"`
}

// IsEnabled reports whether the step runs; steps are enabled unless
// explicitly switched off.
func (s Step) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// OpacityOrDefault returns the configured opacity or 1.
func (s Step) OpacityOrDefault() float64 {
	if s.Opacity == nil {
		return 1
	}
	return *s.Opacity
}

// Label is the step name, falling back to the algorithm name.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Algorithm
}

// LoadRecipe reads and validates a recipe file.
func LoadRecipe(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe %s: %w", path, err)
	}
	recipe, err := ParseRecipe(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", path, err)
	}
	return recipe, nil
}

// ParseRecipe decodes a recipe, fills defaults and validates it. Unknown
// fields are rejected.
func ParseRecipe(r io.Reader) (*Recipe, error) {
	var recipe Recipe
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&recipe); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.EmptyInputf("recipe is empty")
		}
		return nil, core.InvalidParameterf("failed to parse recipe: %v", err)
	}

	recipe.applyDefaults()
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *Recipe) applyDefaults() {
	if r.Mode == "" {
		r.Mode = ModeSequential
	}
	if r.HistoryLimit <= 0 {
		r.HistoryLimit = core.DefaultHistoryLimit
	}
}

// Validate checks the mode, every step's algorithm and parameters, and the
// region references.
func (r *Recipe) Validate() error {
	if r.Mode != ModeSequential && r.Mode != ModeLayers {
		return core.InvalidParameterf("mode must be %q or %q, got %q", ModeSequential, ModeLayers, r.Mode)
	}
	if len(r.Steps) == 0 {
		return core.EmptyInputf("recipe has no steps")
	}

	regions := make(map[string]bool, len(r.Regions))
	for _, region := range r.Regions {
		if err := region.validate(); err != nil {
			return err
		}
		if regions[region.Name] {
			return core.InvalidParameterf("duplicate region %q", region.Name)
		}
		regions[region.Name] = true
	}

	for i, step := range r.Steps {
		if err := algorithms.ValidateParameters(step.Algorithm, step.Params); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Label(), err)
		}
		if o := step.OpacityOrDefault(); !(o >= 0 && o <= 1) {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Label(), core.InvalidParameterf("opacity must be in [0,1], got %v", o))
		}
		if _, err := layers.ParseBlendMode(step.Blend); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Label(), err)
		}
		if step.Region != "" && !regions[step.Region] {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Label(), core.InvalidParameterf("unknown region %q", step.Region))
		}
		if r.Mode == ModeSequential && (step.Region != "" || step.Blend != "" || step.Opacity != nil) {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Label(), core.InvalidParameterf("opacity, blend and region need mode %q", ModeLayers))
		}
	}
	return nil
}

func (g Region) validate() error {
	if g.Name == "" {
		return core.InvalidParameterf("region without name")
	}
	switch {
	case len(g.Rect) > 0 && len(g.Points) > 0:
		return core.InvalidParameterf("region %q: give rect or points, not both", g.Name)
	case len(g.Rect) > 0:
		if len(g.Rect) != 4 {
			return core.InvalidParameterf("region %q: rect needs 4 values, got %d", g.Name, len(g.Rect))
		}
	case len(g.Points) < 3:
		return core.InvalidParameterf("region %q: polygon needs at least 3 points", g.Name)
	}
	return nil
}
