package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processing-engine/internal/core"
)

const sequentialRecipe = `
name: denoise
metrics: true
steps:
  - algorithm: noise
    params:
      type: gaussian
      intensity: 20
      seed: 7
  - algorithm: filter
    params:
      type: median
      kernel_size: 3
  - algorithm: canny
    enabled: false
`

func TestParseRecipe_Defaults(t *testing.T) {
	recipe, err := ParseRecipe(strings.NewReader(sequentialRecipe))
	require.NoError(t, err)

	assert.Equal(t, "denoise", recipe.Name)
	assert.Equal(t, ModeSequential, recipe.Mode)
	assert.Equal(t, core.DefaultHistoryLimit, recipe.HistoryLimit)
	assert.True(t, recipe.Metrics)
	require.Len(t, recipe.Steps, 3)

	assert.Equal(t, 3, recipe.Steps[1].Params["kernel_size"])
	assert.True(t, recipe.Steps[0].IsEnabled())
	assert.False(t, recipe.Steps[2].IsEnabled())
	assert.Equal(t, 1.0, recipe.Steps[1].OpacityOrDefault())
	assert.Equal(t, "canny", recipe.Steps[2].Label())
}

func TestParseRecipe_Layers(t *testing.T) {
	recipe, err := ParseRecipe(strings.NewReader(`
mode: layers
regions:
  - name: left
    rect: [0, 0, 10, 20]
  - name: tri
    points: [[0, 0], [5, 0], [0, 5]]
steps:
  - name: edges
    algorithm: sobel
    opacity: 0.5
    blend: screen
    region: left
`))
	require.NoError(t, err)
	assert.Equal(t, ModeLayers, recipe.Mode)
	require.Len(t, recipe.Regions, 2)
	assert.Equal(t, [2]int{5, 0}, recipe.Regions[1].Points[1])
	assert.Equal(t, 0.5, recipe.Steps[0].OpacityOrDefault())
	assert.Equal(t, "edges", recipe.Steps[0].Label())
}

func TestParseRecipe_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"Empty", "", core.ErrEmptyInput},
		{"NoSteps", "mode: sequential\n", core.ErrEmptyInput},
		{"BadMode", "mode: parallel\nsteps: [{algorithm: sobel}]\n", core.ErrInvalidParameter},
		{"UnknownField", "steps: [{algorithm: sobel, colour: red}]\n", core.ErrInvalidParameter},
		{"UnknownAlgorithm", "steps: [{algorithm: sharpen}]\n", core.ErrInvalidParameter},
		{"EvenKernel", "steps: [{algorithm: filter, params: {kernel_size: 4}}]\n", core.ErrInvalidParameter},
		{"OpacityRange", "mode: layers\nsteps: [{algorithm: sobel, opacity: 1.5}]\n", core.ErrInvalidParameter},
		{"UnknownRegion", "mode: layers\nsteps: [{algorithm: sobel, region: nowhere}]\n", core.ErrInvalidParameter},
		{"UnknownBlend", "mode: layers\nsteps: [{algorithm: sobel, blend: dissolve}]\n", core.ErrInvalidParameter},
		{"BlendInSequential", "steps: [{algorithm: sobel, blend: screen}]\n", core.ErrInvalidParameter},
		{"ShortRect", "mode: layers\nregions: [{name: r, rect: [1, 2]}]\nsteps: [{algorithm: sobel}]\n", core.ErrInvalidParameter},
		{"ShortPolygon", "mode: layers\nregions: [{name: p, points: [[0, 0], [1, 1]]}]\nsteps: [{algorithm: sobel}]\n", core.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecipe(strings.NewReader(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadRecipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sequentialRecipe), 0o644))

	recipe, err := LoadRecipe(path)
	require.NoError(t, err)
	assert.Len(t, recipe.Steps, 3)

	_, err = LoadRecipe(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLogConfig(t *testing.T) {
	cfg := LogConfig{Level: "debug"}.Merge(DefaultLogConfig())
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 50, cfg.MaxSizeMB)
	assert.NoError(t, cfg.Validate())

	assert.ErrorIs(t, LogConfig{Level: "loud", Format: "json"}.Validate(), core.ErrInvalidParameter)
	assert.ErrorIs(t, LogConfig{Level: "info", Format: "xml"}.Validate(), core.ErrInvalidParameter)
}
