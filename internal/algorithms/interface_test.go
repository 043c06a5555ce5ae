package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processing-engine/internal/core"
)

func TestRegistry_Names(t *testing.T) {
	names := Names()
	assert.IsIncreasing(t, names)
	for _, name := range []string{"noise", "filter", "sobel", "roberts", "prewitt", "canny", "fft", "spectrum", "grayscale", "equalize", "normalize", "otsu"} {
		assert.Contains(t, names, name)
		assert.True(t, IsValidAlgorithm(name))
	}

	var categorized int
	for _, members := range GetAlgorithmsByCategory() {
		for _, name := range members {
			assert.True(t, IsValidAlgorithm(name), name)
			categorized++
		}
	}
	assert.Equal(t, len(names), categorized)
}

func TestRegistry_DefaultsValidate(t *testing.T) {
	for _, name := range Names() {
		algorithm, ok := Get(name)
		require.True(t, ok)
		assert.NoError(t, algorithm.Validate(algorithm.GetDefaultParams()), name)
		assert.NotEmpty(t, algorithm.GetName(), name)
		assert.NotEmpty(t, algorithm.GetDescription(), name)
	}
}

func TestApply_AcceptsIntegerParams(t *testing.T) {
	img := randomBuffer(t, 9, 9, 3, 2)

	// YAML decodes whole numbers as int.
	out, err := Apply("filter", img, map[string]interface{}{"type": "median", "kernel_size": 5})
	require.NoError(t, err)
	want, err := ApplyFilter(img, FilterMedian, 5)
	require.NoError(t, err)
	assert.True(t, out.Equal(want))

	out, err = Apply("fft", img, map[string]interface{}{"mode": "high_pass", "radius": int64(3)})
	require.NoError(t, err)
	want, err = ApplyFFT(img, HighPass, 3)
	require.NoError(t, err)
	assert.True(t, out.Equal(want))
}

func TestApply_ValidationErrors(t *testing.T) {
	img := randomBuffer(t, 5, 5, 1, 1)

	tests := []struct {
		name   string
		algo   string
		params map[string]interface{}
	}{
		{"UnknownAlgorithm", "sharpen", nil},
		{"EvenKernel", "filter", map[string]interface{}{"kernel_size": 4}},
		{"FractionalKernel", "filter", map[string]interface{}{"kernel_size": 3.5}},
		{"BadFilterType", "filter", map[string]interface{}{"type": "bilateral"}},
		{"IntensityTooHigh", "noise", map[string]interface{}{"intensity": 150.0}},
		{"CannyOrder", "canny", map[string]interface{}{"low": 90, "high": 30}},
		{"ZeroRadius", "fft", map[string]interface{}{"radius": 0}},
		{"WrongType", "fft", map[string]interface{}{"mode": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(tt.algo, img, tt.params)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, core.ErrInvalidParameter)
		})
	}
}

func TestApply_SeededNoiseIsReproducible(t *testing.T) {
	img := randomBuffer(t, 8, 8, 1, 3)
	params := map[string]interface{}{"type": "uniform", "intensity": 30, "seed": 99}

	a, err := Apply("noise", img, params)
	require.NoError(t, err)
	b, err := Apply("noise", img, params)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestParamFloat_Strings(t *testing.T) {
	v, err := paramFloat(map[string]interface{}{"x": "2.5"}, "x", 0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = paramFloat(map[string]interface{}{"x": "abc"}, "x", 0)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	v, err = paramFloat(nil, "x", 7)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}
