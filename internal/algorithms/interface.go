// Named algorithm registry used by the pipeline, the layer stack and the CLI
package algorithms

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"image-processing-engine/internal/core"
)

// Algorithm defines the interface for single-input image operations
type Algorithm interface {
	Apply(input *core.PixelBuffer, params map[string]interface{}) (*core.PixelBuffer, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for UI and CLI generation
type ParameterInfo struct {
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"` // "int", "float", "string", "enum"
	Min         interface{} `json:"min,omitempty" yaml:"min,omitempty"`
	Max         interface{} `json:"max,omitempty" yaml:"max,omitempty"`
	Default     interface{} `json:"default" yaml:"default"`
	Description string      `json:"description" yaml:"description"`
	Options     []string    `json:"options,omitempty" yaml:"options,omitempty"` // For enum type
}

// algorithms is filled by init and read-only afterwards.
var algorithms = make(map[string]Algorithm)

func register(name string, algorithm Algorithm) {
	if _, dup := algorithms[name]; dup {
		panic("algorithms: duplicate registration of " + name)
	}
	algorithms[name] = algorithm
}

func Get(name string) (Algorithm, bool) {
	algorithm, exists := algorithms[name]
	return algorithm, exists
}

// Apply validates params and runs the named algorithm.
func Apply(name string, input *core.PixelBuffer, params map[string]interface{}) (*core.PixelBuffer, error) {
	algorithm, exists := algorithms[name]
	if !exists {
		return nil, core.InvalidParameterf("algorithm not found: %s", name)
	}
	if err := algorithm.Validate(params); err != nil {
		return nil, core.WrapOp(name, err)
	}
	return algorithm.Apply(input, params)
}

func ValidateParameters(name string, params map[string]interface{}) error {
	algorithm, exists := algorithms[name]
	if !exists {
		return core.InvalidParameterf("algorithm not found: %s", name)
	}

	return algorithm.Validate(params)
}

func IsValidAlgorithm(name string) bool {
	_, exists := algorithms[name]
	return exists
}

// Names returns the registered algorithm names in sorted order.
func Names() []string {
	names := lo.Keys(algorithms)
	sort.Strings(names)
	return names
}

func GetAlgorithmsByCategory() map[string][]string {
	return map[string][]string{
		"Noise":      {"noise"},
		"Filters":    {"filter"},
		"Edges":      {"sobel", "roberts", "prewitt", "canny"},
		"Frequency":  {"fft", "spectrum"},
		"Enhance":    {"grayscale", "equalize", "normalize"},
		"Morphology": {"erode", "dilate", "open", "close"},
		"Threshold":  {"otsu"},
	}
}

func init() {
	register("noise", NewNoiseAlgorithm())
	register("filter", NewSpatialFilter())

	register("sobel", NewEdgeAlgorithm(EdgeSobel))
	register("roberts", NewEdgeAlgorithm(EdgeRoberts))
	register("prewitt", NewEdgeAlgorithm(EdgePrewitt))
	register("canny", NewEdgeAlgorithm(EdgeCanny))

	register("fft", NewFrequencyAlgorithm())
	register("spectrum", NewSpectrumAlgorithm())

	register("grayscale", NewEnhanceAlgorithm(EnhanceGrayscale))
	register("equalize", NewEnhanceAlgorithm(EnhanceEqualize))
	register("normalize", NewEnhanceAlgorithm(EnhanceNormalize))

	register("erode", NewMorphologyAlgorithm(MorphErode))
	register("dilate", NewMorphologyAlgorithm(MorphDilate))
	register("open", NewMorphologyAlgorithm(MorphOpen))
	register("close", NewMorphologyAlgorithm(MorphClose))

	register("otsu", NewOtsuAlgorithm())
}

// Parameter extraction. Values may arrive as float64 (JSON), int (YAML) or
// string (CLI), so every numeric kind is accepted.

func paramFloat(params map[string]interface{}, key string, def float64) (float64, error) {
	val, ok := params[key]
	if !ok || val == nil {
		return def, nil
	}
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		var f float64
		if _, err := fmt.Sscan(v, &f); err != nil {
			return 0, core.InvalidParameterf("%s: cannot parse %q as number", key, v)
		}
		return f, nil
	default:
		return 0, core.InvalidParameterf("%s: unsupported value type %T", key, val)
	}
}

func paramInt(params map[string]interface{}, key string, def int) (int, error) {
	f, err := paramFloat(params, key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, core.InvalidParameterf("%s must be an integer, got %v", key, f)
	}
	return int(f), nil
}

func paramString(params map[string]interface{}, key, def string) (string, error) {
	val, ok := params[key]
	if !ok || val == nil {
		return def, nil
	}
	s, ok := val.(string)
	if !ok {
		return "", core.InvalidParameterf("%s must be a string, got %T", key, val)
	}
	return s, nil
}
