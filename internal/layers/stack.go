// Layer stack: ordered algorithm layers blended over a running image
package layers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"image-processing-engine/internal/algorithms"
	"image-processing-engine/internal/core"
)

// Layer represents a processing layer with optional region mask
type Layer struct {
	ID         string
	Name       string
	Algorithm  string
	Parameters map[string]interface{}
	RegionID   string // Optional region selection ID
	Enabled    bool
	BlendMode  BlendMode
	Opacity    float64 // 0.0 to 1.0
}

// BlendMode defines how layers combine
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendOverlay
	BlendMultiply
	BlendScreen
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendOverlay:
		return "overlay"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	}
	return "unknown"
}

// ParseBlendMode accepts the lower-case mode names; "" selects normal.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return BlendNormal, nil
	case "overlay":
		return BlendOverlay, nil
	case "multiply":
		return BlendMultiply, nil
	case "screen":
		return BlendScreen, nil
	}
	return 0, core.InvalidParameterf("unknown blend mode: %q", s)
}

// LayerStack manages multiple processing layers
type LayerStack struct {
	mu            sync.RWMutex
	layers        []*Layer
	regionManager *core.RegionManager
	logger        *logrus.Logger
}

// NewLayerStack creates an empty stack. regionManager may be nil when no
// layer uses a region.
func NewLayerStack(regionManager *core.RegionManager, logger *logrus.Logger) *LayerStack {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LayerStack{
		layers:        make([]*Layer, 0),
		regionManager: regionManager,
		logger:        logger,
	}
}

// AddLayer appends an enabled, fully opaque normal layer and returns its ID.
func (ls *LayerStack) AddLayer(name, algorithm string, params map[string]interface{}, regionID string) (string, error) {
	if err := algorithms.ValidateParameters(algorithm, params); err != nil {
		return "", fmt.Errorf("layer %q: %w", name, err)
	}
	if regionID != "" && (ls.regionManager == nil || ls.regionManager.GetSelection(regionID) == nil) {
		return "", fmt.Errorf("layer %q: %w", name, core.InvalidParameterf("unknown selection: %s", regionID))
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	layer := &Layer{
		ID:         uuid.NewString(),
		Name:       name,
		Algorithm:  algorithm,
		Parameters: params,
		RegionID:   regionID,
		Enabled:    true,
		BlendMode:  BlendNormal,
		Opacity:    1.0,
	}
	ls.layers = append(ls.layers, layer)

	ls.logger.WithFields(logrus.Fields{
		"layer_id":  layer.ID,
		"name":      name,
		"algorithm": algorithm,
	}).Debug("Layer added")
	return layer.ID, nil
}

// GetLayers returns copies of all layers in order
func (ls *LayerStack) GetLayers() []Layer {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	result := make([]Layer, len(ls.layers))
	for i, l := range ls.layers {
		result[i] = *l
	}
	return result
}

// Len returns the number of layers.
func (ls *LayerStack) Len() int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return len(ls.layers)
}

func (ls *LayerStack) find(id string) (int, *Layer, error) {
	for i, l := range ls.layers {
		if l.ID == id {
			return i, l, nil
		}
	}
	return -1, nil, core.InvalidParameterf("layer not found: %s", id)
}

// RemoveLayer deletes a layer
func (ls *LayerStack) RemoveLayer(id string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	i, _, err := ls.find(id)
	if err != nil {
		return err
	}
	ls.layers = append(ls.layers[:i], ls.layers[i+1:]...)
	return nil
}

// MoveLayer moves a layer to position index, clamped to the stack bounds.
func (ls *LayerStack) MoveLayer(id string, index int) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	i, layer, err := ls.find(id)
	if err != nil {
		return err
	}
	rest := append(ls.layers[:i:i], ls.layers[i+1:]...)
	index = max(0, min(index, len(rest)))

	moved := make([]*Layer, 0, len(ls.layers))
	moved = append(moved, rest[:index]...)
	moved = append(moved, layer)
	moved = append(moved, rest[index:]...)
	ls.layers = moved
	return nil
}

// SetEnabled toggles a layer
func (ls *LayerStack) SetEnabled(id string, enabled bool) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	_, layer, err := ls.find(id)
	if err != nil {
		return err
	}
	layer.Enabled = enabled
	return nil
}

// SetOpacity sets a layer's opacity, which must be in [0,1].
func (ls *LayerStack) SetOpacity(id string, opacity float64) error {
	if !(opacity >= 0 && opacity <= 1) {
		return core.InvalidParameterf("opacity must be in [0,1], got %v", opacity)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	_, layer, err := ls.find(id)
	if err != nil {
		return err
	}
	layer.Opacity = opacity
	return nil
}

// SetBlendMode changes how a layer combines with the layers below it.
func (ls *LayerStack) SetBlendMode(id string, mode BlendMode) error {
	if mode < BlendNormal || mode > BlendScreen {
		return core.InvalidParameterf("unknown blend mode: %d", int(mode))
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	_, layer, err := ls.find(id)
	if err != nil {
		return err
	}
	layer.BlendMode = mode
	return nil
}

// ProcessLayers applies all enabled layers to input image. Each layer runs
// on the result of the layers below it.
func (ls *LayerStack) ProcessLayers(ctx context.Context, input *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := core.ValidateBuffer(input); err != nil {
		return nil, core.WrapOp("process_layers", err)
	}

	result := input
	for _, layer := range ls.GetLayers() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !layer.Enabled {
			continue
		}

		processed, err := algorithms.Apply(layer.Algorithm, result, layer.Parameters)
		if err != nil {
			return nil, fmt.Errorf("layer %q (%s): %w", layer.Name, layer.Algorithm, err)
		}

		var mask []bool
		if layer.RegionID != "" && ls.regionManager != nil {
			mask, err = ls.regionManager.CreateMaskForSelection(layer.RegionID, result.Width(), result.Height())
			if err != nil {
				return nil, fmt.Errorf("layer %q: %w", layer.Name, err)
			}
		}

		result, err = Blend(result, processed, layer.BlendMode, layer.Opacity, mask)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", layer.Name, err)
		}

		ls.logger.WithFields(logrus.Fields{
			"layer_id": layer.ID,
			"blend":    layer.BlendMode.String(),
			"opacity":  layer.Opacity,
			"masked":   mask != nil,
		}).Debug("Layer applied")
	}

	if result == input {
		result = input.Clone()
	}
	return result, nil
}
