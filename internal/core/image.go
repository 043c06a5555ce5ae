// Buffer history with undo, owned by callers of the engine
package core

import (
	"fmt"
	"sync"
)

// DefaultHistoryLimit caps the undo stack when no limit is given.
const DefaultHistoryLimit = 20

// History keeps the original buffer, the current buffer and the buffers that
// preceded it. Buffers are immutable, so storing pointers is enough.
type History struct {
	mu       sync.RWMutex
	original *PixelBuffer
	current  *PixelBuffer
	undo     []*PixelBuffer
	limit    int
	source   string
}

// NewHistory creates an empty history. limit <= 0 selects DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// SetOriginal starts a new history from buf and drops any previous state.
func (h *History) SetOriginal(buf *PixelBuffer, source string) error {
	if err := ValidateBuffer(buf); err != nil {
		return fmt.Errorf("cannot set original: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.original = buf
	h.current = buf
	h.undo = h.undo[:0]
	h.source = source
	return nil
}

// Push records buf as the new current buffer.
func (h *History) Push(buf *PixelBuffer) error {
	if err := ValidateBuffer(buf); err != nil {
		return fmt.Errorf("cannot push buffer: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == nil {
		return fmt.Errorf("no original image loaded")
	}

	h.undo = append(h.undo, h.current)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.current = buf
	return nil
}

// Undo restores the previous buffer and returns it.
func (h *History) Undo() (*PixelBuffer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undo) == 0 {
		return nil, fmt.Errorf("nothing to undo")
	}
	last := len(h.undo) - 1
	h.current = h.undo[last]
	h.undo[last] = nil
	h.undo = h.undo[:last]
	return h.current, nil
}

// ResetToOriginal makes the original buffer current and clears the undo stack.
func (h *History) ResetToOriginal() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.original == nil {
		return fmt.Errorf("no original image available")
	}
	h.current = h.original
	h.undo = h.undo[:0]
	return nil
}

// Current returns the current buffer, or nil before SetOriginal.
func (h *History) Current() *PixelBuffer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Original returns the buffer passed to SetOriginal.
func (h *History) Original() *PixelBuffer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.original
}

// Depth is the number of undoable steps.
func (h *History) Depth() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.undo)
}

// Source returns the label given to SetOriginal, usually a file path.
func (h *History) Source() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.source
}

// Clear drops every buffer.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.original = nil
	h.current = nil
	h.undo = nil
	h.source = ""
}
