package core

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionManager_Rectangle(t *testing.T) {
	rm := NewRegionManager()

	id, err := rm.CreateRectangleSelection(image.Rect(3, 2, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, "rect_1", id)

	sel := rm.GetSelection(id)
	require.NotNil(t, sel)
	assert.Equal(t, image.Rect(1, 0, 3, 2), sel.Bounds)
	assert.True(t, sel.Contains(image.Pt(2, 1)))
	assert.False(t, sel.Contains(image.Pt(3, 1)))

	mask, err := rm.CreateMaskForSelection(id, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []bool{
		false, true, true, false,
		false, true, true, false,
		false, false, false, false,
	}, mask)

	_, err = rm.CreateRectangleSelection(image.Rect(1, 1, 1, 5))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRegionManager_Polygon(t *testing.T) {
	rm := NewRegionManager()

	_, err := rm.CreatePolygonSelection([]image.Point{{0, 0}, {4, 0}})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	id, err := rm.CreatePolygonSelection([]image.Point{{0, 0}, {8, 0}, {8, 8}, {0, 8}})
	require.NoError(t, err)
	assert.Equal(t, "polygon_1", id)

	sel := rm.GetSelection(id)
	require.NotNil(t, sel)
	assert.Equal(t, image.Rect(0, 0, 9, 9), sel.Bounds)
	assert.True(t, sel.Contains(image.Pt(4, 4)))
	assert.False(t, sel.Contains(image.Pt(9, 4)))

	// The mask is clipped to the image.
	mask, err := rm.CreateMaskForSelection(id, 6, 6)
	require.NoError(t, err)
	require.Len(t, mask, 36)
	assert.True(t, mask[3*6+3])
}

func TestRegionManager_TriangleMask(t *testing.T) {
	rm := NewRegionManager()
	id, err := rm.CreatePolygonSelection([]image.Point{{0, 0}, {10, 0}, {0, 10}})
	require.NoError(t, err)

	mask, err := rm.CreateMaskForSelection(id, 10, 10)
	require.NoError(t, err)
	assert.True(t, mask[1*10+1])
	assert.False(t, mask[8*10+8])
	assert.True(t, mask[0], "vertex pixel is filled")
	assert.True(t, mask[9*10+0], "outline pixel on the left edge")
}

func TestSelection_MaskOutsideImage(t *testing.T) {
	sel := &Selection{Type: SelectionPolygon, Points: []image.Point{{20, 20}, {30, 20}, {25, 30}}}
	sel.Bounds = calculateBounds(sel.Points)
	assert.Equal(t, make([]bool, 16), sel.Mask(4, 4))

	rect := &Selection{Type: SelectionRectangle, Bounds: image.Rect(-5, -5, 1, 1)}
	assert.Equal(t, []bool{true, false, false, false}, rect.Mask(2, 2))
	assert.Nil(t, rect.Mask(0, 3))
}

func TestRegionManager_LookupAndRemove(t *testing.T) {
	rm := NewRegionManager()
	id, err := rm.CreateRectangleSelection(image.Rect(0, 0, 2, 2))
	require.NoError(t, err)

	// Returned selections are copies.
	sel := rm.GetSelection(id)
	sel.Points[0] = image.Pt(50, 50)
	assert.Equal(t, image.Pt(0, 0), rm.GetSelection(id).Points[0])

	mask, err := rm.CreateMaskForSelection("", 2, 2)
	require.NoError(t, err)
	assert.Nil(t, mask)

	assert.True(t, rm.RemoveSelection(id))
	assert.False(t, rm.RemoveSelection(id))
	assert.Nil(t, rm.GetSelection(id))

	_, err = rm.CreateMaskForSelection(id, 2, 2)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
