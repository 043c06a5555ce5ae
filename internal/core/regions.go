// Region of interest selections used to restrict where layers are blended
package core

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// SelectionType defines the type of selection
type SelectionType int

const (
	SelectionNone SelectionType = iota
	SelectionRectangle
	SelectionPolygon
)

// Selection represents a region of interest in pixel coordinates
type Selection struct {
	ID     string
	Type   SelectionType
	Points []image.Point
	Bounds image.Rectangle
}

func (s *Selection) clone() *Selection {
	out := *s
	out.Points = make([]image.Point, len(s.Points))
	copy(out.Points, s.Points)
	return &out
}

// Contains reports whether p lies inside the selection.
func (s *Selection) Contains(p image.Point) bool {
	switch s.Type {
	case SelectionRectangle:
		return p.In(s.Bounds)
	case SelectionPolygon:
		return isPointInPolygon(p, s.Points)
	}
	return false
}

// Mask rasterizes the selection over a width x height grid (row-major).
// Polygons are scan-filled including their outline pixels.
func (s *Selection) Mask(width, height int) []bool {
	if width <= 0 || height <= 0 {
		return nil
	}
	mat := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)
	defer mat.Close()

	switch s.Type {
	case SelectionRectangle:
		rect := s.Bounds.Intersect(image.Rect(0, 0, width, height))
		if !rect.Empty() {
			roi := mat.Region(rect)
			roi.SetTo(gocv.NewScalar(255, 255, 255, 255))
			roi.Close()
		}
	case SelectionPolygon:
		if len(s.Points) >= 3 {
			pts := gocv.NewPointsVectorFromPoints([][]image.Point{s.Points})
			defer pts.Close()
			gocv.FillPoly(&mat, pts, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	mask := make([]bool, width*height)
	for i, v := range mat.ToBytes() {
		mask[i] = v != 0
	}
	return mask
}

// RegionManager manages named ROI selections
type RegionManager struct {
	mu         sync.RWMutex
	selections map[string]*Selection
	nextID     int
}

// NewRegionManager creates a new region manager
func NewRegionManager() *RegionManager {
	return &RegionManager{
		selections: make(map[string]*Selection),
		nextID:     1,
	}
}

// CreateRectangleSelection registers rect and returns its ID.
func (rm *RegionManager) CreateRectangleSelection(rect image.Rectangle) (string, error) {
	rect = rect.Canon()
	if rect.Empty() {
		return "", InvalidParameterf("empty rectangle selection %v", rect)
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	id := fmt.Sprintf("rect_%d", rm.nextID)
	rm.nextID++
	rm.selections[id] = &Selection{
		ID:     id,
		Type:   SelectionRectangle,
		Points: []image.Point{rect.Min, rect.Max},
		Bounds: rect,
	}
	return id, nil
}

// CreatePolygonSelection registers a closed polygon and returns its ID.
func (rm *RegionManager) CreatePolygonSelection(points []image.Point) (string, error) {
	if len(points) < 3 {
		return "", InvalidParameterf("polygon needs at least 3 points, got %d", len(points))
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	id := fmt.Sprintf("polygon_%d", rm.nextID)
	rm.nextID++

	sel := &Selection{
		ID:     id,
		Type:   SelectionPolygon,
		Points: make([]image.Point, len(points)),
		Bounds: calculateBounds(points),
	}
	copy(sel.Points, points)
	rm.selections[id] = sel
	return id, nil
}

// GetSelection returns a copy of the selection, or nil when unknown.
func (rm *RegionManager) GetSelection(id string) *Selection {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	sel, ok := rm.selections[id]
	if !ok {
		return nil
	}
	return sel.clone()
}

// RemoveSelection removes a selection
func (rm *RegionManager) RemoveSelection(id string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, ok := rm.selections[id]; !ok {
		return false
	}
	delete(rm.selections, id)
	return true
}

// CreateMaskForSelection rasterizes selection id. A nil mask means no restriction.
func (rm *RegionManager) CreateMaskForSelection(id string, width, height int) ([]bool, error) {
	if id == "" {
		return nil, nil
	}
	sel := rm.GetSelection(id)
	if sel == nil {
		return nil, InvalidParameterf("unknown selection: %s", id)
	}
	return sel.Mask(width, height), nil
}

// calculateBounds returns the half-open bounding rectangle for a set of points
func calculateBounds(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// isPointInPolygon checks if a point is inside a polygon using ray casting
func isPointInPolygon(point image.Point, polygon []image.Point) bool {
	if len(polygon) < 3 {
		return false
	}

	x, y := float64(point.X), float64(point.Y)
	inside := false

	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		xi, yi := float64(polygon[i].X), float64(polygon[i].Y)
		xj, yj := float64(polygon[j].X), float64(polygon[j].Y)

		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}
