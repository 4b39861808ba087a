// Package geometry provides the rectangle primitives used for slot
// occupancy decisions.
package geometry

import "math"

// Rect is an axis-aligned rectangle in frame pixel coordinates.
// A well-formed Rect has X1 < X2 and Y1 < Y2.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// NewRect creates a new Rect.
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the horizontal extent, or 0 for a malformed Rect.
func (r Rect) Width() float64 {
	if r.X2 <= r.X1 {
		return 0
	}
	return r.X2 - r.X1
}

// Height returns the vertical extent, or 0 for a malformed Rect.
func (r Rect) Height() float64 {
	if r.Y2 <= r.Y1 {
		return 0
	}
	return r.Y2 - r.Y1
}

// Area returns the rectangle area. Degenerate rectangles have area 0.
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool {
	return r.Area() == 0
}

// IoU returns the intersection-over-union of a and b, in [0, 1].
//
// Detector output is noisy; degenerate or malformed rectangles are
// defined to have zero overlap rather than being an error. The negative
// extents of an empty intersection are clamped per axis so they cannot
// cancel against a positive extent on the other axis.
func IoU(a, b Rect) float64 {
	iw := math.Min(a.X2, b.X2) - math.Max(a.X1, b.X1)
	ih := math.Min(a.Y2, b.Y2) - math.Max(a.Y1, b.Y1)

	inter := 0.0
	if iw > 0 && ih > 0 {
		inter = iw * ih
	}

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}

	v := inter / union
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
