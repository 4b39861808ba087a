package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestIoUIdentity(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	if got := IoU(r, r); !almostEqual(got, 1.0) {
		t.Errorf("IoU(r, r) = %v, want 1.0", got)
	}
}

func TestIoUDisjoint(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 20, 30, 30)
	if got := IoU(a, b); got != 0 {
		t.Errorf("IoU of disjoint rects = %v, want 0", got)
	}
}

func TestIoUSymmetry(t *testing.T) {
	cases := []struct {
		a, b Rect
	}{
		{NewRect(0, 0, 10, 10), NewRect(5, 5, 15, 15)},
		{NewRect(0, 0, 4, 4), NewRect(2, 0, 6, 4)},
		{NewRect(-5, -5, 5, 5), NewRect(0, 0, 10, 10)},
		{NewRect(0, 0, 1, 1), NewRect(100, 100, 101, 101)},
	}
	for _, c := range cases {
		ab := IoU(c.a, c.b)
		ba := IoU(c.b, c.a)
		if !almostEqual(ab, ba) {
			t.Errorf("IoU(%v, %v) = %v but IoU(%v, %v) = %v", c.a, c.b, ab, c.b, c.a, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("IoU(%v, %v) = %v, outside [0, 1]", c.a, c.b, ab)
		}
	}
}

func TestIoUPartialOverlap(t *testing.T) {
	// 5x10 intersection over 10x10 + 10x10 - 50 union.
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 0, 15, 10)
	want := 50.0 / 150.0
	if got := IoU(a, b); !almostEqual(got, want) {
		t.Errorf("IoU = %v, want %v", got, want)
	}
}

func TestIoUTouchingEdges(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(10, 0, 20, 10)
	if got := IoU(a, b); got != 0 {
		t.Errorf("IoU of edge-touching rects = %v, want 0", got)
	}
}

func TestIoUDegenerateInputs(t *testing.T) {
	good := NewRect(0, 0, 10, 10)
	cases := []struct {
		name string
		r    Rect
	}{
		{"inverted x", NewRect(10, 0, 0, 10)},
		{"inverted y", NewRect(0, 10, 10, 0)},
		{"zero area", NewRect(5, 5, 5, 5)},
		{"fully inverted", NewRect(10, 10, 0, 0)},
	}
	for _, c := range cases {
		if got := IoU(good, c.r); got != 0 {
			t.Errorf("%s: IoU = %v, want 0", c.name, got)
		}
		if got := IoU(c.r, good); got != 0 {
			t.Errorf("%s (swapped): IoU = %v, want 0", c.name, got)
		}
		if got := IoU(c.r, c.r); got != 0 {
			t.Errorf("%s (self): IoU = %v, want 0", c.name, got)
		}
	}
}

func TestIoUNegativeExtentsDoNotCancel(t *testing.T) {
	// Separated on x, overlapping on y: a naive width*height would
	// multiply a negative width by a positive height.
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 0, 30, 10)
	if got := IoU(a, b); got != 0 {
		t.Errorf("IoU = %v, want 0", got)
	}
	// Separated on both axes: two negative extents must not multiply
	// into a positive intersection.
	c := NewRect(20, 20, 30, 30)
	if got := IoU(a, c); got != 0 {
		t.Errorf("IoU = %v, want 0", got)
	}
}

func TestRectArea(t *testing.T) {
	if got := NewRect(0, 0, 4, 5).Area(); !almostEqual(got, 20) {
		t.Errorf("Area = %v, want 20", got)
	}
	if got := NewRect(4, 5, 0, 0).Area(); got != 0 {
		t.Errorf("malformed Area = %v, want 0", got)
	}
	if !NewRect(1, 1, 1, 9).Empty() {
		t.Error("zero-width rect should be empty")
	}
}
