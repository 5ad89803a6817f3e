package rendernode

import (
	"math"

	"github.com/gogpu/gg"
)

// Rect is an axis-aligned rectangle given by its top-left corner and size.
// A rectangle with zero or negative width or height is empty; empty
// rectangles are ignored by Union.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// NewRect creates a rectangle from position and size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromPoints creates a rectangle from two corner points.
// The points are normalized so the result has non-negative size.
func RectFromPoints(p1, p2 gg.Point) Rect {
	minX, maxX := math.Min(p1.X, p2.X), math.Max(p1.X, p2.X)
	minY, maxY := math.Min(p1.Y, p2.Y), math.Max(p1.Y, p2.Y)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Right returns the right edge of the rectangle.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge of the rectangle.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point of the rectangle.
func (r Rect) Center() gg.Point {
	return gg.Pt(r.X+r.Width/2, r.Y+r.Height/2)
}

// IsEmpty reports whether the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside the rectangle.
// Edges are inclusive; an empty rectangle contains nothing.
func (r Rect) Contains(p gg.Point) bool {
	if r.IsEmpty() {
		return false
	}
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Union returns the smallest rectangle containing both r and other.
// If either rectangle is empty the other one is returned.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.Right(), other.Right())
	maxY := math.Max(r.Bottom(), other.Bottom())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Intersect returns the intersection of r and other.
// Returns the zero rectangle if they don't intersect.
func (r Rect) Intersect(other Rect) Rect {
	minX := math.Max(r.X, other.X)
	minY := math.Max(r.Y, other.Y)
	maxX := math.Min(r.Right(), other.Right())
	maxY := math.Min(r.Bottom(), other.Bottom())
	if maxX <= minX || maxY <= minY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// containsStrict reports whether p lies strictly inside r.
func (r Rect) containsStrict(p gg.Point) bool {
	return p.X > r.X && p.X < r.Right() && p.Y > r.Y && p.Y < r.Bottom()
}

// Inflate grows the rectangle by d on every side.
// A negative d shrinks it.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Offset returns the rectangle moved by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Transform returns the axis-aligned bounding box of the rectangle
// after applying m. Empty rectangles stay empty.
func (r Rect) Transform(m gg.Matrix) Rect {
	if r.IsEmpty() {
		return Rect{}
	}
	if m.IsIdentity() {
		return r
	}
	p1 := m.TransformPoint(gg.Pt(r.X, r.Y))
	p2 := m.TransformPoint(gg.Pt(r.Right(), r.Y))
	p3 := m.TransformPoint(gg.Pt(r.X, r.Bottom()))
	p4 := m.TransformPoint(gg.Pt(r.Right(), r.Bottom()))
	minX := math.Min(math.Min(p1.X, p2.X), math.Min(p3.X, p4.X))
	minY := math.Min(math.Min(p1.Y, p2.Y), math.Min(p3.Y, p4.Y))
	maxX := math.Max(math.Max(p1.X, p2.X), math.Max(p3.X, p4.X))
	maxY := math.Max(math.Max(p1.Y, p2.Y), math.Max(p3.Y, p4.Y))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Path returns a closed rectangular gg.Path covering r.
func (r Rect) Path() *gg.Path {
	p := gg.NewPath()
	p.Rectangle(r.X, r.Y, r.Width, r.Height)
	return p
}

// rectFromGG converts a gg bounding box to a Rect.
func rectFromGG(r gg.Rect) Rect {
	return RectFromPoints(r.Min, r.Max)
}

// Size is a width/height pair used by drawable measurement.
type Size struct {
	Width, Height float64
}

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}
