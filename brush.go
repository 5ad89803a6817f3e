package rendernode

import (
	"slices"

	"github.com/gogpu/gg"
)

// Brush describes how a filled or stroked area is painted.
// This is a sealed interface; only types in this package implement it.
//
// Brushes are compared structurally by BrushEqual when a draw call is
// reconciled against an existing node, so callers may build a fresh brush
// value every frame without defeating node reuse.
type Brush interface {
	brushMarker()
}

// SolidBrush is a single color.
type SolidBrush struct {
	Color gg.RGBA
}

func (SolidBrush) brushMarker() {}

// Solid creates a solid color brush.
func Solid(c gg.RGBA) SolidBrush {
	return SolidBrush{Color: c}
}

// GradientStop defines a color stop in a gradient.
type GradientStop struct {
	Offset float64 // Position in gradient, 0.0 to 1.0
	Color  gg.RGBA
}

// ExtendMode defines how gradients extend beyond their defined bounds.
// The values match gg.ExtendMode.
type ExtendMode int

const (
	// ExtendPad extends edge colors beyond bounds.
	ExtendPad ExtendMode = iota
	// ExtendRepeat repeats the gradient pattern.
	ExtendRepeat
	// ExtendReflect mirrors the gradient pattern.
	ExtendReflect
)

// LinearGradientBrush is a linear color gradient from Start to End.
type LinearGradientBrush struct {
	Start, End gg.Point
	Stops      []GradientStop
	Extend     ExtendMode
}

func (*LinearGradientBrush) brushMarker() {}

// NewLinearGradientBrush creates a linear gradient between two points.
func NewLinearGradientBrush(x0, y0, x1, y1 float64) *LinearGradientBrush {
	return &LinearGradientBrush{Start: gg.Pt(x0, y0), End: gg.Pt(x1, y1)}
}

// AddColorStop adds a color stop and returns the brush for chaining.
func (g *LinearGradientBrush) AddColorStop(offset float64, c gg.RGBA) *LinearGradientBrush {
	g.Stops = append(g.Stops, GradientStop{Offset: offset, Color: c})
	return g
}

// RadialGradientBrush radiates from Focus within the circle around Center.
type RadialGradientBrush struct {
	Center, Focus          gg.Point
	StartRadius, EndRadius float64
	Stops                  []GradientStop
	Extend                 ExtendMode
}

func (*RadialGradientBrush) brushMarker() {}

// NewRadialGradientBrush creates a radial gradient with its focus at the center.
func NewRadialGradientBrush(cx, cy, startRadius, endRadius float64) *RadialGradientBrush {
	c := gg.Pt(cx, cy)
	return &RadialGradientBrush{Center: c, Focus: c, StartRadius: startRadius, EndRadius: endRadius}
}

// AddColorStop adds a color stop and returns the brush for chaining.
func (g *RadialGradientBrush) AddColorStop(offset float64, c gg.RGBA) *RadialGradientBrush {
	g.Stops = append(g.Stops, GradientStop{Offset: offset, Color: c})
	return g
}

// DrawableBrush paints with the rendered content of a Drawable.
//
// A DrawableBrush is never rendered lazily: when a node is created with
// one, the drawable is measured and rendered once into a SceneBrush owned by
// that node. Reconciliation compares DrawableBrush values by the identity
// of Drawable; if the drawable also implements ChangeTracker and reports
// changes, the brush is treated as different and the node is rebuilt.
type DrawableBrush struct {
	Drawable Drawable
	Opacity  float64
}

func (DrawableBrush) brushMarker() {}

// SceneBrush is an immutable snapshot of a rendered Drawable, produced
// from a DrawableBrush. Backends paint it by rendering Scene into an
// offscreen surface and using the result as a pattern.
type SceneBrush struct {
	Scene   *Scene
	Opacity float64
}

func (*SceneBrush) brushMarker() {}

// BrushEqual reports whether two brushes paint identically.
// Nil brushes are equal only to nil.
func BrushEqual(a, b Brush) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case SolidBrush:
		y, ok := b.(SolidBrush)
		return ok && x == y
	case *LinearGradientBrush:
		y, ok := b.(*LinearGradientBrush)
		if !ok {
			return false
		}
		return x.Start == y.Start && x.End == y.End && x.Extend == y.Extend &&
			slices.Equal(x.Stops, y.Stops)
	case *RadialGradientBrush:
		y, ok := b.(*RadialGradientBrush)
		if !ok {
			return false
		}
		return x.Center == y.Center && x.Focus == y.Focus &&
			x.StartRadius == y.StartRadius && x.EndRadius == y.EndRadius &&
			x.Extend == y.Extend && slices.Equal(x.Stops, y.Stops)
	case DrawableBrush:
		y, ok := b.(DrawableBrush)
		if !ok || x.Drawable != y.Drawable || x.Opacity != y.Opacity {
			return false
		}
		if t, ok := x.Drawable.(ChangeTracker); ok && t.HasChanges() {
			return false
		}
		return true
	case *SceneBrush:
		y, ok := b.(*SceneBrush)
		return ok && x == y
	default:
		return false
	}
}

// ToGG converts a brush to its gg equivalent for immediate-mode painting.
// SceneBrush has no gg equivalent and yields false; backends handle it
// themselves.
func ToGG(b Brush) (gg.Brush, bool) {
	switch br := b.(type) {
	case SolidBrush:
		return gg.Solid(br.Color), true
	case *LinearGradientBrush:
		grad := gg.NewLinearGradientBrush(br.Start.X, br.Start.Y, br.End.X, br.End.Y)
		for _, stop := range br.Stops {
			grad.AddColorStop(stop.Offset, stop.Color)
		}
		grad.SetExtend(gg.ExtendMode(br.Extend))
		return grad, true
	case *RadialGradientBrush:
		grad := gg.NewRadialGradientBrush(br.Center.X, br.Center.Y, br.StartRadius, br.EndRadius)
		grad.SetFocus(br.Focus.X, br.Focus.Y)
		for _, stop := range br.Stops {
			grad.AddColorStop(stop.Offset, stop.Color)
		}
		grad.SetExtend(gg.ExtendMode(br.Extend))
		return grad, true
	default:
		return nil, false
	}
}

// cloneBrush copies mutable brush values so a node's parameters cannot
// change behind its back.
func cloneBrush(b Brush) Brush {
	switch br := b.(type) {
	case *LinearGradientBrush:
		cp := *br
		cp.Stops = slices.Clone(br.Stops)
		return &cp
	case *RadialGradientBrush:
		cp := *br
		cp.Stops = slices.Clone(br.Stops)
		return &cp
	default:
		return b
	}
}

// resolvedBrush is a brush as given by the caller plus the form actually
// rendered. They differ only for DrawableBrush, whose scene snapshot is
// owned here and released by dispose.
type resolvedBrush struct {
	given  Brush
	render Brush
	scene  *Scene
}

func resolveBrush(b Brush, available Size) resolvedBrush {
	b = cloneBrush(b)
	db, ok := b.(DrawableBrush)
	if !ok || db.Drawable == nil {
		return resolvedBrush{given: b, render: b}
	}
	scene := RenderScene(db.Drawable, available)
	return resolvedBrush{
		given:  b,
		render: &SceneBrush{Scene: scene, Opacity: db.Opacity},
		scene:  scene,
	}
}

func (r *resolvedBrush) dispose() {
	if r.scene != nil {
		r.scene.Dispose()
		r.scene = nil
	}
}
