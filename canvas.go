package rendernode

import (
	"image"

	"github.com/gogpu/gg"
)

// TransformOperator selects how PushTransform combines its matrix with
// the current transform.
type TransformOperator int

const (
	// TransformPrepend applies the matrix in the local space of the
	// current transform.
	TransformPrepend TransformOperator = iota
	// TransformSet replaces the current transform.
	TransformSet
)

// String returns the operator name.
func (op TransformOperator) String() string {
	switch op {
	case TransformPrepend:
		return "Prepend"
	case TransformSet:
		return "Set"
	default:
		return "Unknown"
	}
}

// Canvas is the paint surface render closures draw on.
//
// The core never rasterizes directly; it only decides which Canvas calls
// to make and in what nesting. Every Push method opens a scope that the
// matching Pop closes, and scopes nest strictly.
//
// # Implementation Contract
//
// Each canvas must:
//  1. Keep its own scope stack; Pop with an empty stack is a no-op
//  2. Treat a nil fill brush or nil pen as "do not fill" / "do not stroke"
//  3. Return nil from Snapshot when pixels cannot be read back
//  4. Degrade unsupported scopes (for example blend modes on a vector
//     target) to a plain state push rather than failing
type Canvas interface {
	// Size returns the surface size in pixels.
	Size() (width, height int)

	// Clear fills the whole surface, ignoring transform and clip.
	Clear(c gg.RGBA)

	// DrawRectangle fills and/or strokes rect.
	DrawRectangle(rect Rect, fill Brush, pen *Pen)

	// DrawEllipse fills and/or strokes the ellipse inscribed in rect.
	DrawEllipse(rect Rect, fill Brush, pen *Pen)

	// DrawGeometry fills and/or strokes path using rule.
	DrawGeometry(path *gg.Path, rule gg.FillRule, fill Brush, pen *Pen)

	// DrawImage draws img scaled into dst.
	DrawImage(img image.Image, dst Rect)

	// DrawText draws run with its baseline origin at run.Origin.
	DrawText(run TextRun, fill Brush, pen *Pen)

	// Snapshot returns a copy of the composited pixels, or nil.
	Snapshot() image.Image

	// PushState saves transform and clip.
	PushState()

	// PushTransform combines m with the current transform.
	PushTransform(m gg.Matrix, op TransformOperator)

	// PushClip intersects the clip with rect.
	PushClip(rect Rect)

	// PushClipGeometry intersects the clip with path.
	PushClipGeometry(path *gg.Path, rule gg.FillRule)

	// PushOpacity multiplies the alpha of everything drawn in scope.
	PushOpacity(opacity float64)

	// PushBlendMode composites the scope's content with mode.
	PushBlendMode(mode gg.BlendMode)

	// PushLayer isolates the scope's content into a layer clipped to limit.
	PushLayer(limit Rect)

	// PushFilterEffect applies effect to the scope's content. bounds is
	// the untransformed area of that content.
	PushFilterEffect(effect FilterEffect, bounds Rect)

	// PushOpacityMask multiplies the scope's content by the alpha of mask
	// painted over bounds, or by its complement when invert is set.
	PushOpacityMask(mask Brush, bounds Rect, invert bool)

	// Pop closes the innermost scope.
	Pop()
}

// CanvasFactory creates offscreen canvases. Nodes that need intermediate
// surfaces, and the processor's layer cache, obtain them through
// Context.Factory.
type CanvasFactory interface {
	NewCanvas(width, height int) (Canvas, error)
}

// CanvasFactoryFunc adapts a function to CanvasFactory.
type CanvasFactoryFunc func(width, height int) (Canvas, error)

// NewCanvas calls f.
func (f CanvasFactoryFunc) NewCanvas(width, height int) (Canvas, error) {
	return f(width, height)
}
