package rendernode

import (
	"math"
	"slices"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// ClearNode fills the whole surface with a color.
type ClearNode struct {
	NodeBase
	color gg.RGBA
}

// NewClearNode creates a clear node.
func NewClearNode(c gg.RGBA) *ClearNode {
	return &ClearNode{color: c}
}

// Equals reports whether the node was created with c.
func (n *ClearNode) Equals(c gg.RGBA) bool {
	return n.color == c
}

// Process returns one operation with empty bounds: a clear is not
// localized and is never hit.
func (n *ClearNode) Process(*Context) []Operation {
	c := n.color
	return []Operation{{
		Render:  func(cv Canvas) { cv.Clear(c) },
		HitTest: func(gg.Point) bool { return false },
	}}
}

// RectangleNode draws an axis-aligned rectangle.
type RectangleNode struct {
	NodeBase
	rect  Rect
	paint paint
}

// NewRectangleNode creates a rectangle node. A DrawableBrush fill or pen
// brush is rendered immediately, sized to rect.
func NewRectangleNode(rect Rect, fill Brush, pen *Pen) *RectangleNode {
	return &RectangleNode{
		rect:  rect,
		paint: newPaint(fill, pen, Size{rect.Width, rect.Height}),
	}
}

// Equals reports whether the node was created with the same parameters.
func (n *RectangleNode) Equals(rect Rect, fill Brush, pen *Pen) bool {
	return n.rect == rect && n.paint.equals(fill, pen)
}

// Rect returns the rectangle.
func (n *RectangleNode) Rect() Rect { return n.rect }

// Process returns the rectangle's single operation.
func (n *RectangleNode) Process(*Context) []Operation {
	rect := n.rect
	fill, pen := n.paint.fill.render, n.paint.renderPen
	return []Operation{{
		Bounds: n.paint.bounds(rect),
		Render: func(c Canvas) { c.DrawRectangle(rect, fill, pen) },
		HitTest: func(p gg.Point) bool {
			if fill != nil && rect.Contains(p) {
				return true
			}
			if !pen.visible() {
				return false
			}
			outer := rect.Inflate(pen.Outset())
			inner := rect.Inflate(-pen.Inset())
			return outer.Contains(p) && (inner.IsEmpty() || !inner.containsStrict(p))
		},
	}}
}

// Dispose releases scene brushes the node owns.
func (n *RectangleNode) Dispose() {
	if n.markDisposed() {
		n.paint.dispose()
	}
}

// EllipseNode draws the ellipse inscribed in a rectangle.
type EllipseNode struct {
	NodeBase
	rect  Rect
	paint paint
}

// NewEllipseNode creates an ellipse node.
func NewEllipseNode(rect Rect, fill Brush, pen *Pen) *EllipseNode {
	return &EllipseNode{
		rect:  rect,
		paint: newPaint(fill, pen, Size{rect.Width, rect.Height}),
	}
}

// Equals reports whether the node was created with the same parameters.
func (n *EllipseNode) Equals(rect Rect, fill Brush, pen *Pen) bool {
	return n.rect == rect && n.paint.equals(fill, pen)
}

// Process returns the ellipse's single operation.
func (n *EllipseNode) Process(*Context) []Operation {
	rect := n.rect
	fill, pen := n.paint.fill.render, n.paint.renderPen
	center := rect.Center()
	rx, ry := rect.Width/2, rect.Height/2
	return []Operation{{
		Bounds: n.paint.bounds(rect),
		Render: func(c Canvas) { c.DrawEllipse(rect, fill, pen) },
		HitTest: func(p gg.Point) bool {
			if fill != nil && ellipseValue(center, rx, ry, p) <= 1 {
				return true
			}
			if !pen.visible() {
				return false
			}
			out, in := pen.Outset(), pen.Inset()
			if ellipseValue(center, rx+out, ry+out, p) > 1 {
				return false
			}
			return ellipseValue(center, rx-in, ry-in, p) >= 1
		},
	}}
}

// Dispose releases scene brushes the node owns.
func (n *EllipseNode) Dispose() {
	if n.markDisposed() {
		n.paint.dispose()
	}
}

// GeometryNode draws an arbitrary path.
type GeometryNode struct {
	NodeBase
	path  *gg.Path
	rule  gg.FillRule
	paint paint
}

// NewGeometryNode creates a geometry node. The path is cloned.
func NewGeometryNode(path *gg.Path, rule gg.FillRule, fill Brush, pen *Pen) *GeometryNode {
	path = path.Clone()
	bounds := pathBounds(path)
	return &GeometryNode{
		path:  path,
		rule:  rule,
		paint: newPaint(fill, pen, Size{bounds.Width, bounds.Height}),
	}
}

// Equals reports whether the node was created with the same parameters.
// Paths are compared element by element.
func (n *GeometryNode) Equals(path *gg.Path, rule gg.FillRule, fill Brush, pen *Pen) bool {
	return n.rule == rule && pathEqual(n.path, path) && n.paint.equals(fill, pen)
}

// Process returns the geometry's single operation.
func (n *GeometryNode) Process(*Context) []Operation {
	path, rule := n.path, n.rule
	fill, pen := n.paint.fill.render, n.paint.renderPen
	return []Operation{{
		Bounds: n.paint.bounds(pathBounds(path)),
		Render: func(c Canvas) { c.DrawGeometry(path, rule, fill, pen) },
		HitTest: func(p gg.Point) bool {
			inside := containsByRule(path, rule, p)
			if fill != nil && inside {
				return true
			}
			if !pen.visible() {
				return false
			}
			return hitStrokeBand(inside, distanceToOutline(path, p), pen.Inset(), pen.Outset())
		},
	}}
}

// Dispose releases scene brushes the node owns.
func (n *GeometryNode) Dispose() {
	if n.markDisposed() {
		n.paint.dispose()
	}
}

func pathBounds(p *gg.Path) Rect {
	if p == nil || p.NumVerbs() == 0 {
		return Rect{}
	}
	return rectFromGG(p.BoundingBox())
}

func pathEqual(a, b *gg.Path) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return slices.Equal(a.Verbs(), b.Verbs()) && slices.Equal(a.Coords(), b.Coords())
}

// TextRun is a single line of text positioned by its baseline origin.
type TextRun struct {
	Text   string
	Face   text.Face
	Origin gg.Point
}

// Bounds returns the run's line box from the face metrics.
func (r TextRun) Bounds() Rect {
	if r.Face == nil || r.Text == "" {
		return Rect{}
	}
	m := r.Face.Metrics()
	return Rect{
		X:      r.Origin.X,
		Y:      r.Origin.Y - m.Ascent,
		Width:  r.Face.Advance(r.Text),
		Height: math.Abs(m.Ascent) + math.Abs(m.Descent),
	}
}

// TextNode draws a text run.
type TextNode struct {
	NodeBase
	run   TextRun
	paint paint
}

// NewTextNode creates a text node.
func NewTextNode(run TextRun, fill Brush, pen *Pen) *TextNode {
	b := run.Bounds()
	return &TextNode{run: run, paint: newPaint(fill, pen, Size{b.Width, b.Height})}
}

// Equals reports whether the node was created with the same parameters.
// Faces are compared by identity.
func (n *TextNode) Equals(run TextRun, fill Brush, pen *Pen) bool {
	return n.run == run && n.paint.equals(fill, pen)
}

// Process returns the text's single operation; an empty run draws nothing.
func (n *TextNode) Process(*Context) []Operation {
	if n.run.Face == nil || n.run.Text == "" {
		return nil
	}
	run := n.run
	fill, pen := n.paint.fill.render, n.paint.renderPen
	bounds := n.paint.bounds(run.Bounds())
	return []Operation{{
		Bounds: bounds,
		Render: func(c Canvas) { c.DrawText(run, fill, pen) },
	}}
}

// Dispose releases scene brushes the node owns.
func (n *TextNode) Dispose() {
	if n.markDisposed() {
		n.paint.dispose()
	}
}
