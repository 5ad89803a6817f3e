package rendernode

import (
	"slices"

	"github.com/gogpu/gg"
)

// StrokeAlignment places the stroke relative to the outline of a shape.
type StrokeAlignment int

const (
	// StrokeCenter centers the stroke on the outline.
	StrokeCenter StrokeAlignment = iota
	// StrokeInside draws the stroke entirely inside the outline.
	StrokeInside
	// StrokeOutside draws the stroke entirely outside the outline.
	StrokeOutside
)

// Pen describes a stroke. A nil *Pen means "no stroke".
type Pen struct {
	Brush      Brush
	Thickness  float64
	Cap        gg.LineCap
	Join       gg.LineJoin
	MiterLimit float64
	Dash       []float64
	DashOffset float64
	Alignment  StrokeAlignment
}

// NewPen creates a centered solid pen with miter joins.
func NewPen(c gg.RGBA, thickness float64) *Pen {
	return &Pen{
		Brush:      Solid(c),
		Thickness:  thickness,
		Join:       gg.LineJoinMiter,
		MiterLimit: 4,
	}
}

// PenEqual reports whether two pens stroke identically. Nil pens are
// equal only to nil.
func PenEqual(a, b *Pen) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Thickness == b.Thickness && a.Cap == b.Cap && a.Join == b.Join &&
		a.MiterLimit == b.MiterLimit && a.DashOffset == b.DashOffset &&
		a.Alignment == b.Alignment && slices.Equal(a.Dash, b.Dash) &&
		BrushEqual(a.Brush, b.Brush)
}

// Outset returns how far the stroke extends outside the outline.
func (p *Pen) Outset() float64 {
	if p == nil || p.Thickness <= 0 {
		return 0
	}
	switch p.Alignment {
	case StrokeInside:
		return 0
	case StrokeOutside:
		return p.Thickness
	default:
		return p.Thickness / 2
	}
}

// Inset returns how far the stroke extends inside the outline.
func (p *Pen) Inset() float64 {
	if p == nil || p.Thickness <= 0 {
		return 0
	}
	return p.Thickness - p.Outset()
}

// visible reports whether the pen would paint anything.
func (p *Pen) visible() bool {
	return p != nil && p.Brush != nil && p.Thickness > 0
}

// clonePen returns a deep copy of p.
func clonePen(p *Pen) *Pen {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Dash = slices.Clone(p.Dash)
	cp.Brush = cloneBrush(p.Brush)
	return &cp
}

// resolvePen returns a copy of p whose brush is ready for painting, plus
// the scene the copy owns when the brush was a DrawableBrush.
func resolvePen(p *Pen, available Size) (*Pen, resolvedBrush) {
	if p == nil {
		return nil, resolvedBrush{}
	}
	rb := resolveBrush(p.Brush, available)
	cp := *p
	cp.Dash = slices.Clone(p.Dash)
	cp.Brush = rb.render
	return &cp, rb
}
