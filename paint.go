package rendernode

// paint is the fill and stroke a shape node was created with, in the
// form the caller passed and in the form handed to the canvas.
type paint struct {
	fill      resolvedBrush
	pen       *Pen
	renderPen *Pen
	penBrush  resolvedBrush
}

func newPaint(fill Brush, pen *Pen, available Size) paint {
	p := paint{fill: resolveBrush(fill, available), pen: clonePen(pen)}
	p.renderPen, p.penBrush = resolvePen(pen, available)
	return p
}

func (p *paint) equals(fill Brush, pen *Pen) bool {
	return BrushEqual(p.fill.given, fill) && PenEqual(p.pen, pen)
}

func (p *paint) hasStroke() bool {
	return p.renderPen.visible()
}

// bounds inflates the geometric bounds by the stroke outset.
func (p *paint) bounds(r Rect) Rect {
	if !p.hasStroke() {
		return r
	}
	return r.Inflate(p.renderPen.Outset())
}

func (p *paint) dispose() {
	p.fill.dispose()
	p.penBrush.dispose()
}
