// Package raster provides a rendernode.Canvas that paints into pixels
// using gg.Context.
//
// Importing the package registers a canvas factory named "raster":
//
//	import _ "github.com/gogpu/rendernode/backends/raster"
//
//	f, _ := rendernode.NewCanvasFactory("raster")
//	c, _ := f.NewCanvas(800, 600)
//	rendernode.Render(c, ops)
//
// Or create a canvas directly and keep access to the output:
//
//	c := raster.New(800, 600)
//	rendernode.Render(c, ops)
//	_ = c.SavePNG("frame.png")
//
// # Scopes
//
// Opacity and blend mode scopes map onto gg layers. Pixel filters and
// opacity masks render their content into a separate context that
// inherits the active clips, post-process it and composite it back.
// Transform-like filters (rendernode.TransformEffect) are applied as a
// plain transform.
package raster

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/gogpu/rendernode"
)

func init() {
	rendernode.Register("raster", Factory())
}

// Factory returns a factory creating raster canvases.
func Factory() rendernode.CanvasFactory {
	return rendernode.CanvasFactoryFunc(func(width, height int) (rendernode.Canvas, error) {
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("raster: invalid canvas size %dx%d", width, height)
		}
		return New(width, height), nil
	})
}

type scopeKind uint8

const (
	scopeState scopeKind = iota
	scopeLayer
	scopeLimitedLayer
	scopeOffscreen
)

// scope is one entry of the canvas scope stack.
type scope struct {
	kind      scopeKind
	clipDepth int

	// offscreen scopes
	parent *gg.Context
	effect rendernode.PixmapEffect
	mask   *image.RGBA
	invert bool
}

// clipEntry is an active clip, kept so offscreen contexts can inherit it.
type clipEntry struct {
	matrix gg.Matrix
	rect   rendernode.Rect
	path   *gg.Path
	rule   gg.FillRule
}

// Canvas paints into a gg.Context. It is not safe for concurrent use.
type Canvas struct {
	ctx    *gg.Context
	width  int
	height int
	scopes []scope
	clips  []clipEntry
}

var _ rendernode.Canvas = (*Canvas)(nil)

// New creates a canvas backed by a new transparent gg.Context.
func New(width, height int, opts ...Option) *Canvas {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx := o.context
	if ctx == nil {
		ctx = gg.NewContext(width, height)
	} else {
		width, height = ctx.Width(), ctx.Height()
	}
	if o.background != nil {
		ctx.ClearWithColor(*o.background)
	}
	return &Canvas{ctx: ctx, width: width, height: height}
}

// Context returns the gg.Context currently drawn into. Inside an
// offscreen scope this is the scope's private context.
func (c *Canvas) Context() *gg.Context { return c.ctx }

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (int, int) { return c.width, c.height }

// Image returns the rendered pixels.
func (c *Canvas) Image() image.Image { return c.ctx.Image() }

// SavePNG writes the rendered pixels to a PNG file.
func (c *Canvas) SavePNG(path string) error { return c.ctx.SavePNG(path) }

// EncodePNG writes the rendered pixels as PNG to w.
func (c *Canvas) EncodePNG(w io.Writer) error { return c.ctx.EncodePNG(w) }

// Snapshot returns a copy of the pixels drawn into the current target.
func (c *Canvas) Snapshot() image.Image { return c.ctx.Image() }

// Clear fills the whole target with col, ignoring transform and clip.
func (c *Canvas) Clear(col gg.RGBA) {
	c.ctx.ClearWithColor(col)
}

// DrawRectangle fills and strokes rect. The stroke is placed according
// to the pen alignment by moving the stroked outline.
func (c *Canvas) DrawRectangle(rect rendernode.Rect, fill rendernode.Brush, pen *rendernode.Pen) {
	if c.setBrush(fill, true) {
		c.ctx.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
		_ = c.ctx.Fill()
	}
	if c.setPen(pen) {
		r := rect.Inflate(strokeShift(pen))
		c.ctx.SetLineWidth(pen.Thickness)
		c.ctx.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		_ = c.ctx.Stroke()
	}
}

// DrawEllipse fills and strokes the ellipse inscribed in rect.
func (c *Canvas) DrawEllipse(rect rendernode.Rect, fill rendernode.Brush, pen *rendernode.Pen) {
	center := rect.Center()
	rx, ry := rect.Width/2, rect.Height/2
	if c.setBrush(fill, true) {
		c.ctx.DrawEllipse(center.X, center.Y, rx, ry)
		_ = c.ctx.Fill()
	}
	if c.setPen(pen) {
		d := strokeShift(pen)
		c.ctx.SetLineWidth(pen.Thickness)
		c.ctx.DrawEllipse(center.X, center.Y, max(rx+d, 0), max(ry+d, 0))
		_ = c.ctx.Stroke()
	}
}

// DrawGeometry fills and strokes path.
//
// Inside strokes are drawn at double width clipped to the path. Outside
// strokes are drawn at double width before the fill, so they only show
// outside an opaque fill.
func (c *Canvas) DrawGeometry(path *gg.Path, rule gg.FillRule, fill rendernode.Brush, pen *rendernode.Pen) {
	if path == nil {
		return
	}
	stroked := pen != nil && pen.Thickness > 0 && pen.Brush != nil
	if stroked && pen.Alignment == rendernode.StrokeOutside {
		c.strokePath(path, pen, 2*pen.Thickness)
	}
	if c.setBrush(fill, true) {
		c.ctx.SetFillRule(rule)
		c.appendPath(path)
		_ = c.ctx.Fill()
	}
	if !stroked {
		return
	}
	switch pen.Alignment {
	case rendernode.StrokeInside:
		c.ctx.Push()
		c.ctx.SetFillRule(rule)
		c.appendPath(path)
		c.ctx.Clip()
		c.strokePath(path, pen, 2*pen.Thickness)
		c.ctx.Pop()
	case rendernode.StrokeCenter:
		c.strokePath(path, pen, pen.Thickness)
	}
}

func (c *Canvas) strokePath(path *gg.Path, pen *rendernode.Pen, width float64) {
	if !c.setPen(pen) {
		return
	}
	c.ctx.SetLineWidth(width)
	c.appendPath(path)
	_ = c.ctx.Stroke()
}

// DrawImage draws img scaled into dst.
func (c *Canvas) DrawImage(img image.Image, dst rendernode.Rect) {
	if img == nil || dst.IsEmpty() {
		return
	}
	c.ctx.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:         dst.X,
		Y:         dst.Y,
		DstWidth:  dst.Width,
		DstHeight: dst.Height,
		Opacity:   1,
		BlendMode: gg.BlendNormal,
	})
}

// DrawText draws run with the fill brush. gg has no text outlines, so a
// pen only contributes when there is no fill. gg draws glyphs unscaled in
// device space; only the origin follows the transform.
func (c *Canvas) DrawText(run rendernode.TextRun, fill rendernode.Brush, pen *rendernode.Pen) {
	if run.Face == nil || run.Text == "" {
		return
	}
	if fill == nil && pen != nil {
		fill = pen.Brush
	}
	if !c.setBrush(fill, true) {
		return
	}
	p := c.ctx.GetTransform().TransformPoint(run.Origin)
	c.ctx.SetFont(run.Face)
	c.ctx.DrawString(run.Text, p.X, p.Y)
}

// appendPath replays path into the context's current path.
func (c *Canvas) appendPath(path *gg.Path) {
	c.ctx.ClearPath()
	path.Iterate(func(verb gg.PathVerb, p []float64) {
		switch verb {
		case gg.MoveTo:
			c.ctx.MoveTo(p[0], p[1])
		case gg.LineTo:
			c.ctx.LineTo(p[0], p[1])
		case gg.QuadTo:
			c.ctx.QuadraticTo(p[0], p[1], p[2], p[3])
		case gg.CubicTo:
			c.ctx.CubicTo(p[0], p[1], p[2], p[3], p[4], p[5])
		case gg.Close:
			c.ctx.ClosePath()
		}
	})
}

// strokeShift returns how far the stroked outline must move outward for
// a centered gg stroke to land where the pen alignment wants it.
func strokeShift(pen *rendernode.Pen) float64 {
	return pen.Outset() - pen.Thickness/2
}
