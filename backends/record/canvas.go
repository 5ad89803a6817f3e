// Package record provides a rendernode.Canvas that records vector drawing
// commands with gg's recording package, for export through any
// recording backend (raster, PDF, SVG).
//
// Importing the package registers a canvas factory named "record".
//
// Only the vector subset of the canvas contract is recorded. Opacity is
// folded into brush colors. Blend modes, pixel filters and opacity masks
// cannot be expressed by a recording; they degrade to a plain state push
// and are logged at warn level. Snapshot returns nil.
//
// Example:
//
//	c := record.New(800, 600)
//	rendernode.Render(c, ops)
//	rec := c.Finish()
//	backend, _ := recording.NewBackend("raster")
//	_ = rec.Playback(backend)
package record

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"

	"github.com/gogpu/rendernode"
)

func init() {
	rendernode.Register("record", rendernode.CanvasFactoryFunc(func(width, height int) (rendernode.Canvas, error) {
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("record: invalid canvas size %dx%d", width, height)
		}
		return New(width, height), nil
	}))
}

// Canvas records drawing commands. It is not safe for concurrent use.
type Canvas struct {
	rec     *recording.Recorder
	width   int
	height  int
	opacity []float64 // opacity in effect per open scope
}

var _ rendernode.Canvas = (*Canvas)(nil)

// New creates a recording canvas.
func New(width, height int) *Canvas {
	return &Canvas{rec: recording.NewRecorder(width, height), width: width, height: height}
}

// Recorder returns the underlying recorder.
func (c *Canvas) Recorder() *recording.Recorder { return c.rec }

// Finish ends recording and returns the command list.
func (c *Canvas) Finish() *recording.Recording { return c.rec.FinishRecording() }

// Size returns the canvas size.
func (c *Canvas) Size() (int, int) { return c.width, c.height }

// Snapshot returns nil; a recording has no pixels.
func (c *Canvas) Snapshot() image.Image { return nil }

func (c *Canvas) alpha() float64 {
	if len(c.opacity) == 0 {
		return 1
	}
	return c.opacity[len(c.opacity)-1]
}

// Clear fills the canvas with col.
func (c *Canvas) Clear(col gg.RGBA) {
	c.rec.Save()
	c.rec.Identity()
	c.rec.ClearWithColor(col)
	c.rec.Restore()
}

// DrawRectangle records a rectangle fill and stroke.
func (c *Canvas) DrawRectangle(rect rendernode.Rect, fill rendernode.Brush, pen *rendernode.Pen) {
	if c.setFill(fill) {
		c.rec.ClearPath()
		c.rec.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
		c.rec.Fill()
	}
	if c.setPen(pen) {
		r := rect.Inflate(pen.Outset() - pen.Thickness/2)
		c.rec.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		c.rec.Stroke()
	}
}

// DrawEllipse records an ellipse fill and stroke.
func (c *Canvas) DrawEllipse(rect rendernode.Rect, fill rendernode.Brush, pen *rendernode.Pen) {
	center := rect.Center()
	rx, ry := rect.Width/2, rect.Height/2
	if c.setFill(fill) {
		c.rec.DrawEllipse(center.X, center.Y, rx, ry)
		c.rec.Fill()
	}
	if c.setPen(pen) {
		d := pen.Outset() - pen.Thickness/2
		c.rec.DrawEllipse(center.X, center.Y, max(rx+d, 0), max(ry+d, 0))
		c.rec.Stroke()
	}
}

// DrawGeometry records a path fill and a centered stroke. Stroke
// alignment is not representable for arbitrary paths in a recording.
func (c *Canvas) DrawGeometry(path *gg.Path, rule gg.FillRule, fill rendernode.Brush, pen *rendernode.Pen) {
	if path == nil {
		return
	}
	if c.setFill(fill) {
		c.rec.SetFillRuleGG(rule)
		c.appendPath(path)
		c.rec.Fill()
	}
	if c.setPen(pen) {
		c.appendPath(path)
		c.rec.Stroke()
	}
}

// DrawImage records a scaled image draw. Opacity below one is not
// representable and is ignored.
func (c *Canvas) DrawImage(img image.Image, dst rendernode.Rect) {
	if img == nil || dst.IsEmpty() {
		return
	}
	c.rec.DrawImageScaled(img, dst.X, dst.Y, dst.Width, dst.Height)
}

// DrawText records a text draw with the fill brush.
func (c *Canvas) DrawText(run rendernode.TextRun, fill rendernode.Brush, pen *rendernode.Pen) {
	if run.Face == nil || run.Text == "" {
		return
	}
	if fill == nil && pen != nil {
		fill = pen.Brush
	}
	if !c.setFill(fill) {
		return
	}
	c.rec.SetFont(run.Face)
	c.rec.DrawString(run.Text, run.Origin.X, run.Origin.Y)
}

func (c *Canvas) appendPath(path *gg.Path) {
	c.rec.ClearPath()
	path.Iterate(func(verb gg.PathVerb, p []float64) {
		switch verb {
		case gg.MoveTo:
			c.rec.MoveTo(p[0], p[1])
		case gg.LineTo:
			c.rec.LineTo(p[0], p[1])
		case gg.QuadTo:
			c.rec.QuadraticTo(p[0], p[1], p[2], p[3])
		case gg.CubicTo:
			c.rec.CubicTo(p[0], p[1], p[2], p[3], p[4], p[5])
		case gg.Close:
			c.rec.ClosePath()
		}
	})
}

func (c *Canvas) push(opacity float64) {
	c.rec.Save()
	c.opacity = append(c.opacity, opacity)
}

// PushState saves the recorder state.
func (c *Canvas) PushState() {
	c.push(c.alpha())
}

// PushTransform records a transform change.
func (c *Canvas) PushTransform(m gg.Matrix, op rendernode.TransformOperator) {
	c.PushState()
	rm := recording.Matrix{A: m.A, B: m.B, C: m.C, D: m.D, E: m.E, F: m.F}
	if op == rendernode.TransformSet {
		c.rec.SetTransform(rm)
	} else {
		c.rec.Transform(rm)
	}
}

// PushClip records a rectangular clip.
func (c *Canvas) PushClip(rect rendernode.Rect) {
	c.PushState()
	c.rec.ClearPath()
	c.rec.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	c.rec.Clip()
}

// PushClipGeometry records a path clip.
func (c *Canvas) PushClipGeometry(path *gg.Path, rule gg.FillRule) {
	c.PushState()
	if path == nil {
		return
	}
	c.rec.SetFillRuleGG(rule)
	c.appendPath(path)
	c.rec.Clip()
}

// PushOpacity multiplies brush alpha for the scope.
func (c *Canvas) PushOpacity(opacity float64) {
	c.push(c.alpha() * min(max(opacity, 0), 1))
}

// PushBlendMode records the scope with normal blending.
func (c *Canvas) PushBlendMode(mode gg.BlendMode) {
	if mode != gg.BlendNormal {
		rendernode.Logger().Warn("record: blend mode not recordable", "mode", mode)
	}
	c.PushState()
}

// PushLayer records a clip to limit.
func (c *Canvas) PushLayer(limit rendernode.Rect) {
	if limit.IsEmpty() {
		c.PushState()
		return
	}
	c.PushClip(limit)
}

// PushFilterEffect applies transform-like effects and records other
// effects' content unfiltered.
func (c *Canvas) PushFilterEffect(effect rendernode.FilterEffect, _ rendernode.Rect) {
	if te, ok := effect.(rendernode.TransformEffect); ok {
		c.PushTransform(te.Matrix(), rendernode.TransformPrepend)
		return
	}
	rendernode.Logger().Warn("record: filter effect not recordable", "effect", effect)
	c.PushState()
}

// PushOpacityMask records the scope unmasked, clipped to bounds unless
// inverted.
func (c *Canvas) PushOpacityMask(_ rendernode.Brush, bounds rendernode.Rect, invert bool) {
	rendernode.Logger().Warn("record: opacity mask not recordable")
	if invert || bounds.IsEmpty() {
		c.PushState()
		return
	}
	c.PushClip(bounds)
}

// Pop restores the state saved by the innermost scope.
func (c *Canvas) Pop() {
	if len(c.opacity) == 0 {
		return
	}
	c.opacity = c.opacity[:len(c.opacity)-1]
	c.rec.Restore()
}
