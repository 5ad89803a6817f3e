package raster

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/gogpu/rendernode"
)

// setBrush installs b as the context brush. It reports false for a nil
// brush, meaning nothing should be painted.
func (c *Canvas) setBrush(b rendernode.Brush, fill bool) bool {
	if b == nil {
		return false
	}
	if sb, ok := b.(*rendernode.SceneBrush); ok {
		return c.setSceneBrush(sb, fill)
	}
	gb, ok := rendernode.ToGG(b)
	if !ok {
		rendernode.Logger().Warn("raster: unsupported brush", "brush", b)
		return false
	}
	if fill {
		c.ctx.SetFillBrush(gb)
	} else {
		c.ctx.SetStrokeBrush(gb)
	}
	return true
}

// setSceneBrush renders the scene under the current transform and uses
// the pixels as a device-space pattern.
func (c *Canvas) setSceneBrush(sb *rendernode.SceneBrush, fill bool) bool {
	if sb.Scene == nil || sb.Opacity <= 0 {
		return false
	}
	sub := &Canvas{ctx: gg.NewContext(c.width, c.height), width: c.width, height: c.height}
	sub.ctx.SetTransform(c.ctx.GetTransform())
	sb.Scene.Render(sub)
	img := toRGBA(sub.ctx.Image())
	if sb.Opacity < 1 {
		scaleAlpha(img, sb.Opacity)
	}
	pattern := c.ctx.CreateImagePattern(gg.ImageBufFromImage(img), 0, 0, c.width, c.height)
	if fill {
		c.ctx.SetFillPattern(pattern)
	} else {
		c.ctx.SetStrokePattern(pattern)
	}
	return true
}

// setPen installs the pen's brush and line style. The line width is set
// by the caller since alignment may change it.
func (c *Canvas) setPen(pen *rendernode.Pen) bool {
	if pen == nil || pen.Thickness <= 0 || !c.setBrush(pen.Brush, false) {
		return false
	}
	c.ctx.SetLineWidth(pen.Thickness)
	c.ctx.SetLineCap(pen.Cap)
	c.ctx.SetLineJoin(pen.Join)
	if pen.MiterLimit > 0 {
		c.ctx.SetMiterLimit(pen.MiterLimit)
	}
	if len(pen.Dash) > 0 {
		c.ctx.SetDash(pen.Dash...)
		c.ctx.SetDashOffset(pen.DashOffset)
	} else {
		c.ctx.ClearDash()
	}
	return true
}

func scaleAlpha(img *image.RGBA, opacity float64) {
	f := uint32(opacity * 255)
	for i := range img.Pix {
		img.Pix[i] = uint8(uint32(img.Pix[i]) * f / 255)
	}
}
