package raster

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/gogpu/rendernode"
)

func (c *Canvas) push(s scope) {
	s.clipDepth = len(c.clips)
	c.scopes = append(c.scopes, s)
}

// PushState saves transform and clip.
func (c *Canvas) PushState() {
	c.ctx.Push()
	c.push(scope{kind: scopeState})
}

// PushTransform combines m with the current transform.
func (c *Canvas) PushTransform(m gg.Matrix, op rendernode.TransformOperator) {
	c.ctx.Push()
	if op == rendernode.TransformSet {
		c.ctx.SetTransform(m)
	} else {
		c.ctx.Transform(m)
	}
	c.push(scope{kind: scopeState})
}

// PushClip intersects the clip with rect.
func (c *Canvas) PushClip(rect rendernode.Rect) {
	c.ctx.Push()
	c.push(scope{kind: scopeState})
	c.clipRect(rect)
}

func (c *Canvas) clipRect(rect rendernode.Rect) {
	c.ctx.ClipRect(rect.X, rect.Y, rect.Width, rect.Height)
	c.clips = append(c.clips, clipEntry{matrix: c.ctx.GetTransform(), rect: rect})
}

// PushClipGeometry intersects the clip with path.
func (c *Canvas) PushClipGeometry(path *gg.Path, rule gg.FillRule) {
	c.ctx.Push()
	c.push(scope{kind: scopeState})
	if path == nil {
		return
	}
	c.ctx.SetFillRule(rule)
	c.appendPath(path)
	c.ctx.Clip()
	c.clips = append(c.clips, clipEntry{matrix: c.ctx.GetTransform(), path: path, rule: rule})
}

// PushOpacity renders the scope into a gg layer composited at opacity.
func (c *Canvas) PushOpacity(opacity float64) {
	c.ctx.PushLayer(gg.BlendNormal, opacity)
	c.push(scope{kind: scopeLayer})
}

// PushBlendMode renders the scope into a gg layer composited with mode.
func (c *Canvas) PushBlendMode(mode gg.BlendMode) {
	c.ctx.PushLayer(mode, 1)
	c.push(scope{kind: scopeLayer})
}

// PushLayer renders the scope into a gg layer clipped to limit. An empty
// limit leaves the layer unclipped.
func (c *Canvas) PushLayer(limit rendernode.Rect) {
	c.ctx.Push()
	c.push(scope{kind: scopeLimitedLayer})
	if !limit.IsEmpty() {
		c.clipRect(limit)
	}
	c.ctx.PushLayer(gg.BlendNormal, 1)
}

// PushFilterEffect applies effect to the scope's content. Effects that
// are neither transforms nor pixel effects degrade to a state push.
func (c *Canvas) PushFilterEffect(effect rendernode.FilterEffect, _ rendernode.Rect) {
	switch e := effect.(type) {
	case rendernode.TransformEffect:
		c.ctx.Push()
		c.ctx.Transform(e.Matrix())
		c.push(scope{kind: scopeState})
	case rendernode.PixmapEffect:
		c.beginOffscreen(scope{kind: scopeOffscreen, effect: e})
	default:
		rendernode.Logger().Warn("raster: unsupported filter effect", "effect", effect)
		c.PushState()
	}
}

// PushOpacityMask multiplies the scope's content by the alpha of mask
// painted over bounds.
func (c *Canvas) PushOpacityMask(mask rendernode.Brush, bounds rendernode.Rect, invert bool) {
	sub := c.offscreen()
	m := &Canvas{ctx: sub, width: c.width, height: c.height}
	if m.setBrush(mask, true) && !bounds.IsEmpty() {
		sub.DrawRectangle(bounds.X, bounds.Y, bounds.Width, bounds.Height)
		_ = sub.Fill()
	}
	c.beginOffscreen(scope{kind: scopeOffscreen, mask: toRGBA(sub.Image()), invert: invert})
}

// Pop closes the innermost scope. Pop with no open scope does nothing.
func (c *Canvas) Pop() {
	if len(c.scopes) == 0 {
		return
	}
	s := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]

	switch s.kind {
	case scopeState:
		c.ctx.Pop()
	case scopeLayer:
		c.ctx.PopLayer()
	case scopeLimitedLayer:
		c.ctx.PopLayer()
		c.ctx.Pop()
	case scopeOffscreen:
		c.endOffscreen(s)
	}
	c.clips = c.clips[:s.clipDepth]
}

// offscreen creates a transparent context with the current transform and
// every active clip.
func (c *Canvas) offscreen() *gg.Context {
	sub := gg.NewContext(c.width, c.height)
	for _, cl := range c.clips {
		sub.SetTransform(cl.matrix)
		if cl.path != nil {
			sub.SetFillRule(cl.rule)
			appendPathTo(sub, cl.path)
			sub.Clip()
		} else {
			sub.ClipRect(cl.rect.X, cl.rect.Y, cl.rect.Width, cl.rect.Height)
		}
	}
	sub.SetTransform(c.ctx.GetTransform())
	return sub
}

func (c *Canvas) beginOffscreen(s scope) {
	s.parent = c.ctx
	c.ctx = c.offscreen()
	c.push(s)
}

func (c *Canvas) endOffscreen(s scope) {
	img := toRGBA(c.ctx.Image())
	c.ctx = s.parent
	if s.effect != nil {
		s.effect.ApplyImage(img)
	}
	if s.mask != nil {
		applyMask(img, s.mask, s.invert)
	}
	c.ctx.Push()
	c.ctx.Identity()
	c.ctx.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		Opacity:   1,
		BlendMode: gg.BlendNormal,
	})
	c.ctx.Pop()
}

// applyMask scales every premultiplied pixel of img by the mask alpha at
// the same position, or by its complement when invert is set.
func applyMask(img, mask *image.RGBA, invert bool) {
	b := img.Rect.Intersect(mask.Rect)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := uint32(mask.Pix[mask.PixOffset(x, y)+3])
			if invert {
				a = 255 - a
			}
			i := img.PixOffset(x, y)
			for k := 0; k < 4; k++ {
				img.Pix[i+k] = uint8(uint32(img.Pix[i+k]) * a / 255)
			}
		}
	}
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	return rendernode.NewBitmap(img).Image().(*image.RGBA)
}

func appendPathTo(ctx *gg.Context, path *gg.Path) {
	(&Canvas{ctx: ctx}).appendPath(path)
}
