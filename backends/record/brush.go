package record

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"

	"github.com/gogpu/rendernode"
)

// convert returns b with the scope opacity folded in, as a recording
// brush. Scene brushes have no recording form and are skipped.
func (c *Canvas) convert(b rendernode.Brush) (recording.Brush, bool) {
	if b == nil {
		return nil, false
	}
	a := c.alpha()
	switch br := b.(type) {
	case rendernode.SolidBrush:
		col := br.Color
		col.A *= a
		return recording.SolidBrush{Color: col}, true
	case *rendernode.LinearGradientBrush:
		cp := *br
		cp.Stops = fadeStops(br.Stops, a)
		gb, _ := rendernode.ToGG(&cp)
		return recording.BrushFromGG(gb), true
	case *rendernode.RadialGradientBrush:
		cp := *br
		cp.Stops = fadeStops(br.Stops, a)
		gb, _ := rendernode.ToGG(&cp)
		return recording.BrushFromGG(gb), true
	default:
		rendernode.Logger().Warn("record: brush not recordable", "brush", b)
		return nil, false
	}
}

func fadeStops(stops []rendernode.GradientStop, a float64) []rendernode.GradientStop {
	out := make([]rendernode.GradientStop, len(stops))
	for i, s := range stops {
		s.Color = gg.RGBA{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: s.Color.A * a}
		out[i] = s
	}
	return out
}

func (c *Canvas) setFill(b rendernode.Brush) bool {
	rb, ok := c.convert(b)
	if !ok {
		return false
	}
	c.rec.SetFillStyle(rb)
	return true
}

func (c *Canvas) setPen(pen *rendernode.Pen) bool {
	if pen == nil || pen.Thickness <= 0 {
		return false
	}
	rb, ok := c.convert(pen.Brush)
	if !ok {
		return false
	}
	c.rec.SetStrokeStyle(rb)
	c.rec.SetLineWidth(pen.Thickness)
	c.rec.SetLineCapGG(pen.Cap)
	c.rec.SetLineJoinGG(pen.Join)
	if pen.MiterLimit > 0 {
		c.rec.SetMiterLimit(pen.MiterLimit)
	}
	if len(pen.Dash) > 0 {
		c.rec.SetDash(pen.Dash...)
		c.rec.SetDashOffset(pen.DashOffset)
	} else {
		c.rec.ClearDash()
	}
	return true
}
