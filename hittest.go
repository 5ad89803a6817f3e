package rendernode

import (
	"math"

	"github.com/gogpu/gg"
)

// flattenTolerance is the curve flattening tolerance used for stroke hit
// testing, in user units.
const flattenTolerance = 0.25

// containsByRule reports whether p is inside path under rule.
func containsByRule(path *gg.Path, rule gg.FillRule, p gg.Point) bool {
	w := path.Winding(p)
	if rule == gg.FillRuleEvenOdd {
		return w%2 != 0
	}
	return w != 0
}

// distanceToOutline returns the distance from p to the nearest point of
// the path's outline. Each subpath is flattened on its own so the gap
// between subpaths does not count as an edge.
func distanceToOutline(path *gg.Path, p gg.Point) float64 {
	best := math.Inf(1)
	var sub *gg.Path
	flush := func() {
		if sub == nil {
			return
		}
		pts := sub.Flatten(flattenTolerance)
		for i := 1; i < len(pts); i++ {
			best = math.Min(best, segmentDistance(p, pts[i-1], pts[i]))
		}
		if len(pts) == 1 {
			best = math.Min(best, p.Distance(pts[0]))
		}
		sub = nil
	}
	var current gg.Point
	begin := func() {
		if sub == nil {
			sub = gg.NewPath()
			sub.MoveTo(current.X, current.Y)
		}
	}
	path.Iterate(func(verb gg.PathVerb, c []float64) {
		switch verb {
		case gg.MoveTo:
			flush()
			current = gg.Pt(c[0], c[1])
			begin()
		case gg.LineTo:
			begin()
			sub.LineTo(c[0], c[1])
			current = gg.Pt(c[0], c[1])
		case gg.QuadTo:
			begin()
			sub.QuadraticTo(c[0], c[1], c[2], c[3])
			current = gg.Pt(c[2], c[3])
		case gg.CubicTo:
			begin()
			sub.CubicTo(c[0], c[1], c[2], c[3], c[4], c[5])
			current = gg.Pt(c[4], c[5])
		case gg.Close:
			if sub != nil {
				sub.Close()
			}
		}
	})
	flush()
	return best
}

func segmentDistance(p, a, b gg.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.LengthSquared()
	if l2 == 0 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Add(ab.Mul(t)))
}

// hitStrokeBand reports whether p falls in a stroke band whose edges lie
// inset inside and outset outside an outline. inside tells on which side
// of the outline p is and dist how far from it.
func hitStrokeBand(inside bool, dist, inset, outset float64) bool {
	if inside {
		return dist <= inset
	}
	return dist <= outset
}

// ellipseValue returns ((x-cx)/rx)² + ((y-cy)/ry)², or +Inf for a
// degenerate ellipse.
func ellipseValue(center gg.Point, rx, ry float64, p gg.Point) float64 {
	if rx <= 0 || ry <= 0 {
		return math.Inf(1)
	}
	dx := (p.X - center.X) / rx
	dy := (p.Y - center.Y) / ry
	return dx*dx + dy*dy
}
