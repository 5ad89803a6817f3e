package rendernode

import (
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

func singleOp(t *testing.T, n RenderNode) Operation {
	t.Helper()
	ops := n.Process(NewContext(nil, nil))
	if len(ops) != 1 {
		t.Fatalf("%T produced %d operations, want 1", n, len(ops))
	}
	return ops[0]
}

func TestClearNode(t *testing.T) {
	op := singleOp(t, NewClearNode(gg.White))
	if !op.Bounds.IsEmpty() {
		t.Errorf("clear bounds = %+v, want empty", op.Bounds)
	}
	if op.Contains(gg.Pt(0, 0)) {
		t.Error("clear should never be hit")
	}
	if !NewClearNode(gg.White).Equals(gg.White) || NewClearNode(gg.White).Equals(gg.Black) {
		t.Error("ClearNode.Equals mismatch")
	}
}

func TestRectangleNodeBoundsIncludePen(t *testing.T) {
	rect := NewRect(10, 10, 20, 20)
	tests := []struct {
		name string
		pen  *Pen
		want Rect
	}{
		{"no pen", nil, rect},
		{"center", &Pen{Brush: Solid(gg.Black), Thickness: 4}, NewRect(8, 8, 24, 24)},
		{"inside", &Pen{Brush: Solid(gg.Black), Thickness: 4, Alignment: StrokeInside}, rect},
		{"outside", &Pen{Brush: Solid(gg.Black), Thickness: 4, Alignment: StrokeOutside}, NewRect(6, 6, 28, 28)},
		{"no brush", &Pen{Thickness: 4}, rect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := singleOp(t, NewRectangleNode(rect, Solid(gg.Red), tt.pen))
			if op.Bounds != tt.want {
				t.Errorf("bounds = %+v, want %+v", op.Bounds, tt.want)
			}
		})
	}
}

func TestRectangleNodeHitTest(t *testing.T) {
	rect := NewRect(0, 0, 20, 20)
	pen := &Pen{Brush: Solid(gg.Black), Thickness: 4}

	filled := singleOp(t, NewRectangleNode(rect, Solid(gg.Red), nil))
	stroked := singleOp(t, NewRectangleNode(rect, nil, pen))

	tests := []struct {
		p              gg.Point
		filled, stroke bool
	}{
		{gg.Pt(10, 10), true, false},
		{gg.Pt(1, 10), true, true},
		{gg.Pt(-1, 10), false, true},
		{gg.Pt(-3, 10), false, false},
		{gg.Pt(21, 21), false, true},
	}
	for _, tt := range tests {
		if got := filled.Contains(tt.p); got != tt.filled {
			t.Errorf("filled.Contains(%v) = %v, want %v", tt.p, got, tt.filled)
		}
		if got := stroked.Contains(tt.p); got != tt.stroke {
			t.Errorf("stroked.Contains(%v) = %v, want %v", tt.p, got, tt.stroke)
		}
	}
}

func TestRectangleNodeEquals(t *testing.T) {
	rect := NewRect(0, 0, 10, 10)
	pen := NewPen(gg.Black, 2)
	n := NewRectangleNode(rect, Solid(gg.Red), pen)

	if !n.Equals(rect, Solid(gg.Red), NewPen(gg.Black, 2)) {
		t.Error("structurally equal parameters should match")
	}
	if n.Equals(rect, Solid(gg.Blue), pen) {
		t.Error("different fill should not match")
	}
	if n.Equals(rect, Solid(gg.Red), nil) {
		t.Error("missing pen should not match")
	}
	if n.Equals(NewRect(0, 0, 10, 11), Solid(gg.Red), pen) {
		t.Error("different rect should not match")
	}

	pen.Thickness = 5
	if !n.Equals(rect, Solid(gg.Red), NewPen(gg.Black, 2)) {
		t.Error("node must not observe later changes to the caller's pen")
	}
}

func TestEllipseNodeHitTest(t *testing.T) {
	rect := NewRect(0, 0, 40, 20)
	filled := singleOp(t, NewEllipseNode(rect, Solid(gg.Red), nil))
	ring := singleOp(t, NewEllipseNode(rect, nil, &Pen{Brush: Solid(gg.Black), Thickness: 2}))

	if !filled.Contains(gg.Pt(20, 10)) {
		t.Error("center should hit the filled ellipse")
	}
	if filled.Contains(gg.Pt(1, 1)) {
		t.Error("bounding box corner is outside the ellipse")
	}
	if ring.Contains(gg.Pt(20, 10)) {
		t.Error("center should not hit a stroke-only ellipse")
	}
	if !ring.Contains(gg.Pt(0, 10)) {
		t.Error("point on the outline should hit the stroke")
	}
	if want := NewRect(-1, -1, 42, 22); ring.Bounds != want {
		t.Errorf("ring bounds = %+v, want %+v", ring.Bounds, want)
	}
}

func trianglePath() *gg.Path {
	p := gg.NewPath()
	p.MoveTo(0, 0)
	p.LineTo(20, 0)
	p.LineTo(0, 20)
	p.Close()
	return p
}

func TestGeometryNode(t *testing.T) {
	path := trianglePath()
	n := NewGeometryNode(path, gg.FillRuleNonZero, Solid(gg.Red), nil)
	op := singleOp(t, n)

	if want := NewRect(0, 0, 20, 20); op.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", op.Bounds, want)
	}
	if !op.Contains(gg.Pt(2, 2)) {
		t.Error("point inside the triangle should hit")
	}
	if op.Contains(gg.Pt(15, 15)) {
		t.Error("point past the hypotenuse should miss")
	}

	if !n.Equals(trianglePath(), gg.FillRuleNonZero, Solid(gg.Red), nil) {
		t.Error("equal path should match")
	}
	if n.Equals(trianglePath(), gg.FillRuleEvenOdd, Solid(gg.Red), nil) {
		t.Error("different fill rule should not match")
	}

	path.LineTo(50, 50)
	if !n.Equals(trianglePath(), gg.FillRuleNonZero, Solid(gg.Red), nil) {
		t.Error("node must keep its own copy of the path")
	}
}

func TestGeometryNodeStrokeHit(t *testing.T) {
	pen := &Pen{Brush: Solid(gg.Black), Thickness: 2}
	op := singleOp(t, NewGeometryNode(trianglePath(), gg.FillRuleNonZero, nil, pen))
	if !op.Contains(gg.Pt(10, -0.5)) {
		t.Error("point just outside an edge should hit the stroke")
	}
	if op.Contains(gg.Pt(4, 4)) {
		t.Error("interior of a stroke-only path should miss")
	}
	if op.Contains(gg.Pt(10, -3)) {
		t.Error("point beyond the stroke should miss")
	}
}

func TestGeometryNodeCurvesAndSubpaths(t *testing.T) {
	path := gg.NewPath()
	path.MoveTo(0, 0)
	path.QuadraticTo(10, 20, 20, 0)
	path.MoveTo(40, 0)
	path.CubicTo(40, 10, 60, 10, 60, 0)

	pen := &Pen{Brush: Solid(gg.Black), Thickness: 2}
	op := singleOp(t, NewGeometryNode(path, gg.FillRuleNonZero, nil, pen))
	if !op.Contains(gg.Pt(10, 10)) {
		t.Error("apex of the quadratic should hit the stroke")
	}
	if !op.Contains(gg.Pt(50, 7.5)) {
		t.Error("apex of the cubic should hit the stroke")
	}
	if op.Contains(gg.Pt(30, 0)) {
		t.Error("gap between subpaths should miss")
	}

	moved := path.Clone()
	moved.LineTo(60, 1)
	n := NewGeometryNode(path, gg.FillRuleNonZero, nil, pen)
	if !n.Equals(path.Clone(), gg.FillRuleNonZero, nil, pen) {
		t.Error("cloned path should match")
	}
	if n.Equals(moved, gg.FillRuleNonZero, nil, pen) {
		t.Error("longer path should not match")
	}
	shifted := gg.NewPath()
	shifted.MoveTo(0, 0)
	shifted.QuadraticTo(10, 21, 20, 0)
	shifted.MoveTo(40, 0)
	shifted.CubicTo(40, 10, 60, 10, 60, 0)
	if n.Equals(shifted, gg.FillRuleNonZero, nil, pen) {
		t.Error("same verbs with different coordinates should not match")
	}
}

func TestTextNodeEmptyRun(t *testing.T) {
	n := NewTextNode(TextRun{Text: "hello"}, Solid(gg.Black), nil)
	if ops := n.Process(NewContext(nil, nil)); len(ops) != 0 {
		t.Errorf("run without a face produced %d operations", len(ops))
	}
	if !(TextRun{}).Bounds().IsEmpty() {
		t.Error("empty run should have empty bounds")
	}
}

func TestTextNodeBounds(t *testing.T) {
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("NewFontSource: %v", err)
	}
	face := src.Face(16)
	run := TextRun{Text: "Hello", Face: face, Origin: gg.Pt(10, 40)}

	b := run.Bounds()
	if b.IsEmpty() {
		t.Fatal("run bounds are empty")
	}
	if b.X != 10 || b.Y >= 40 || b.Bottom() <= 40 {
		t.Errorf("bounds %v should start at x=10 and straddle the baseline", b)
	}
	if b.Width != face.Advance("Hello") {
		t.Errorf("width = %g, want advance %g", b.Width, face.Advance("Hello"))
	}

	n := NewTextNode(run, Solid(gg.Black), nil)
	op := singleOp(t, n)
	if op.Bounds != b {
		t.Errorf("op bounds = %v, want %v", op.Bounds, b)
	}
	if !n.Equals(run, Solid(gg.Black), nil) {
		t.Error("node should equal its own parameters")
	}
	moved := run
	moved.Origin = gg.Pt(11, 40)
	if n.Equals(moved, Solid(gg.Black), nil) {
		t.Error("moved run should not be equal")
	}
}

func TestNodeDispose(t *testing.T) {
	n := NewRectangleNode(NewRect(0, 0, 1, 1), Solid(gg.Red), nil)
	if n.IsDisposed() {
		t.Fatal("new node reports disposed")
	}
	n.Dispose()
	n.Dispose()
	if !n.IsDisposed() {
		t.Error("Dispose had no effect")
	}
	if NodeID(n) == 0 || NodeID(n) == NodeID(NewClearNode(gg.White)) {
		t.Error("node IDs should be unique and non-zero")
	}
}
