package rendernode

import (
	"strings"
	"testing"

	"github.com/gogpu/gg"
)

func TestContextCalculateBounds(t *testing.T) {
	tests := []struct {
		name  string
		input []Operation
		want  Rect
	}{
		{"no input", nil, Rect{}},
		{"single", []Operation{{Bounds: NewRect(1, 2, 3, 4)}}, NewRect(1, 2, 3, 4)},
		{
			"union",
			[]Operation{{Bounds: NewRect(0, 0, 10, 10)}, {Bounds: NewRect(20, 5, 10, 10)}},
			NewRect(0, 0, 30, 15),
		},
		{
			"empty bounds ignored",
			[]Operation{{}, {Bounds: NewRect(5, 5, 5, 5)}},
			NewRect(5, 5, 5, 5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewContext(tt.input, nil).CalculateBounds(); got != tt.want {
				t.Errorf("CalculateBounds() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestContextCacheFlag(t *testing.T) {
	ctx := NewContext(nil, nil)
	if !ctx.IsRenderCacheEnabled() {
		t.Error("new context should allow caching")
	}
	ctx.DisableRenderCache()
	if ctx.IsRenderCacheEnabled() {
		t.Error("DisableRenderCache had no effect")
	}
	if ctx.Factory() != nil {
		t.Error("Factory() should be nil when none was given")
	}
}

func TestProcessorPullOrder(t *testing.T) {
	root := NewContainerNode()
	recordFrame(root, func(g *GraphicsContext) {
		g.DrawRectangle(NewRect(0, 0, 1, 1), Solid(gg.Red), nil)
		s := g.Push()
		g.DrawEllipse(NewRect(1, 1, 1, 1), Solid(gg.Red), nil)
		g.DrawRectangle(NewRect(2, 2, 1, 1), Solid(gg.Red), nil)
		s.Pop()
		g.DrawRectangle(NewRect(3, 3, 1, 1), Solid(gg.Red), nil)
	})

	ops := NewProcessor().Pull(root)
	c := newTraceCanvas(10, 10)
	Render(c, ops)
	want := "Rect(0,0,1,1) PushState Ellipse(1,1,1,1) Pop PushState Rect(2,2,1,1) Pop Rect(3,3,1,1)"
	if got := c.String(); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestProcessorRenderCount(t *testing.T) {
	root := NewContainerNode()
	recordFrame(root, translateScene(10))
	p := NewProcessor()
	for range 3 {
		p.Pull(root)
	}
	e, ok := p.Cache(root)
	if !ok {
		t.Fatal("root has no cache entry")
	}
	if e.RenderCount() != 3 {
		t.Errorf("RenderCount() = %d, want 3", e.RenderCount())
	}
	if e.StableCount() != 3 {
		t.Errorf("StableCount() = %d, want 3", e.StableCount())
	}
	if !e.SameChildren(root) {
		t.Error("SameChildren should hold for an untouched tree")
	}
	if p.Len() != 4 {
		t.Errorf("Len() = %d, want 4", p.Len())
	}
}

func TestProcessorDetectsChildChanges(t *testing.T) {
	root := NewContainerNode()
	recordFrame(root, translateScene(10))
	p := NewProcessor()
	p.Pull(root)
	p.Pull(root)

	recordFrame(root, func(g *GraphicsContext) {
		g.Clear(gg.Transparent)
		s := g.PushTransform(gg.Translate(10, 0), TransformPrepend)
		g.DrawRectangle(NewRect(0, 0, 50, 50), Solid(gg.Blue), nil)
		s.Pop()
	}, WithUntrackedObserver(p.Untracked))

	e, _ := p.Cache(root.Child(1))
	if e.SameChildren(root.Child(1).(*TransformNode).container()) {
		t.Error("SameChildren should fail after a child was replaced")
	}
	p.Pull(root)
	if e.StableCount() != 1 {
		t.Errorf("StableCount() = %d after change, want 1", e.StableCount())
	}
}

func TestProcessorCacheIneligibility(t *testing.T) {
	tests := []struct {
		name string
		draw func(g *GraphicsContext)
		want bool
	}{
		{
			name: "normal blend",
			draw: func(g *GraphicsContext) {
				s := g.PushBlendMode(gg.BlendNormal)
				g.DrawRectangle(NewRect(0, 0, 5, 5), Solid(gg.Red), nil)
				s.Pop()
			},
			want: true,
		},
		{
			name: "multiply blend",
			draw: func(g *GraphicsContext) {
				s := g.PushBlendMode(gg.BlendMultiply)
				g.DrawRectangle(NewRect(0, 0, 5, 5), Solid(gg.Red), nil)
				s.Pop()
			},
			want: false,
		},
		{
			name: "backdrop snapshot",
			draw: func(g *GraphicsContext) {
				s := g.PushOpacity(1)
				g.Snapshot()
				s.Pop()
			},
			want: false,
		},
		{
			name: "transform set",
			draw: func(g *GraphicsContext) {
				s := g.PushTransform(gg.Identity(), TransformSet)
				g.DrawRectangle(NewRect(0, 0, 5, 5), Solid(gg.Red), nil)
				s.Pop()
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewContainerNode()
			p := NewProcessor()
			for range 3 {
				recordFrame(root, tt.draw)
				p.Pull(root)
			}
			if got := p.IsCacheEligible(root.Child(0)); got != tt.want {
				t.Errorf("scope eligible = %v, want %v", got, tt.want)
			}
			if got := p.IsCacheEligible(root); got != tt.want {
				t.Errorf("root eligible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcessorPrune(t *testing.T) {
	root := NewContainerNode()
	recordFrame(root, func(g *GraphicsContext) {
		g.Clear(gg.White)
		g.DrawRectangle(NewRect(0, 0, 1, 1), Solid(gg.Red), nil)
	})
	p := NewProcessor()
	p.Pull(root)
	if p.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", p.Len())
	}

	recordFrame(root, func(g *GraphicsContext) { g.Clear(gg.White) })
	p.Pull(root)
	if p.Len() != 2 {
		t.Errorf("Len() after prune = %d, want 2", p.Len())
	}
}

func TestProcessorUntracked(t *testing.T) {
	root := NewContainerNode()
	draw := func(n int) func(g *GraphicsContext) {
		return func(g *GraphicsContext) {
			s := g.PushOpacity(0.5)
			for i := range n {
				g.DrawRectangle(NewRect(float64(i), 0, 1, 1), Solid(gg.Red), nil)
			}
			s.Pop()
		}
	}
	recordFrame(root, draw(3))
	p := NewProcessor()
	p.Pull(root)
	if p.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", p.Len())
	}
	recordFrame(root, draw(1), WithUntrackedObserver(p.Untracked))
	if p.Len() != 3 {
		t.Errorf("Len() after untracking = %d, want 3", p.Len())
	}

	p.Untracked(root)
	if p.Len() != 0 {
		t.Errorf("Len() after untracking root = %d, want 0", p.Len())
	}
}

func TestProcessorPullDisposedPanics(t *testing.T) {
	root := NewContainerNode()
	root.Dispose()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Pull of a disposed node should panic")
		}
		if !strings.Contains(r.(string), "used after Dispose") {
			t.Errorf("panic = %v", r)
		}
	}()
	NewProcessor().Pull(root)
}

func TestProcessorFactoryReachesNodes(t *testing.T) {
	f := &traceFactory{}
	root := NewContainerNode()
	var seen CanvasFactory
	root.AddChild(&factoryNode{seen: &seen})
	NewProcessor(WithCanvasFactory(f)).Pull(root)
	if seen != CanvasFactory(f) {
		t.Error("Context.Factory did not return the configured factory")
	}
}

type factoryNode struct {
	NodeBase
	seen *CanvasFactory
}

func (n *factoryNode) Process(ctx *Context) []Operation {
	*n.seen = ctx.Factory()
	return nil
}

// layeredScene is a clear followed by a stable opacity scope.
func layeredScene(fill gg.RGBA) func(g *GraphicsContext) {
	return func(g *GraphicsContext) {
		g.Clear(gg.White)
		s := g.PushOpacity(0.5)
		g.DrawRectangle(NewRect(2, 3, 10, 10), Solid(fill), nil)
		s.Pop()
	}
}

func TestProcessorLayerCache(t *testing.T) {
	f := &traceFactory{}
	layers := NewLayerCache(1)
	p := NewProcessor(WithCanvasFactory(f), WithLayerCache(layers), WithCacheThreshold(2))
	root := NewContainerNode()
	recordFrame(root, layeredScene(gg.Red), WithUntrackedObserver(p.Untracked))

	p.Pull(root)
	if len(f.made) != 0 {
		t.Fatalf("rasterized after one pull: %d canvases", len(f.made))
	}

	ops := p.Pull(root)
	if len(f.made) != 1 {
		t.Fatalf("made %d canvases on the second pull, want 1", len(f.made))
	}
	offscreen := f.made[0]
	if w, h := offscreen.Size(); w != 10 || h != 10 {
		t.Errorf("layer canvas = %dx%d, want 10x10", w, h)
	}
	if !strings.HasPrefix(offscreen.String(), "PushTransform(Prepend -2,-3) PushOpacity(0.5) Rect(2,3,10,10)") {
		t.Errorf("layer calls = %q", offscreen.String())
	}
	scope := root.Child(1)
	if !layers.Contains(NodeID(scope)) {
		t.Error("scope was not stored in the layer cache")
	}

	c := newTraceCanvas(20, 20)
	Render(c, ops)
	if got, want := c.String(), "Clear Image(2,3,10,10)"; got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}
	if i := HitTest(ops, gg.Pt(5, 5)); i != 1 {
		t.Errorf("HitTest on cached layer = %d, want 1", i)
	}

	rect := root.Child(1).(*OpacityNode).Child(0)
	p.Pull(root)
	if e, _ := p.Cache(rect); e.RenderCount() != 2 {
		t.Errorf("cached subtree was visited: RenderCount() = %d, want 2", e.RenderCount())
	}
	if len(f.made) != 1 {
		t.Errorf("layer rasterized again: %d canvases", len(f.made))
	}

	recordFrame(root, layeredScene(gg.Blue), WithUntrackedObserver(p.Untracked))
	c = newTraceCanvas(20, 20)
	Render(c, p.Pull(root))
	if got, want := c.String(), "Clear PushOpacity(0.5) Rect(2,3,10,10) Pop"; got != want {
		t.Errorf("calls after change = %q, want %q", got, want)
	}
}

func TestProcessorLayerCacheSeesDeepChange(t *testing.T) {
	f := &traceFactory{}
	p := NewProcessor(WithCanvasFactory(f), WithLayerCache(NewLayerCache(1)), WithCacheThreshold(1))
	root := NewContainerNode()
	recordFrame(root, func(g *GraphicsContext) {
		outer := g.Push()
		inner := g.Push()
		g.DrawRectangle(NewRect(0, 0, 10, 10), Solid(gg.Red), nil)
		inner.Pop()
		outer.Pop()
	})
	for range 3 {
		p.Pull(root)
	}
	made := len(f.made)

	outer, _ := AsContainer(root.Child(0))
	inner, _ := AsContainer(outer.Child(0))
	inner.SetChild(0, NewRectangleNode(NewRect(0, 0, 30, 30), Solid(gg.Red), nil))

	ops := p.Pull(root)
	if got, want := unionBounds(ops), NewRect(0, 0, 30, 30); got != want {
		t.Fatalf("bounds = %+v, want %+v", got, want)
	}
	if len(f.made) == made {
		t.Fatal("changed subtree was served from the old layer")
	}
	innerLayer := f.made[made]
	if w, h := innerLayer.Size(); w != 30 || h != 30 {
		t.Errorf("new layer = %dx%d, want 30x30", w, h)
	}
	if !strings.Contains(innerLayer.String(), "Rect(0,0,30,30)") {
		t.Errorf("new layer calls = %q", innerLayer.String())
	}
	if e, _ := p.Cache(outer); e.StableCount() != 1 {
		t.Errorf("outer StableCount() = %d, want 1 after a change below it", e.StableCount())
	}
}

func TestProcessorLayerCacheNeedsFactory(t *testing.T) {
	layers := NewLayerCache(1)
	p := NewProcessor(WithLayerCache(layers), WithCacheThreshold(1))
	root := NewContainerNode()
	recordFrame(root, layeredScene(gg.Red))
	for range 3 {
		p.Pull(root)
	}
	if layers.Stats().Entries != 0 {
		t.Error("layer cache used without a canvas factory")
	}
}

func TestHitTestTopmost(t *testing.T) {
	root := NewContainerNode()
	recordFrame(root, func(g *GraphicsContext) {
		g.Clear(gg.White)
		g.DrawRectangle(NewRect(0, 0, 20, 20), Solid(gg.Red), nil)
		s := g.PushTransform(gg.Translate(10, 0), TransformPrepend)
		g.DrawRectangle(NewRect(0, 0, 20, 20), Solid(gg.Blue), nil)
		s.Pop()
	})
	ops := NewProcessor().Pull(root)

	tests := []struct {
		p    gg.Point
		want int
	}{
		{gg.Pt(5, 5), 1},
		{gg.Pt(15, 5), 2},
		{gg.Pt(25, 5), 2},
		{gg.Pt(35, 5), -1},
	}
	for _, tt := range tests {
		if got := HitTest(ops, tt.p); got != tt.want {
			t.Errorf("HitTest(%v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}
