package rendernode

import "github.com/gogpu/gg"

// Operation is one paintable unit produced by processing a node: where it
// draws, how to draw it, and how to decide whether a point hits it.
// Operations are rebuilt on every processing pass.
type Operation struct {
	// Bounds is the area the operation may touch. Clears report an
	// empty rectangle because they affect the whole surface.
	Bounds Rect

	// Render issues the paint commands against a canvas.
	Render func(c Canvas)

	// HitTest reports whether p hits the painted area. When nil,
	// Bounds is used.
	HitTest func(p gg.Point) bool
}

// Contains reports whether p hits the operation.
func (op Operation) Contains(p gg.Point) bool {
	if op.HitTest != nil {
		return op.HitTest(p)
	}
	return op.Bounds.Contains(p)
}

// Draw renders the operation if it has a render function.
func (op Operation) Draw(c Canvas) {
	if op.Render != nil {
		op.Render(c)
	}
}

// decorate wraps op so that render runs inside the scope opened by push.
// Bounds and hit test are supplied by the caller.
func decorate(op Operation, bounds Rect, hit func(gg.Point) bool, push func(c Canvas)) Operation {
	return Operation{
		Bounds: bounds,
		Render: func(c Canvas) {
			push(c)
			defer c.Pop()
			op.Draw(c)
		},
		HitTest: hit,
	}
}

// Render paints ops onto c in order.
func Render(c Canvas, ops []Operation) {
	for _, op := range ops {
		op.Draw(c)
	}
}

// HitTest returns the index of the topmost operation containing p, or -1.
func HitTest(ops []Operation, p gg.Point) int {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].Contains(p) {
			return i
		}
	}
	return -1
}

// Context is handed to RenderNode.Process. It carries the processed
// operations of the node's children, the canvas factory, and the cache
// eligibility flag the node may clear.
type Context struct {
	input        []Operation
	factory      CanvasFactory
	cacheEnabled bool
}

// NewContext creates a processing context over input. factory may be nil.
func NewContext(input []Operation, factory CanvasFactory) *Context {
	return &Context{input: input, factory: factory, cacheEnabled: true}
}

// Input returns the operations of the node's children, in child order.
func (c *Context) Input() []Operation {
	return c.input
}

// Factory returns the canvas factory, or nil when none was configured.
func (c *Context) Factory() CanvasFactory {
	return c.factory
}

// IsRenderCacheEnabled reports whether the result of this pass may be
// reused verbatim by a later frame.
func (c *Context) IsRenderCacheEnabled() bool {
	return c.cacheEnabled
}

// DisableRenderCache marks the result of this pass as not reusable.
func (c *Context) DisableRenderCache() {
	c.cacheEnabled = false
}

// CalculateBounds returns the union of the input operations' bounds, or
// the empty rectangle when there is no input.
func (c *Context) CalculateBounds() Rect {
	return unionBounds(c.input)
}

func unionBounds(ops []Operation) Rect {
	var r Rect
	for _, op := range ops {
		r = r.Union(op.Bounds)
	}
	return r
}
