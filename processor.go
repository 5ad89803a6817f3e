package rendernode

import (
	"math"
	"weak"

	"github.com/gogpu/gg"
)

// Processor turns a render tree into operations. Pull walks the tree
// bottom-up: children are processed first, their operations are
// concatenated in child order and handed to the parent's Process.
//
// Alongside, the processor keeps a NodeCache per node in a table keyed by
// weak pointers, so the table never keeps a node alive. With a canvas
// factory and a LayerCache, containers that stayed cacheable and
// unchanged for the configured number of pulls are rasterized once and
// then served as a single image operation without visiting their
// subtree.
//
// A Processor is not safe for concurrent use.
type Processor struct {
	table     map[weak.Pointer[nodeState]]*NodeCache
	factory   CanvasFactory
	threshold int
	layers    *LayerCache
}

// NewProcessor creates a processor.
func NewProcessor(opts ...ProcessorOption) *Processor {
	o := defaultProcessorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Processor{
		table:     make(map[weak.Pointer[nodeState]]*NodeCache),
		factory:   o.factory,
		threshold: o.threshold,
		layers:    o.layers,
	}
}

// Pull processes root and returns its operations. Cache entries of
// collected or disposed nodes are pruned first. Pull panics if it meets a
// disposed node.
func (p *Processor) Pull(root RenderNode) []Operation {
	p.Prune()
	ops, _, _ := p.pull(root)
	return ops
}

// pull processes n and reports whether the result may be cached and
// whether n's whole subtree is structurally the same as in the last pass.
func (p *Processor) pull(n RenderNode) (ops []Operation, cacheable, unchanged bool) {
	mustBeLive(n)
	entry := p.entry(n)
	c, isContainer := AsContainer(n)

	if isContainer && p.layered() && entry.cacheable &&
		entry.stableCount >= p.threshold && p.sameSubtree(n) {
		if ops, ok := p.fromLayer(entry, c.Version()); ok {
			entry.recordReuse()
			return ops, true, true
		}
	}

	var input []Operation
	childrenCacheable, childrenUnchanged := true, true
	if isContainer {
		for _, child := range c.Children() {
			ops, ok, same := p.pull(child)
			input = append(input, ops...)
			childrenCacheable = childrenCacheable && ok
			childrenUnchanged = childrenUnchanged && same
		}
	}

	ctx := NewContext(input, p.factory)
	out := n.Process(ctx)
	cacheable = ctx.IsRenderCacheEnabled() && childrenCacheable
	unchanged = entry.renderCount > 0 && childrenUnchanged
	if isContainer {
		unchanged = unchanged && entry.SameChildren(c)
		entry.record(c, unchanged, cacheable, out)
	} else {
		entry.record(nil, unchanged, cacheable, out)
	}

	if isContainer && p.layered() && cacheable && entry.stableCount >= p.threshold {
		if ops, ok := p.toLayer(entry, c.Version(), out); ok {
			return ops, true, unchanged
		}
	}
	return out, cacheable, unchanged
}

// sameSubtree reports whether n and every container below it still hold
// the children and version recorded in their last pass.
func (p *Processor) sameSubtree(n RenderNode) bool {
	c, ok := AsContainer(n)
	if !ok {
		return true
	}
	e, ok := p.Cache(n)
	if !ok || !e.SameChildren(c) {
		return false
	}
	for _, child := range c.Children() {
		if !p.sameSubtree(child) {
			return false
		}
	}
	return true
}

func (p *Processor) layered() bool {
	return p.layers != nil && p.factory != nil
}

func (p *Processor) entry(n RenderNode) *NodeCache {
	key := weak.Make(n.state())
	e, ok := p.table[key]
	if !ok {
		e = &NodeCache{id: NodeID(n)}
		p.table[key] = e
	}
	return e
}

// layerRect returns the pixel-aligned rectangle covering b.
func layerRect(b Rect) (x0, y0 float64, w, h int) {
	x0, y0 = math.Floor(b.X), math.Floor(b.Y)
	w = int(math.Ceil(b.Right()) - x0)
	h = int(math.Ceil(b.Bottom()) - y0)
	return x0, y0, w, h
}

// fromLayer returns the cached image operation for entry.
func (p *Processor) fromLayer(entry *NodeCache, version uint64) ([]Operation, bool) {
	pm, ok := p.layers.Get(entry.id, version)
	if !ok {
		return nil, false
	}
	x0, y0, _, _ := layerRect(entry.bounds)
	dst := NewRect(x0, y0, float64(pm.Width()), float64(pm.Height()))
	return []Operation{{
		Bounds:  entry.bounds,
		Render:  func(c Canvas) { c.DrawImage(pm, dst) },
		HitTest: entry.hit,
	}}, true
}

// toLayer rasterizes ops into the layer cache and returns the image
// operation replacing them. Clears and unbounded content are not cached.
func (p *Processor) toLayer(entry *NodeCache, version uint64, ops []Operation) ([]Operation, bool) {
	if len(ops) == 0 {
		return nil, false
	}
	for _, op := range ops {
		if op.Bounds.IsEmpty() {
			return nil, false
		}
	}
	x0, y0, w, h := layerRect(entry.bounds)
	if w <= 0 || h <= 0 || int64(w)*int64(h)*4 > p.layers.MaxSize() {
		return nil, false
	}

	cv, err := p.factory.NewCanvas(w, h)
	if err != nil {
		Logger().Debug("rendernode: layer canvas unavailable", "err", err)
		return nil, false
	}
	cv.PushTransform(gg.Translate(-x0, -y0), TransformPrepend)
	Render(cv, ops)
	cv.Pop()
	img := cv.Snapshot()
	if img == nil {
		return nil, false
	}

	p.layers.Put(entry.id, version, img)
	Logger().Debug("rendernode: subtree rasterized", "node", entry.id, "width", w, "height", h)
	return p.fromLayer(entry, version)
}

// Cache returns the bookkeeping entry for n.
func (p *Processor) Cache(n RenderNode) (*NodeCache, bool) {
	e, ok := p.table[weak.Make(n.state())]
	return e, ok
}

// IsCacheEligible reports whether the last pull left n and its subtree
// cacheable.
func (p *Processor) IsCacheEligible(n RenderNode) bool {
	e, ok := p.Cache(n)
	return ok && e.cacheable
}

// Untracked drops the entries of n and its current descendants. Pass it
// to WithUntrackedObserver.
func (p *Processor) Untracked(n RenderNode) {
	if e, ok := p.table[weak.Make(n.state())]; ok {
		delete(p.table, weak.Make(n.state()))
		if p.layers != nil {
			p.layers.Delete(e.id)
		}
	}
	if c, ok := AsContainer(n); ok {
		for _, child := range c.Children() {
			p.Untracked(child)
		}
	}
}

// Prune drops entries whose node was collected or disposed.
func (p *Processor) Prune() {
	for key, e := range p.table {
		st := key.Value()
		if st != nil && !st.disposed {
			continue
		}
		delete(p.table, key)
		if p.layers != nil {
			p.layers.Delete(e.id)
		}
	}
}

// Len returns the number of tracked nodes.
func (p *Processor) Len() int {
	return len(p.table)
}
