package rendernode

import (
	"fmt"

	"github.com/gogpu/gg"
)

// cursor is a position in the tree: the next child of container to be
// matched against a draw call.
type cursor struct {
	container *ContainerNode
	index     int
}

// FrameStats counts what one recording pass did to the tree.
type FrameStats struct {
	Reused  int // nodes matched and kept
	Created int // nodes built for a new or changed call
	Removed int // nodes disposed because no call reached them
}

// GraphicsContext records draw calls into a retained node tree.
//
// It looks like an immediate-mode drawing API, but every call is diffed
// against the node already at the current tree position: an equal node is
// kept (preserving its cache entry), a different one is replaced. Children
// that no call reached are removed when their scope is popped or when the
// context is disposed.
//
// A GraphicsContext records one pass over the tree. Use Reset to record
// the next frame over the same root. It is not safe for concurrent use.
//
// Example:
//
//	root := rendernode.NewContainerNode()
//	g := rendernode.NewGraphicsContext(root)
//	g.Clear(gg.White)
//	s := g.PushTransform(gg.Translate(10, 0), rendernode.TransformPrepend)
//	g.DrawRectangle(rendernode.NewRect(10, 0, 50, 50), rendernode.Solid(gg.Red), nil)
//	s.Pop()
//	g.Dispose()
type GraphicsContext struct {
	root      *ContainerNode
	cur       cursor
	stack     []cursor
	untracked func(RenderNode)
	stats     FrameStats
}

// NewGraphicsContext starts recording over root.
func NewGraphicsContext(root *ContainerNode, opts ...GraphicsOption) *GraphicsContext {
	o := defaultGraphicsOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &GraphicsContext{
		root:      root,
		cur:       cursor{container: root},
		untracked: o.untracked,
	}
}

// Root returns the root container.
func (g *GraphicsContext) Root() *ContainerNode { return g.root }

// Depth returns the number of open scopes. Pass it to Pop to unwind to
// this point later.
func (g *GraphicsContext) Depth() int { return len(g.stack) }

// Stats returns the counters of the current pass.
func (g *GraphicsContext) Stats() FrameStats { return g.stats }

// current returns the node at the cursor, or nil past the end.
func (g *GraphicsContext) current() RenderNode {
	c := g.cur.container
	if g.cur.index < c.Len() {
		return c.Child(g.cur.index)
	}
	return nil
}

// place stores n at the cursor, replacing and disposing whatever was
// there, and advances.
func (g *GraphicsContext) place(n RenderNode) {
	c := g.cur.container
	if g.cur.index < c.Len() {
		old := c.Child(g.cur.index)
		g.notify(old)
		c.SetChild(g.cur.index, n)
		g.stats.Removed++
	} else {
		c.AddChild(n)
	}
	g.stats.Created++
	g.cur.index++
	g.invalidateAncestors()
}

func (g *GraphicsContext) notify(n RenderNode) {
	if g.untracked != nil {
		g.untracked(n)
	}
}

// invalidateAncestors bumps the version of every open scope's container
// so cache snapshots along the path observe a change below them.
func (g *GraphicsContext) invalidateAncestors() {
	for _, s := range g.stack {
		s.container.invalidate()
	}
}

// truncate removes the children of the current container past the cursor.
func (g *GraphicsContext) truncate() {
	c := g.cur.container
	n := c.Len() - g.cur.index
	if n <= 0 {
		return
	}
	for _, child := range c.Children()[g.cur.index:] {
		g.notify(child)
	}
	c.RemoveRange(g.cur.index, n)
	g.stats.Removed += n
	g.invalidateAncestors()
}

// reconcile keeps the node at the cursor when it is an N accepted by
// match, and otherwise replaces it with create().
func reconcile[N RenderNode](g *GraphicsContext, match func(N) bool, create func() N) N {
	if n, ok := g.current().(N); ok && match(n) {
		g.cur.index++
		g.stats.Reused++
		return n
	}
	n := create()
	g.place(n)
	return n
}

// pushScope reconciles a container node like reconcile and descends into
// it. A replaced container hands its children over to the new one, so a
// changed scope parameter does not rebuild the subtree.
func pushScope[N containerNode](g *GraphicsContext, match func(N) bool, create func() N) N {
	var n N
	cur := g.current()
	if existing, ok := cur.(N); ok && match(existing) {
		n = existing
		g.stats.Reused++
		g.cur.index++
	} else {
		n = create()
		if old, ok := AsContainer(cur); ok {
			n.container().BringFrom(old)
		}
		g.place(n)
	}
	g.stack = append(g.stack, g.cur)
	g.cur = cursor{container: n.container()}
	return n
}

// Clear fills the whole surface.
func (g *GraphicsContext) Clear(c gg.RGBA) {
	reconcile(g,
		func(n *ClearNode) bool { return n.Equals(c) },
		func() *ClearNode { return NewClearNode(c) })
}

// DrawRectangle fills and/or strokes rect. Either fill or pen may be nil.
func (g *GraphicsContext) DrawRectangle(rect Rect, fill Brush, pen *Pen) {
	reconcile(g,
		func(n *RectangleNode) bool { return n.Equals(rect, fill, pen) },
		func() *RectangleNode { return NewRectangleNode(rect, fill, pen) })
}

// DrawEllipse fills and/or strokes the ellipse inscribed in rect.
func (g *GraphicsContext) DrawEllipse(rect Rect, fill Brush, pen *Pen) {
	reconcile(g,
		func(n *EllipseNode) bool { return n.Equals(rect, fill, pen) },
		func() *EllipseNode { return NewEllipseNode(rect, fill, pen) })
}

// DrawGeometry fills and/or strokes path.
func (g *GraphicsContext) DrawGeometry(path *gg.Path, rule gg.FillRule, fill Brush, pen *Pen) {
	reconcile(g,
		func(n *GeometryNode) bool { return n.Equals(path, rule, fill, pen) },
		func() *GeometryNode { return NewGeometryNode(path, rule, fill, pen) })
}

// DrawImageSource draws the bitmap of src into dst.
func (g *GraphicsContext) DrawImageSource(src ImageSource, dst Rect) {
	reconcile(g,
		func(n *ImageSourceNode) bool { return n.Equals(src, dst) },
		func() *ImageSourceNode { return NewImageSourceNode(src, dst) })
}

// DrawVideoSource draws frame of src into dst.
func (g *GraphicsContext) DrawVideoSource(src VideoSource, frame int, dst Rect) {
	reconcile(g,
		func(n *VideoSourceNode) bool { return n.Equals(src, frame, dst) },
		func() *VideoSourceNode { return NewVideoSourceNode(src, frame, dst) })
}

// DrawText draws a text run.
func (g *GraphicsContext) DrawText(run TextRun, fill Brush, pen *Pen) {
	reconcile(g,
		func(n *TextNode) bool { return n.Equals(run, fill, pen) },
		func() *TextNode { return NewTextNode(run, fill, pen) })
}

// DrawNode inserts a caller-built node. It is kept across passes as long
// as the same node is passed. A node found further down the current scope
// is moved up to the cursor rather than rebuilt. Moving a node into a
// different scope is not detected: its old scope disposes it.
func (g *GraphicsContext) DrawNode(node RenderNode) {
	mustBeLive(node)
	c := g.cur.container
	for i := g.cur.index + 1; i < c.Len(); i++ {
		if c.Child(i) == node {
			c.move(i, g.cur.index)
			g.cur.index++
			g.stats.Reused++
			g.invalidateAncestors()
			return
		}
	}
	reconcile(g,
		func(n RenderNode) bool { return n == node },
		func() RenderNode { return node })
}

// Snapshot captures the pixels composited so far when the tree is
// rendered. Draw them later in the same pass with DrawBackdrop.
func (g *GraphicsContext) Snapshot() *Backdrop {
	n := reconcile(g,
		func(*SnapshotBackdropNode) bool { return true },
		NewSnapshotBackdropNode)
	return n.Backdrop()
}

// DrawBackdrop draws a captured backdrop scaled into bounds.
func (g *GraphicsContext) DrawBackdrop(b *Backdrop, bounds Rect) {
	reconcile(g,
		func(n *BackdropNode) bool { return n.Equals(b, bounds) },
		func() *BackdropNode { return NewBackdropNode(b, bounds) })
}

// PushTransform opens a transform scope.
func (g *GraphicsContext) PushTransform(m gg.Matrix, op TransformOperator) PushedState {
	depth := g.Depth()
	pushScope(g,
		func(n *TransformNode) bool { return n.Equals(m, op) },
		func() *TransformNode { return NewTransformNode(m, op) })
	return PushedState{g: g, depth: depth}
}

// PushClip opens a rectangular clip scope.
func (g *GraphicsContext) PushClip(rect Rect) PushedState {
	depth := g.Depth()
	pushScope(g,
		func(n *ClipNode) bool { return n.Equals(rect) },
		func() *ClipNode { return NewClipNode(rect) })
	return PushedState{g: g, depth: depth}
}

// PushClipGeometry opens a path clip scope.
func (g *GraphicsContext) PushClipGeometry(path *gg.Path, rule gg.FillRule) PushedState {
	depth := g.Depth()
	pushScope(g,
		func(n *ClipGeometryNode) bool { return n.Equals(path, rule) },
		func() *ClipGeometryNode { return NewClipGeometryNode(path, rule) })
	return PushedState{g: g, depth: depth}
}

// PushOpacity opens an opacity scope.
func (g *GraphicsContext) PushOpacity(opacity float64) PushedState {
	depth := g.Depth()
	pushScope(g,
		func(n *OpacityNode) bool { return n.Equals(opacity) },
		func() *OpacityNode { return NewOpacityNode(opacity) })
	return PushedState{g: g, depth: depth}
}

// PushBlendMode opens a blend mode scope.
func (g *GraphicsContext) PushBlendMode(mode gg.BlendMode) PushedState {
	depth := g.Depth()
	pushScope(g,
		func(n *BlendModeNode) bool { return n.Equals(mode) },
		func() *BlendModeNode { return NewBlendModeNode(mode) })
	return PushedState{g: g, depth: depth}
}

// PushLayer opens a layer scope bounded by limit.
func (g *GraphicsContext) PushLayer(limit Rect) PushedState {
	depth := g.Depth()
	pushScope(g,
		func(n *LayerNode) bool { return n.Equals(limit) },
		func() *LayerNode { return NewLayerNode(limit) })
	return PushedState{g: g, depth: depth}
}

// PushFilterEffect opens a filter scope. A *FilterEffectGroup opens one
// nested scope per member; the returned handle closes all of them.
func (g *GraphicsContext) PushFilterEffect(effect FilterEffect) PushedState {
	depth := g.Depth()
	effects := []FilterEffect{effect}
	if group, ok := effect.(*FilterEffectGroup); ok {
		effects = group.Effects
	}
	for _, e := range effects {
		pushScope(g,
			func(n *FilterEffectNode) bool { return n.Equals(e) },
			func() *FilterEffectNode { return NewFilterEffectNode(e) })
	}
	return PushedState{g: g, depth: depth}
}

// PushOpacityMask opens an opacity mask scope.
func (g *GraphicsContext) PushOpacityMask(mask Brush, bounds Rect, invert bool) PushedState {
	depth := g.Depth()
	pushScope(g,
		func(n *OpacityMaskNode) bool { return n.Equals(mask, bounds, invert) },
		func() *OpacityMaskNode { return NewOpacityMaskNode(mask, bounds, invert) })
	return PushedState{g: g, depth: depth}
}

// Push opens a plain state scope.
func (g *GraphicsContext) Push() PushedState {
	depth := g.Depth()
	pushScope(g,
		func(*PushNode) bool { return true },
		NewPushNode)
	return PushedState{g: g, depth: depth}
}

// DrawDrawable records d into its own scope. When the node at the cursor
// already belongs to d and d reports no changes through ChangeTracker,
// the recorded subtree is kept and Render is not called.
func (g *GraphicsContext) DrawDrawable(d Drawable) {
	if n, ok := g.current().(*DrawableNode); ok && n.Equals(d) {
		if t, ok := d.(ChangeTracker); ok && !t.HasChanges() {
			g.cur.index++
			g.stats.Reused++
			return
		}
	}
	depth := g.Depth()
	pushScope(g,
		func(n *DrawableNode) bool { return n.Equals(d) },
		func() *DrawableNode { return NewDrawableNode(d) })
	defer func() { _ = g.Pop(depth) }()
	d.Render(g)
}

// Pop closes scopes. Pop(-1) closes the innermost one; Pop(n) with n >= 0
// closes scopes until Depth() == n. Every closed scope drops the children
// no call reached during this pass.
func (g *GraphicsContext) Pop(count int) error {
	target := count
	if count < 0 {
		target = len(g.stack) - 1
	}
	if target < 0 || target > len(g.stack) {
		return fmt.Errorf("rendernode: pop to depth %d at depth %d: %w", count, len(g.stack), ErrNoScope)
	}
	for len(g.stack) > target {
		g.popOne()
	}
	return nil
}

func (g *GraphicsContext) popOne() {
	g.truncate()
	last := len(g.stack) - 1
	g.cur = g.stack[last]
	g.stack = g.stack[:last]
}

// Dispose ends the pass: open scopes are closed and root children past
// the cursor are removed.
func (g *GraphicsContext) Dispose() {
	for len(g.stack) > 0 {
		g.popOne()
	}
	g.truncate()
	Logger().Debug("rendernode: frame recorded",
		"reused", g.stats.Reused, "created", g.stats.Created, "removed", g.stats.Removed)
}

// Reset rewinds the cursor to the start of the root for the next pass.
// Reset does not remove anything; call Dispose first.
func (g *GraphicsContext) Reset() {
	g.stack = g.stack[:0]
	g.cur = cursor{container: g.root}
	g.stats = FrameStats{}
}

// PushedState closes a scope opened by one of the Push methods.
type PushedState struct {
	g     *GraphicsContext
	depth int
}

// Pop closes the scope together with anything opened inside it and not
// yet closed. Calling Pop again is a no-op.
func (s PushedState) Pop() {
	if s.g == nil || s.g.Depth() <= s.depth {
		return
	}
	_ = s.g.Pop(s.depth)
}

// Depth returns the scope depth the handle unwinds to.
func (s PushedState) Depth() int { return s.depth }
