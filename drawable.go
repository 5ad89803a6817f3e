package rendernode

import "image"

// Drawable is an external scene object that knows how to record itself.
type Drawable interface {
	// Measure returns the size the drawable wants within available.
	Measure(available Size) Size

	// Render issues the drawable's draw calls.
	Render(g *GraphicsContext)
}

// ChangeTracker is implemented by drawables that track their own
// changes. A drawable reporting no changes is not re-rendered when its
// node can be reused.
type ChangeTracker interface {
	HasChanges() bool
}

// DrawableNode groups the subtree recorded by one Drawable. It passes its
// children's operations through unchanged.
type DrawableNode struct {
	ContainerNode
	drawable Drawable
}

// NewDrawableNode creates a drawable scope.
func NewDrawableNode(d Drawable) *DrawableNode {
	return &DrawableNode{drawable: d}
}

// Equals reports whether the node belongs to d.
func (n *DrawableNode) Equals(d Drawable) bool {
	return n.drawable == d
}

// Drawable returns the owning drawable.
func (n *DrawableNode) Drawable() Drawable { return n.drawable }

// Scene is an immutable rendering of a Drawable: its measured size and
// the operations of a privately recorded tree. Scenes back SceneBrush.
type Scene struct {
	size Size
	root *ContainerNode
	ops  []Operation
}

// RenderScene measures d within available, records it into a fresh tree
// and processes that tree once.
func RenderScene(d Drawable, available Size) *Scene {
	size := d.Measure(available)
	root := NewContainerNode()
	g := NewGraphicsContext(root)
	d.Render(g)
	g.Dispose()
	return &Scene{size: size, root: root, ops: NewProcessor().Pull(root)}
}

// Size returns the measured size.
func (s *Scene) Size() Size { return s.size }

// Operations returns the processed operations.
func (s *Scene) Operations() []Operation { return s.ops }

// Bounds returns the union of the operation bounds.
func (s *Scene) Bounds() Rect { return unionBounds(s.ops) }

// Render paints the scene onto c.
func (s *Scene) Render(c Canvas) {
	Render(c, s.ops)
}

// Rasterize paints the scene into a new canvas from factory and returns
// its pixels, or nil when the canvas cannot be created or read back.
func (s *Scene) Rasterize(factory CanvasFactory, width, height int) image.Image {
	if factory == nil || width <= 0 || height <= 0 {
		return nil
	}
	c, err := factory.NewCanvas(width, height)
	if err != nil {
		Logger().Debug("rendernode: scene rasterize failed", "err", err)
		return nil
	}
	s.Render(c)
	return c.Snapshot()
}

// Dispose releases the recorded tree.
func (s *Scene) Dispose() {
	if s.root != nil {
		s.root.Dispose()
		s.root = nil
		s.ops = nil
	}
}
