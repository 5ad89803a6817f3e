package rendernode

import (
	"math"

	"github.com/gogpu/gg"
)

// Decorator nodes group the children drawn inside one Push scope. Each
// returns one operation per input operation, wrapping the child's render
// closure in the matching canvas scope.

// TransformNode applies a matrix to its children.
type TransformNode struct {
	ContainerNode
	matrix gg.Matrix
	op     TransformOperator
}

// NewTransformNode creates a transform scope.
func NewTransformNode(m gg.Matrix, op TransformOperator) *TransformNode {
	return &TransformNode{matrix: m, op: op}
}

// Equals reports whether the node was created with m and op.
func (n *TransformNode) Equals(m gg.Matrix, op TransformOperator) bool {
	return n.matrix == m && n.op == op
}

// Matrix returns the node's matrix.
func (n *TransformNode) Matrix() gg.Matrix { return n.matrix }

// Process maps child bounds through the matrix. Hit points are mapped
// back through the inverse; a singular matrix is never hit. TransformSet
// discards the transform the content is drawn under, so it cannot be
// rasterized offscreen and is not cacheable.
func (n *TransformNode) Process(ctx *Context) []Operation {
	m, op := n.matrix, n.op
	if op == TransformSet {
		ctx.DisableRenderCache()
	}
	invertible := math.Abs(m.A*m.E-m.B*m.D) >= 1e-10
	inv := m.Invert()
	return wrapEach(ctx.Input(), func(child Operation) Operation {
		return decorate(child, child.Bounds.Transform(m),
			func(p gg.Point) bool {
				return invertible && child.Contains(inv.TransformPoint(p))
			},
			func(c Canvas) { c.PushTransform(m, op) })
	})
}

// ClipNode clips its children to a rectangle.
type ClipNode struct {
	ContainerNode
	rect Rect
}

// NewClipNode creates a rectangular clip scope.
func NewClipNode(rect Rect) *ClipNode {
	return &ClipNode{rect: rect}
}

// Equals reports whether the node clips to rect.
func (n *ClipNode) Equals(rect Rect) bool {
	return n.rect == rect
}

// Process intersects child bounds with the clip.
func (n *ClipNode) Process(ctx *Context) []Operation {
	rect := n.rect
	return wrapEach(ctx.Input(), func(child Operation) Operation {
		return decorate(child, child.Bounds.Intersect(rect),
			func(p gg.Point) bool { return rect.Contains(p) && child.Contains(p) },
			func(c Canvas) { c.PushClip(rect) })
	})
}

// ClipGeometryNode clips its children to a path.
type ClipGeometryNode struct {
	ContainerNode
	path *gg.Path
	rule gg.FillRule
}

// NewClipGeometryNode creates a path clip scope. The path is cloned.
func NewClipGeometryNode(path *gg.Path, rule gg.FillRule) *ClipGeometryNode {
	return &ClipGeometryNode{path: path.Clone(), rule: rule}
}

// Equals reports whether the node clips to path under rule.
func (n *ClipGeometryNode) Equals(path *gg.Path, rule gg.FillRule) bool {
	return n.rule == rule && pathEqual(n.path, path)
}

// Process intersects child bounds with the path's bounding box.
func (n *ClipGeometryNode) Process(ctx *Context) []Operation {
	path, rule := n.path, n.rule
	clip := pathBounds(path)
	return wrapEach(ctx.Input(), func(child Operation) Operation {
		return decorate(child, child.Bounds.Intersect(clip),
			func(p gg.Point) bool { return containsByRule(path, rule, p) && child.Contains(p) },
			func(c Canvas) { c.PushClipGeometry(path, rule) })
	})
}

// OpacityNode multiplies the alpha of its children.
type OpacityNode struct {
	ContainerNode
	opacity float64
}

// NewOpacityNode creates an opacity scope.
func NewOpacityNode(opacity float64) *OpacityNode {
	return &OpacityNode{opacity: opacity}
}

// Equals reports whether the node applies opacity.
func (n *OpacityNode) Equals(opacity float64) bool {
	return n.opacity == opacity
}

// Process keeps child bounds; fully transparent content is not hit.
func (n *OpacityNode) Process(ctx *Context) []Operation {
	opacity := n.opacity
	return wrapEach(ctx.Input(), func(child Operation) Operation {
		return decorate(child, child.Bounds,
			func(p gg.Point) bool { return opacity > 0 && child.Contains(p) },
			func(c Canvas) { c.PushOpacity(opacity) })
	})
}

// BlendModeNode composites its children with a blend mode.
type BlendModeNode struct {
	ContainerNode
	mode gg.BlendMode
}

// NewBlendModeNode creates a blend mode scope.
func NewBlendModeNode(mode gg.BlendMode) *BlendModeNode {
	return &BlendModeNode{mode: mode}
}

// Equals reports whether the node uses mode.
func (n *BlendModeNode) Equals(mode gg.BlendMode) bool {
	return n.mode == mode
}

// Process wraps each child. Any mode other than normal reads the pixels
// underneath, so the result is not cacheable.
func (n *BlendModeNode) Process(ctx *Context) []Operation {
	if n.mode != gg.BlendNormal {
		ctx.DisableRenderCache()
	}
	mode := n.mode
	return wrapEach(ctx.Input(), func(child Operation) Operation {
		return decorate(child, child.Bounds, child.Contains,
			func(c Canvas) { c.PushBlendMode(mode) })
	})
}

// LayerNode isolates its children in a layer bounded by limit. An empty
// limit leaves the layer unbounded.
type LayerNode struct {
	ContainerNode
	limit Rect
}

// NewLayerNode creates a layer scope.
func NewLayerNode(limit Rect) *LayerNode {
	return &LayerNode{limit: limit}
}

// Equals reports whether the node was created with limit.
func (n *LayerNode) Equals(limit Rect) bool {
	return n.limit == limit
}

// Process intersects child bounds with the limit.
func (n *LayerNode) Process(ctx *Context) []Operation {
	limit := n.limit
	return wrapEach(ctx.Input(), func(child Operation) Operation {
		bounds := child.Bounds
		hit := child.Contains
		if !limit.IsEmpty() {
			bounds = bounds.Intersect(limit)
			hit = func(p gg.Point) bool { return limit.Contains(p) && child.Contains(p) }
		}
		return decorate(child, bounds, hit, func(c Canvas) { c.PushLayer(limit) })
	})
}

// FilterEffectNode applies a FilterEffect to its children.
type FilterEffectNode struct {
	ContainerNode
	effect FilterEffect
}

// NewFilterEffectNode creates a filter scope.
func NewFilterEffectNode(effect FilterEffect) *FilterEffectNode {
	return &FilterEffectNode{effect: effect}
}

// Equals reports whether the node applies an equal effect.
func (n *FilterEffectNode) Equals(effect FilterEffect) bool {
	return filterEqual(n.effect, effect)
}

// Effect returns the node's effect.
func (n *FilterEffectNode) Effect() FilterEffect { return n.effect }

// Process maps child bounds through the effect. Transform-like effects
// are hit tested exactly; others by their output bounds.
func (n *FilterEffectNode) Process(ctx *Context) []Operation {
	effect := n.effect
	return wrapEach(ctx.Input(), func(child Operation) Operation {
		bounds := child.Bounds
		if effect != nil {
			bounds = effect.TransformBounds(child.Bounds)
		}
		hit := bounds.Contains
		if te, ok := effect.(TransformEffect); ok {
			inv := te.Matrix().Invert()
			hit = func(p gg.Point) bool { return child.Contains(inv.TransformPoint(p)) }
		}
		src := child.Bounds
		return decorate(child, bounds, hit, func(c Canvas) { c.PushFilterEffect(effect, src) })
	})
}

// OpacityMaskNode masks its children with the alpha of a brush painted
// over bounds.
type OpacityMaskNode struct {
	ContainerNode
	mask   resolvedBrush
	bounds Rect
	invert bool
}

// NewOpacityMaskNode creates a mask scope. A DrawableBrush mask is
// rendered immediately, sized to bounds.
func NewOpacityMaskNode(mask Brush, bounds Rect, invert bool) *OpacityMaskNode {
	return &OpacityMaskNode{
		mask:   resolveBrush(mask, Size{bounds.Width, bounds.Height}),
		bounds: bounds,
		invert: invert,
	}
}

// Equals reports whether the node was created with the same parameters.
func (n *OpacityMaskNode) Equals(mask Brush, bounds Rect, invert bool) bool {
	return n.bounds == bounds && n.invert == invert && BrushEqual(n.mask.given, mask)
}

// Process wraps each child. A non-inverted mask hides everything outside
// its bounds.
func (n *OpacityMaskNode) Process(ctx *Context) []Operation {
	mask, bounds, invert := n.mask.render, n.bounds, n.invert
	return wrapEach(ctx.Input(), func(child Operation) Operation {
		out := child.Bounds
		hit := child.Contains
		if !invert {
			out = out.Intersect(bounds)
			hit = func(p gg.Point) bool { return bounds.Contains(p) && child.Contains(p) }
		}
		return decorate(child, out, hit, func(c Canvas) { c.PushOpacityMask(mask, bounds, invert) })
	})
}

// Dispose disposes the children and the owned mask snapshot.
func (n *OpacityMaskNode) Dispose() {
	if n.IsDisposed() {
		return
	}
	n.ContainerNode.Dispose()
	n.mask.dispose()
}

// PushNode saves and restores canvas state around its children.
type PushNode struct {
	ContainerNode
}

// NewPushNode creates a plain state scope.
func NewPushNode() *PushNode {
	return &PushNode{}
}

// Process wraps each child in a state push.
func (n *PushNode) Process(ctx *Context) []Operation {
	return wrapEach(ctx.Input(), func(child Operation) Operation {
		return decorate(child, child.Bounds, child.Contains, func(c Canvas) { c.PushState() })
	})
}

func wrapEach(input []Operation, wrap func(Operation) Operation) []Operation {
	if len(input) == 0 {
		return nil
	}
	out := make([]Operation, len(input))
	for i, op := range input {
		out[i] = wrap(op)
	}
	return out
}
