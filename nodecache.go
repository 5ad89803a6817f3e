package rendernode

import (
	"slices"

	"github.com/gogpu/gg"
)

// NodeCache is the processor's bookkeeping for one node: how often it was
// processed, which children it had last time, and whether its last result
// may be reused.
type NodeCache struct {
	id          uint64
	renderCount int
	stableCount int
	children    []uint64
	version     uint64
	cacheable   bool
	bounds      Rect
	hit         func(gg.Point) bool
}

// RenderCount returns how many times the node was processed.
func (e *NodeCache) RenderCount() int { return e.renderCount }

// StableCount returns the number of consecutive passes in which the node
// was cacheable and no container in its subtree changed.
func (e *NodeCache) StableCount() int { return e.stableCount }

// IsCacheable reports whether the last pass left the render cache enabled
// for the node and its whole subtree.
func (e *NodeCache) IsCacheable() bool { return e.cacheable }

// Bounds returns the union of the node's operation bounds in the last pass.
func (e *NodeCache) Bounds() Rect { return e.bounds }

// SameChildren reports whether c still has the children and version
// captured in the last pass.
func (e *NodeCache) SameChildren(c *ContainerNode) bool {
	if c == nil {
		return len(e.children) == 0
	}
	if e.renderCount == 0 || e.version != c.Version() || len(e.children) != c.Len() {
		return false
	}
	for i, n := range c.Children() {
		if e.children[i] != NodeID(n) {
			return false
		}
	}
	return true
}

// Invalidate forgets the stable streak so the node has to prove itself
// stable again.
func (e *NodeCache) Invalidate() {
	e.stableCount = 0
}

// record notes one processing pass. same tells whether the node's whole
// subtree kept its structure since the previous pass.
func (e *NodeCache) record(c *ContainerNode, same, cacheable bool, ops []Operation) {
	e.renderCount++
	if cacheable && (same || e.renderCount == 1) && (e.cacheable || e.renderCount == 1) {
		e.stableCount++
	} else if cacheable {
		e.stableCount = 1
	} else {
		e.stableCount = 0
	}
	e.cacheable = cacheable
	e.bounds = unionBounds(ops)
	e.hit = hitFunc(ops)
	if c != nil {
		e.version = c.Version()
		e.children = e.children[:0]
		for _, n := range c.Children() {
			e.children = append(e.children, NodeID(n))
		}
	}
}

// recordReuse notes a pass served from the layer cache.
func (e *NodeCache) recordReuse() {
	e.renderCount++
	e.stableCount++
}

func hitFunc(ops []Operation) func(gg.Point) bool {
	ops = slices.Clone(ops)
	return func(p gg.Point) bool { return HitTest(ops, p) >= 0 }
}
