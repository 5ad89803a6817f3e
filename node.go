package rendernode

import (
	"fmt"
	"sync/atomic"
)

// RenderNode is a node in the retained render tree.
//
// A node's draw parameters are fixed at construction. When a draw call
// differs from the node occupying its tree position, the GraphicsContext
// builds a new node and replaces the old one; nodes are never edited in
// place. Containers are the exception: their child lists are rearranged by
// the reconciler without touching the children's identity.
//
// Custom node types embed NodeBase (or ContainerNode) to satisfy the
// interface.
type RenderNode interface {
	// Process turns the already-processed operations of the node's
	// children (ctx.Input) into the node's own operations.
	Process(ctx *Context) []Operation

	// Dispose releases resources owned by the node. Containers dispose
	// their children. Dispose is idempotent.
	Dispose()

	// IsDisposed reports whether Dispose was called.
	IsDisposed() bool

	state() *nodeState
}

// nodeState is allocated separately from the node so the processor can
// key its cache table by a weak pointer to it.
type nodeState struct {
	id       uint64
	disposed bool
}

var nextNodeID atomic.Uint64

// NodeBase carries the identity and disposal flag shared by all nodes.
// The zero value is ready to use.
type NodeBase struct {
	st *nodeState
}

func (b *NodeBase) state() *nodeState {
	if b.st == nil {
		b.st = &nodeState{id: nextNodeID.Add(1)}
	}
	return b.st
}

// ID returns a process-unique identifier for the node.
func (b *NodeBase) ID() uint64 {
	return b.state().id
}

// IsDisposed reports whether Dispose was called.
func (b *NodeBase) IsDisposed() bool {
	return b.state().disposed
}

// Dispose marks the node as disposed.
func (b *NodeBase) Dispose() {
	b.state().disposed = true
}

// markDisposed sets the disposed flag and reports whether this call
// changed it.
func (b *NodeBase) markDisposed() bool {
	st := b.state()
	if st.disposed {
		return false
	}
	st.disposed = true
	return true
}

// NodeID returns the identifier of any node.
func NodeID(n RenderNode) uint64 {
	return n.state().id
}

// mustBeLive panics if n was disposed. Touching a disposed node is a
// programming error.
func mustBeLive(n RenderNode) {
	if n.IsDisposed() {
		panic(fmt.Sprintf("rendernode: %T %d used after Dispose", n, NodeID(n)))
	}
}

// Process returns no operations.
func (b *NodeBase) Process(*Context) []Operation {
	return nil
}
