package rendernode

// ContainerNode is a RenderNode that exclusively owns an ordered list of
// children. Child order is the order in which the corresponding draw calls
// were issued, which is also the visual stacking order.
//
// Every structural mutation bumps Version, which lets the processor notice
// changed children even when the container itself was reused.
//
// A plain ContainerNode passes its children's operations through
// unchanged; decorator nodes embed it and override Process.
type ContainerNode struct {
	NodeBase
	children []RenderNode
	version  uint64
}

// NewContainerNode creates an empty container, typically used as the
// root of a render tree.
func NewContainerNode() *ContainerNode {
	return &ContainerNode{}
}

func (c *ContainerNode) container() *ContainerNode { return c }

// containerNode is implemented by ContainerNode and every node embedding it.
type containerNode interface {
	RenderNode
	container() *ContainerNode
}

// AsContainer returns the ContainerNode part of n, if n is a container.
func AsContainer(n RenderNode) (*ContainerNode, bool) {
	if cn, ok := n.(containerNode); ok {
		return cn.container(), true
	}
	return nil, false
}

// Children returns the child list. The slice must not be modified.
func (c *ContainerNode) Children() []RenderNode {
	return c.children
}

// Len returns the number of children.
func (c *ContainerNode) Len() int {
	return len(c.children)
}

// Child returns the child at index i.
func (c *ContainerNode) Child(i int) RenderNode {
	return c.children[i]
}

// Version returns a counter bumped by every structural change.
func (c *ContainerNode) Version() uint64 {
	return c.version
}

// AddChild appends n.
func (c *ContainerNode) AddChild(n RenderNode) {
	c.children = append(c.children, n)
	c.version++
}

// SetChild replaces the child at index i with n and disposes the child
// previously stored there. Other children keep their identity and
// position.
func (c *ContainerNode) SetChild(i int, n RenderNode) {
	old := c.children[i]
	c.children[i] = n
	c.version++
	if old != nil && old != n {
		old.Dispose()
	}
}

// RemoveRange disposes and removes count children starting at start.
func (c *ContainerNode) RemoveRange(start, count int) {
	if count <= 0 {
		return
	}
	end := start + count
	for _, n := range c.children[start:end] {
		n.Dispose()
	}
	clear(c.children[start:end])
	c.children = append(c.children[:start], c.children[end:]...)
	c.version++
}

// BringFrom moves all children of other to the end of c, preserving
// their order and identity. other is left empty.
func (c *ContainerNode) BringFrom(other *ContainerNode) {
	if other == nil || other == c || len(other.children) == 0 {
		return
	}
	c.children = append(c.children, other.children...)
	clear(other.children)
	other.children = other.children[:0]
	other.version++
	c.version++
}

// move relocates the child at index from to index to, shifting the
// children in between. Nothing is disposed.
func (c *ContainerNode) move(from, to int) {
	if from == to {
		return
	}
	n := c.children[from]
	if from > to {
		copy(c.children[to+1:from+1], c.children[to:from])
	} else {
		copy(c.children[from:to], c.children[from+1:to+1])
	}
	c.children[to] = n
	c.version++
}

// invalidate bumps the version without changing the children.
func (c *ContainerNode) invalidate() {
	c.version++
}

// Process passes the children's operations through.
func (c *ContainerNode) Process(ctx *Context) []Operation {
	return ctx.Input()
}

// Dispose disposes every child and empties the container.
func (c *ContainerNode) Dispose() {
	if !c.markDisposed() {
		return
	}
	for _, n := range c.children {
		n.Dispose()
	}
	clear(c.children)
	c.children = nil
}
