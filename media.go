package rendernode

import (
	"image"
	"io"

	"github.com/gogpu/gg"
)

// ImageSource supplies a decoded bitmap. TryGetRef returns the source's
// current handle without transferring ownership; callers that keep the
// bitmap Clone the handle. A source that cannot produce a bitmap (not yet
// loaded, decode failure) returns false.
type ImageSource interface {
	TryGetRef() (*Ref[*Bitmap], bool)
}

// MediaReader reads frames from a video stream. ReadVideo returns false
// when the frame is unavailable.
type MediaReader interface {
	io.Closer
	ReadVideo(frame int) (image.Image, bool)
}

// VideoSource supplies a shared media reader, with the same ownership
// rules as ImageSource.
type VideoSource interface {
	TryGetRef() (*Ref[MediaReader], bool)
}

// cloneSourceRef clones the handle a source offers, or returns nil.
func cloneSourceRef[T io.Closer](get func() (*Ref[T], bool)) *Ref[T] {
	ref, ok := get()
	if !ok || ref == nil {
		return nil
	}
	cp, err := ref.Clone()
	if err != nil {
		Logger().Debug("rendernode: source ref unavailable", "err", err)
		return nil
	}
	return cp
}

// sameSourceRef reports whether held is a handle on the resource src
// currently offers. A source with nothing to offer matches a nil handle.
func sameSourceRef[T io.Closer](held *Ref[T], get func() (*Ref[T], bool)) bool {
	ref, ok := get()
	if !ok || ref == nil || ref.IsDisposed() {
		return held == nil
	}
	return ref.SameResource(held)
}

// ImageSourceNode draws a bitmap from an ImageSource into a destination
// rectangle. The node holds its own clone of the handle the source offered
// when the node was built.
type ImageSourceNode struct {
	NodeBase
	source ImageSource
	ref    *Ref[*Bitmap]
	dst    Rect
}

// NewImageSourceNode creates an image node.
func NewImageSourceNode(src ImageSource, dst Rect) *ImageSourceNode {
	n := &ImageSourceNode{source: src, dst: dst}
	if src != nil {
		n.ref = cloneSourceRef(src.TryGetRef)
	}
	return n
}

// Equals reports whether the node draws src into dst and still holds the
// bitmap src currently offers. A source that was Set or closed since the
// node was built no longer matches.
func (n *ImageSourceNode) Equals(src ImageSource, dst Rect) bool {
	if n.source != src || n.dst != dst {
		return false
	}
	if src == nil {
		return n.ref == nil
	}
	return sameSourceRef(n.ref, src.TryGetRef)
}

// Process returns no operations when the bitmap is missing.
func (n *ImageSourceNode) Process(*Context) []Operation {
	if n.ref == nil {
		return nil
	}
	img := n.ref.Value().Image()
	if img == nil {
		return nil
	}
	dst := n.dst
	return []Operation{{
		Bounds: dst,
		Render: func(c Canvas) { c.DrawImage(img, dst) },
	}}
}

// Dispose releases the node's source handle.
func (n *ImageSourceNode) Dispose() {
	if !n.markDisposed() {
		return
	}
	if n.ref != nil {
		_ = n.ref.Dispose()
		n.ref = nil
	}
}

// VideoSourceNode draws one frame of a VideoSource.
type VideoSourceNode struct {
	NodeBase
	source VideoSource
	ref    *Ref[MediaReader]
	frame  int
	dst    Rect
}

// NewVideoSourceNode creates a video frame node.
func NewVideoSourceNode(src VideoSource, frame int, dst Rect) *VideoSourceNode {
	n := &VideoSourceNode{source: src, frame: frame, dst: dst}
	if src != nil {
		n.ref = cloneSourceRef(src.TryGetRef)
	}
	return n
}

// Equals reports whether the node draws frame of src into dst and still
// holds the reader src currently offers.
func (n *VideoSourceNode) Equals(src VideoSource, frame int, dst Rect) bool {
	if n.source != src || n.frame != frame || n.dst != dst {
		return false
	}
	if src == nil {
		return n.ref == nil
	}
	return sameSourceRef(n.ref, src.TryGetRef)
}

// Process reads the frame; a missing reader or frame yields no
// operations.
func (n *VideoSourceNode) Process(*Context) []Operation {
	if n.ref == nil {
		return nil
	}
	img, ok := n.ref.Value().ReadVideo(n.frame)
	if !ok || img == nil {
		return nil
	}
	dst := n.dst
	return []Operation{{
		Bounds: dst,
		Render: func(c Canvas) { c.DrawImage(img, dst) },
	}}
}

// Dispose releases the node's reader handle.
func (n *VideoSourceNode) Dispose() {
	if !n.markDisposed() {
		return
	}
	if n.ref != nil {
		_ = n.ref.Dispose()
		n.ref = nil
	}
}

// Backdrop holds the composited pixels captured by a SnapshotBackdropNode
// during the most recent render.
type Backdrop struct {
	img image.Image
}

// Image returns the captured pixels, or false before the first capture
// or when the canvas cannot read pixels back.
func (b *Backdrop) Image() (image.Image, bool) {
	if b == nil || b.img == nil {
		return nil, false
	}
	return b.img, true
}

// SnapshotBackdropNode captures the canvas contents at the point where it
// renders. Its output depends on everything drawn before it, so it always
// disables the render cache.
type SnapshotBackdropNode struct {
	NodeBase
	backdrop *Backdrop
}

// NewSnapshotBackdropNode creates a snapshot node with an empty backdrop.
func NewSnapshotBackdropNode() *SnapshotBackdropNode {
	return &SnapshotBackdropNode{backdrop: &Backdrop{}}
}

// Backdrop returns the backdrop the node fills.
func (n *SnapshotBackdropNode) Backdrop() *Backdrop {
	return n.backdrop
}

// Process returns one capturing operation with empty bounds.
func (n *SnapshotBackdropNode) Process(ctx *Context) []Operation {
	ctx.DisableRenderCache()
	b := n.backdrop
	return []Operation{{
		Render:  func(c Canvas) { b.img = c.Snapshot() },
		HitTest: func(p gg.Point) bool { return false },
	}}
}

// Dispose drops the captured pixels.
func (n *SnapshotBackdropNode) Dispose() {
	if n.markDisposed() {
		n.backdrop.img = nil
	}
}

// BackdropNode draws a captured backdrop scaled into bounds.
type BackdropNode struct {
	NodeBase
	backdrop *Backdrop
	bounds   Rect
}

// NewBackdropNode creates a node drawing b into bounds.
func NewBackdropNode(b *Backdrop, bounds Rect) *BackdropNode {
	return &BackdropNode{backdrop: b, bounds: bounds}
}

// Equals reports whether the node draws b into bounds.
func (n *BackdropNode) Equals(b *Backdrop, bounds Rect) bool {
	return n.backdrop == b && n.bounds == bounds
}

// Process returns no operations for a nil backdrop. The pixels are read
// when the operation renders, since the capture happens earlier in the
// same render pass.
func (n *BackdropNode) Process(ctx *Context) []Operation {
	ctx.DisableRenderCache()
	if n.backdrop == nil {
		return nil
	}
	b, bounds := n.backdrop, n.bounds
	return []Operation{{
		Bounds: bounds,
		Render: func(c Canvas) {
			if img, ok := b.Image(); ok {
				c.DrawImage(img, bounds)
			}
		},
	}}
}
