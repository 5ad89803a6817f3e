package rendernode

import (
	"io"
	"runtime"
	"sync/atomic"
)

// Counter is the shared reference count behind one or more Ref handles.
// The wrapped value is closed exactly once, when the last handle is
// disposed.
type Counter[T io.Closer] struct {
	value T
	refs  atomic.Int32
}

// retain increments the count unless the value was already released.
func (c *Counter[T]) retain() error {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return ErrDisposed
		}
		if c.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// release decrements the count and closes the value when it reaches zero.
func (c *Counter[T]) release() error {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return ErrDisposed
		}
		if !c.refs.CompareAndSwap(n, n-1) {
			continue
		}
		if n == 1 {
			if err := c.value.Close(); err != nil {
				Logger().Warn("rendernode: closing shared resource failed", "err", err)
			}
		}
		return nil
	}
}

// Ref is one owner's handle on a reference-counted resource such as a
// decoded bitmap or a media reader. Every owner holds its own Ref: call
// Clone before handing the resource to a second owner, and Dispose when
// done. The resource is closed when the last Ref is disposed.
//
// The count is adjusted with compare-and-swap so a Ref collected without
// Dispose (released from the runtime cleanup goroutine) cannot race an
// explicit Dispose on a sibling handle.
type Ref[T io.Closer] struct {
	counter  *Counter[T]
	disposed *atomic.Bool
	cleanup  runtime.Cleanup
}

// leakedRef is the cleanup argument for a Ref that became unreachable.
// It must not point at the Ref itself.
type leakedRef[T io.Closer] struct {
	counter  *Counter[T]
	disposed *atomic.Bool
}

// NewRef wraps value in a new counter with a single owner.
func NewRef[T io.Closer](value T) *Ref[T] {
	c := &Counter[T]{value: value}
	c.refs.Store(1)
	return newRef(c)
}

func newRef[T io.Closer](c *Counter[T]) *Ref[T] {
	r := &Ref[T]{counter: c, disposed: new(atomic.Bool)}
	r.cleanup = runtime.AddCleanup(r, releaseLeaked[T], leakedRef[T]{counter: c, disposed: r.disposed})
	return r
}

func releaseLeaked[T io.Closer](l leakedRef[T]) {
	if !l.disposed.CompareAndSwap(false, true) {
		return
	}
	Logger().Warn("rendernode: ref collected without Dispose")
	_ = l.counter.release()
}

// Value returns the shared resource.
// Value panics if the handle was already disposed.
func (r *Ref[T]) Value() T {
	if r.disposed.Load() {
		panic(ErrDisposed)
	}
	return r.counter.value
}

// Clone returns a new handle on the same resource and increments the
// count. Cloning a disposed handle returns ErrDisposed.
func (r *Ref[T]) Clone() (*Ref[T], error) {
	if r.disposed.Load() {
		return nil, ErrDisposed
	}
	if err := r.counter.retain(); err != nil {
		return nil, err
	}
	return newRef(r.counter), nil
}

// Dispose releases this handle. Disposing the same handle twice
// returns ErrDisposed and leaves the count untouched.
func (r *Ref[T]) Dispose() error {
	if !r.disposed.CompareAndSwap(false, true) {
		return ErrDisposed
	}
	r.cleanup.Stop()
	return r.counter.release()
}

// IsDisposed reports whether this handle was disposed.
func (r *Ref[T]) IsDisposed() bool {
	return r.disposed.Load()
}

// SameResource reports whether other is a handle on the same counter as r.
func (r *Ref[T]) SameResource(other *Ref[T]) bool {
	return other != nil && r.counter == other.counter
}

// RefCount returns the number of live handles sharing the resource.
func (r *Ref[T]) RefCount() int {
	return int(r.counter.refs.Load())
}
