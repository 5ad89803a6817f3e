package rendernode

import "errors"

var (
	// ErrDisposed is returned when a ref or node is used after its
	// backing resource has been released.
	ErrDisposed = errors.New("rendernode: use after dispose")

	// ErrNoScope is returned by GraphicsContext.Pop when there is no
	// pushed scope to pop.
	ErrNoScope = errors.New("rendernode: pop without matching push")

	// ErrUnknownCanvas is returned by NewCanvasFactory for names that
	// were never registered.
	ErrUnknownCanvas = errors.New("rendernode: unknown canvas factory")
)
