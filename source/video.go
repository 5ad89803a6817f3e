package source

import (
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gogpu/rendernode"
)

// Frames is a MediaReader over a sequence of still images, either held
// in memory or decoded from files on demand.
type Frames struct {
	mu     sync.Mutex
	frames []image.Image
	paths  []string
	opts   []Option
	closed bool
}

var _ rendernode.MediaReader = (*Frames)(nil)

// NewFrames creates a reader over in-memory frames.
func NewFrames(frames ...image.Image) *Frames {
	return &Frames{frames: frames}
}

// GlobFrames creates a reader over the files matching pattern, in
// lexical order. Frames are decoded on first read.
func GlobFrames(pattern string, opts ...Option) (*Frames, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("source: glob %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("source: no frames match %q", pattern)
	}
	sort.Strings(paths)
	return &Frames{frames: make([]image.Image, len(paths)), paths: paths, opts: opts}, nil
}

// Len returns the number of frames.
func (f *Frames) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

// ReadVideo returns frame, or false when it is out of range, cannot be
// decoded, or the reader is closed.
func (f *Frames) ReadVideo(frame int) (image.Image, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || frame < 0 || frame >= len(f.frames) {
		return nil, false
	}
	if f.frames[frame] == nil && frame < len(f.paths) {
		img, err := Open(f.paths[frame], f.opts...)
		if err != nil {
			rendernode.Logger().Warn("source: frame unavailable", "frame", frame, "err", err)
			return nil, false
		}
		ref, _ := img.TryGetRef()
		f.frames[frame] = ref.Value().Image()
		_ = img.Close()
	}
	return f.frames[frame], f.frames[frame] != nil
}

// Close drops all frames.
func (f *Frames) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	f.frames = nil
	return nil
}

// Video is a VideoSource sharing one MediaReader between every node that
// draws it. The reader is closed when the source and all nodes have
// released it.
type Video struct {
	mu  sync.Mutex
	ref *rendernode.Ref[rendernode.MediaReader]
}

var _ rendernode.VideoSource = (*Video)(nil)

// NewVideo creates a source owning r.
func NewVideo(r rendernode.MediaReader) *Video {
	return &Video{ref: rendernode.NewRef(r)}
}

// TryGetRef returns the source's handle. Callers clone it to keep it.
func (v *Video) TryGetRef() (*rendernode.Ref[rendernode.MediaReader], bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ref, v.ref != nil
}

// Close releases the source's handle.
func (v *Video) Close() error {
	v.mu.Lock()
	ref := v.ref
	v.ref = nil
	v.mu.Unlock()
	if ref == nil {
		return ErrClosed
	}
	return ref.Dispose()
}
