// Package source provides image and video collaborators for rendernode:
// in-memory and file-backed bitmap sources and a frame-sequence video
// source.
//
// Decoding runs when a source is created or first asked for its bitmap,
// never inside node processing. A source that fails to decode reports
// "no bitmap" and the nodes using it draw nothing.
package source

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/gogpu/rendernode"
)

// ErrClosed is returned when a closed source is used.
var ErrClosed = errors.New("source: closed")

// Image is an in-memory ImageSource. It owns one handle on its bitmap;
// nodes drawing it hold clones, so replacing or closing the source does
// not pull pixels from under a node.
type Image struct {
	mu  sync.Mutex
	ref *rendernode.Ref[*rendernode.Bitmap]
}

var _ rendernode.ImageSource = (*Image)(nil)

// NewImage creates a source over a copy of img.
func NewImage(img image.Image) *Image {
	return &Image{ref: rendernode.NewRef(rendernode.NewBitmap(img))}
}

// Decode reads an image in any registered format (PNG, JPEG, GIF, BMP,
// TIFF, WebP).
func Decode(r io.Reader, opts ...Option) (*Image, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("source: decode: %w", err)
	}
	rendernode.Logger().Debug("source: decoded image", "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return &Image{ref: rendernode.NewRef(o.bitmap(img))}, nil
}

// Open decodes the image file at path.
func Open(path string, opts ...Option) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open: %w", err)
	}
	defer f.Close()
	return Decode(f, opts...)
}

// TryGetRef returns the source's handle. Callers clone it to keep it.
func (s *Image) TryGetRef() (*rendernode.Ref[*rendernode.Bitmap], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref, s.ref != nil
}

// Set replaces the bitmap. Nodes created before keep drawing the old
// pixels until the next recording pass replaces them.
func (s *Image) Set(img image.Image) {
	ref := rendernode.NewRef(rendernode.NewBitmap(img))
	s.mu.Lock()
	old := s.ref
	s.ref = ref
	s.mu.Unlock()
	if old != nil {
		_ = old.Dispose()
	}
}

// Close releases the source's handle.
func (s *Image) Close() error {
	s.mu.Lock()
	ref := s.ref
	s.ref = nil
	s.mu.Unlock()
	if ref == nil {
		return ErrClosed
	}
	return ref.Dispose()
}

// File is an ImageSource that decodes a file on first use. A file that
// cannot be read or decoded reports no bitmap; Err returns the cause.
type File struct {
	path string
	opts []Option

	once sync.Once
	img  *Image
	err  error
}

var _ rendernode.ImageSource = (*File)(nil)

// NewFile creates a lazily decoded file source.
func NewFile(path string, opts ...Option) *File {
	return &File{path: path, opts: opts}
}

func (f *File) load() {
	f.once.Do(func() {
		f.img, f.err = Open(f.path, f.opts...)
		if f.err != nil {
			rendernode.Logger().Warn("source: image unavailable", "path", f.path, "err", f.err)
		}
	})
}

// TryGetRef decodes the file if needed and returns its handle.
func (f *File) TryGetRef() (*rendernode.Ref[*rendernode.Bitmap], bool) {
	f.load()
	if f.img == nil {
		return nil, false
	}
	return f.img.TryGetRef()
}

// Err returns the load error, if any.
func (f *File) Err() error {
	f.load()
	return f.err
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Close releases the decoded bitmap.
func (f *File) Close() error {
	f.load()
	if f.img == nil {
		return nil
	}
	return f.img.Close()
}
