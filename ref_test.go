package rendernode

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
)

type closeCounter struct {
	mu     sync.Mutex
	closed int
}

func (c *closeCounter) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	return nil
}

func (c *closeCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestRefLastDisposeCloses(t *testing.T) {
	v := &closeCounter{}
	a := NewRef(v)
	b, err := a.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if a.RefCount() != 2 {
		t.Errorf("RefCount() = %d, want 2", a.RefCount())
	}
	if b.Value() != v {
		t.Error("clone should share the value")
	}

	if err := a.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if v.count() != 0 {
		t.Error("value closed while a clone is alive")
	}
	if err := b.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if v.count() != 1 {
		t.Errorf("value closed %d times, want 1", v.count())
	}
}

func TestRefDoubleDispose(t *testing.T) {
	v := &closeCounter{}
	a := NewRef(v)
	b, _ := a.Clone()
	_ = a.Dispose()
	if err := a.Dispose(); !errors.Is(err, ErrDisposed) {
		t.Errorf("second Dispose = %v, want ErrDisposed", err)
	}
	if b.RefCount() != 1 {
		t.Errorf("double dispose changed the count to %d", b.RefCount())
	}
	_ = b.Dispose()
}

func TestRefUseAfterDispose(t *testing.T) {
	a := NewRef(&closeCounter{})
	_ = a.Dispose()
	if !a.IsDisposed() {
		t.Error("IsDisposed() = false after Dispose")
	}
	if _, err := a.Clone(); !errors.Is(err, ErrDisposed) {
		t.Errorf("Clone after Dispose = %v, want ErrDisposed", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Value after Dispose should panic")
		}
	}()
	a.Value()
}

func TestRefConcurrentCloneDispose(t *testing.T) {
	v := &closeCounter{}
	root := NewRef(v)
	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := root.Clone()
			if err != nil {
				t.Error(err)
				return
			}
			_ = r.Dispose()
		}()
	}
	wg.Wait()
	if v.count() != 0 {
		t.Fatal("value closed while the root ref is alive")
	}
	_ = root.Dispose()
	if v.count() != 1 {
		t.Errorf("value closed %d times, want 1", v.count())
	}
}

func TestBitmapClose(t *testing.T) {
	bm := NewBitmap(solidImage(4, 3, redPixel))
	if bm.Width() != 4 || bm.Height() != 3 || bm.Size() != 48 {
		t.Errorf("bitmap = %dx%d (%d bytes)", bm.Width(), bm.Height(), bm.Size())
	}
	ref := NewRef(bm)
	_ = ref.Dispose()
	if bm.Image() != nil || bm.Size() != 0 {
		t.Error("disposing the last ref should close the bitmap")
	}
}

func TestNewBitmapCopies(t *testing.T) {
	tests := []struct {
		name string
		img  *image.RGBA
	}{
		{"origin", solidImage(2, 2, redPixel)},
		{"offset", solidImage(4, 4, redPixel).SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm := NewBitmap(tt.img)
			origin := tt.img.Bounds().Min
			tt.img.SetRGBA(origin.X, origin.Y, color.RGBA{B: 255, A: 255})
			if r, _, b, _ := bm.Image().At(0, 0).RGBA(); r>>8 != 255 || b != 0 {
				t.Error("write to the source image reached the bitmap")
			}
			if bm.Width() != 2 || bm.Height() != 2 {
				t.Errorf("bitmap = %dx%d, want 2x2", bm.Width(), bm.Height())
			}
		})
	}
}

func TestNewBitmapScaled(t *testing.T) {
	bm := NewBitmapScaled(solidImage(8, 8, redPixel), 2, 3)
	if bm.Width() != 2 || bm.Height() != 3 {
		t.Errorf("scaled bitmap = %dx%d, want 2x3", bm.Width(), bm.Height())
	}
}
