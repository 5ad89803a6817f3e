package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gogpu/gg"

	"github.com/gogpu/rendernode"
)

func pixel(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func isRed(c color.RGBA) bool {
	return c.R >= 250 && c.G <= 5 && c.B <= 5 && c.A >= 250
}

func isEmpty(c color.RGBA) bool {
	return c.A == 0
}

func TestFactory(t *testing.T) {
	if !rendernode.IsRegistered("raster") {
		t.Fatal("raster canvas is not registered")
	}
	f, err := rendernode.NewCanvasFactory("raster")
	if err != nil {
		t.Fatalf("NewCanvasFactory: %v", err)
	}
	c, err := f.NewCanvas(16, 8)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	if w, h := c.Size(); w != 16 || h != 8 {
		t.Errorf("Size() = %dx%d, want 16x8", w, h)
	}
	if _, err := f.NewCanvas(0, 8); err == nil {
		t.Error("NewCanvas(0, 8) should fail")
	}
}

func TestDrawRectangleFill(t *testing.T) {
	c := New(20, 20)
	c.DrawRectangle(rendernode.NewRect(5, 5, 10, 10), rendernode.Solid(gg.Red), nil)
	img := c.Image()
	if got := pixel(img, 10, 10); !isRed(got) {
		t.Errorf("inside pixel = %v, want red", got)
	}
	if got := pixel(img, 2, 2); !isEmpty(got) {
		t.Errorf("outside pixel = %v, want transparent", got)
	}
}

func TestDrawRectangleStrokeOnly(t *testing.T) {
	c := New(40, 40)
	pen := &rendernode.Pen{Brush: rendernode.Solid(gg.Red), Thickness: 4}
	c.DrawRectangle(rendernode.NewRect(10, 10, 20, 20), nil, pen)
	img := c.Image()
	if got := pixel(img, 10, 20); !isRed(got) {
		t.Errorf("edge pixel = %v, want red", got)
	}
	if got := pixel(img, 20, 20); !isEmpty(got) {
		t.Errorf("interior pixel = %v, want transparent", got)
	}
}

func TestBackgroundAndClear(t *testing.T) {
	c := New(4, 4, WithBackground(gg.Red))
	if got := pixel(c.Image(), 1, 1); !isRed(got) {
		t.Errorf("background pixel = %v, want red", got)
	}
	c.PushClip(rendernode.NewRect(0, 0, 1, 1))
	c.Clear(gg.Transparent)
	c.Pop()
	if got := pixel(c.Image(), 3, 3); !isEmpty(got) {
		t.Errorf("Clear should ignore the clip, got %v", got)
	}
}

func TestPushClip(t *testing.T) {
	c := New(20, 20)
	c.PushClip(rendernode.NewRect(0, 0, 10, 20))
	c.DrawRectangle(rendernode.NewRect(0, 0, 20, 20), rendernode.Solid(gg.Red), nil)
	c.Pop()
	img := c.Image()
	if got := pixel(img, 5, 10); !isRed(got) {
		t.Errorf("clipped-in pixel = %v, want red", got)
	}
	if got := pixel(img, 15, 10); !isEmpty(got) {
		t.Errorf("clipped-out pixel = %v, want transparent", got)
	}

	c.DrawRectangle(rendernode.NewRect(0, 0, 20, 20), rendernode.Solid(gg.Red), nil)
	if got := pixel(c.Image(), 15, 10); !isRed(got) {
		t.Errorf("pixel after Pop = %v, want red", got)
	}
}

func TestPushTransform(t *testing.T) {
	c := New(20, 20)
	c.PushTransform(gg.Translate(10, 0), rendernode.TransformPrepend)
	c.DrawRectangle(rendernode.NewRect(0, 0, 5, 5), rendernode.Solid(gg.Red), nil)
	c.Pop()
	img := c.Image()
	if got := pixel(img, 12, 2); !isRed(got) {
		t.Errorf("translated pixel = %v, want red", got)
	}
	if got := pixel(img, 2, 2); !isEmpty(got) {
		t.Errorf("origin pixel = %v, want transparent", got)
	}
}

func TestPushOpacity(t *testing.T) {
	c := New(10, 10)
	c.PushOpacity(0.5)
	c.DrawRectangle(rendernode.NewRect(0, 0, 10, 10), rendernode.Solid(gg.Red), nil)
	c.Pop()
	got := pixel(c.Image(), 5, 5)
	if got.A < 118 || got.A > 138 {
		t.Errorf("alpha = %d, want about 128", got.A)
	}
}

func TestPushFilterEffectBlur(t *testing.T) {
	c := New(30, 30)
	c.PushFilterEffect(rendernode.BlurEffect{Radius: 2}, rendernode.NewRect(10, 10, 10, 10))
	c.DrawRectangle(rendernode.NewRect(10, 10, 10, 10), rendernode.Solid(gg.Red), nil)
	c.Pop()
	img := c.Image()
	if got := pixel(img, 8, 15); got.A == 0 {
		t.Error("blur should spread outside the rectangle")
	}
	if got := pixel(img, 15, 15); got.A < 200 {
		t.Errorf("center alpha = %d, want mostly opaque", got.A)
	}
	if got := pixel(img, 0, 0); got.A != 0 {
		t.Errorf("far pixel alpha = %d, want 0", got.A)
	}
}

func TestPushFilterEffectOffset(t *testing.T) {
	c := New(20, 20)
	c.PushFilterEffect(rendernode.OffsetEffect{DX: 10}, rendernode.NewRect(0, 0, 5, 5))
	c.DrawRectangle(rendernode.NewRect(0, 0, 5, 5), rendernode.Solid(gg.Red), nil)
	c.Pop()
	if got := pixel(c.Image(), 12, 2); !isRed(got) {
		t.Errorf("offset pixel = %v, want red", got)
	}
}

func TestPushOpacityMask(t *testing.T) {
	tests := []struct {
		invert      bool
		left, right bool
		name        string
	}{
		{false, true, false, "mask"},
		{true, false, true, "inverted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(20, 20)
			c.PushOpacityMask(rendernode.Solid(gg.Black), rendernode.NewRect(0, 0, 10, 20), tt.invert)
			c.DrawRectangle(rendernode.NewRect(0, 0, 20, 20), rendernode.Solid(gg.Red), nil)
			c.Pop()
			img := c.Image()
			if got := isRed(pixel(img, 5, 10)); got != tt.left {
				t.Errorf("left visible = %v, want %v", got, tt.left)
			}
			if got := isRed(pixel(img, 15, 10)); got != tt.right {
				t.Errorf("right visible = %v, want %v", got, tt.right)
			}
		})
	}
}

func TestDrawImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:], []byte{255, 0, 0, 255})
	}
	c := New(20, 20)
	c.DrawImage(src, rendernode.NewRect(4, 4, 8, 8))
	img := c.Image()
	if got := pixel(img, 8, 8); !isRed(got) {
		t.Errorf("scaled image pixel = %v, want red", got)
	}
	if got := pixel(img, 15, 15); !isEmpty(got) {
		t.Errorf("pixel outside dst = %v, want transparent", got)
	}
}

func TestPopWithoutScope(t *testing.T) {
	c := New(4, 4)
	c.Pop()
	c.PushState()
	c.Pop()
	c.Pop()
	if len(c.scopes) != 0 || len(c.clips) != 0 {
		t.Error("scope stack not empty")
	}
}

func TestEncodePNG(t *testing.T) {
	c := New(3, 2, WithBackground(gg.Red))
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("decoded size = %v", b)
	}
}

func TestWithContext(t *testing.T) {
	ctx := gg.NewContext(7, 5)
	c := New(100, 100, WithContext(ctx))
	if w, h := c.Size(); w != 7 || h != 5 {
		t.Errorf("Size() = %dx%d, want the context size 7x5", w, h)
	}
	if c.Context() != ctx {
		t.Error("Context() should return the supplied context")
	}
}

func TestRenderTreeWithLayerCache(t *testing.T) {
	root := rendernode.NewContainerNode()
	record := func() {
		g := rendernode.NewGraphicsContext(root)
		s := g.PushOpacity(1)
		g.DrawRectangle(rendernode.NewRect(4, 4, 8, 8), rendernode.Solid(gg.Red), nil)
		g.DrawEllipse(rendernode.NewRect(14, 4, 8, 8), rendernode.Solid(gg.Red), nil)
		s.Pop()
		g.Dispose()
	}

	record()
	c := New(30, 20)
	rendernode.Render(c, rendernode.NewProcessor().Pull(root))
	direct := c.Image()

	layers := rendernode.NewLayerCache(1)
	p := rendernode.NewProcessor(
		rendernode.WithCanvasFactory(Factory()),
		rendernode.WithLayerCache(layers),
		rendernode.WithCacheThreshold(1),
	)
	var cached image.Image
	for range 3 {
		record()
		c := New(30, 20)
		rendernode.Render(c, p.Pull(root))
		cached = c.Image()
	}
	if layers.Stats().Hits == 0 {
		t.Fatal("layer cache was never hit")
	}
	for _, pt := range []image.Point{{8, 8}, {18, 8}, {2, 2}, {13, 8}} {
		a, b := pixel(direct, pt.X, pt.Y), pixel(cached, pt.X, pt.Y)
		if a.A/16 != b.A/16 || a.R/16 != b.R/16 {
			t.Errorf("pixel %v: direct %v, cached %v", pt, a, b)
		}
	}
}

func TestApplyMask(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []byte{200, 100, 0, 200})
	mask := image.NewRGBA(image.Rect(0, 0, 1, 1))
	mask.Pix[3] = 0
	applyMask(img, mask, true)
	if img.Pix[3] != 200 {
		t.Errorf("inverted empty mask changed alpha to %d", img.Pix[3])
	}
	applyMask(img, mask, false)
	if img.Pix[3] != 0 {
		t.Errorf("empty mask left alpha %d", img.Pix[3])
	}
}
