package rendernode

import (
	"image"

	"golang.org/x/image/draw"
)

// Bitmap is a decoded RGBA image owned through a Ref.
// Close drops the pixel buffer; a closed bitmap reports zero size.
type Bitmap struct {
	img *image.RGBA
}

// NewBitmap copies img into a new RGBA bitmap with its origin at (0, 0).
// Later writes to img do not reach the bitmap.
func NewBitmap(img image.Image) *Bitmap {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Bitmap{img: dst}
}

// NewBitmapScaled resamples img to width x height.
func NewBitmapScaled(img image.Image, width, height int) *Bitmap {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return &Bitmap{img: dst}
}

// Image returns the pixels, or nil after Close.
func (b *Bitmap) Image() image.Image {
	if b.img == nil {
		return nil
	}
	return b.img
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int {
	if b.img == nil {
		return 0
	}
	return b.img.Rect.Dx()
}

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int {
	if b.img == nil {
		return 0
	}
	return b.img.Rect.Dy()
}

// Size returns the bitmap size in bytes.
func (b *Bitmap) Size() int64 {
	if b.img == nil {
		return 0
	}
	return int64(len(b.img.Pix))
}

// Close releases the pixel buffer.
func (b *Bitmap) Close() error {
	b.img = nil
	return nil
}
