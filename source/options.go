package source

import (
	"image"

	"github.com/gogpu/rendernode"
)

// Option configures decoding.
type Option func(*options)

type options struct {
	maxWidth, maxHeight int
}

func defaultOptions() options {
	return options{}
}

// WithMaxSize downscales decoded images to fit within width x height,
// keeping the aspect ratio. Zero disables the limit on that axis.
func WithMaxSize(width, height int) Option {
	return func(o *options) {
		o.maxWidth, o.maxHeight = width, height
	}
}

// bitmap converts img, scaling it down when it exceeds the size limit.
func (o options) bitmap(img image.Image) *rendernode.Bitmap {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scale := 1.0
	if o.maxWidth > 0 && w > o.maxWidth {
		scale = min(scale, float64(o.maxWidth)/float64(w))
	}
	if o.maxHeight > 0 && h > o.maxHeight {
		scale = min(scale, float64(o.maxHeight)/float64(h))
	}
	if scale == 1 {
		return rendernode.NewBitmap(img)
	}
	return rendernode.NewBitmapScaled(img, max(int(float64(w)*scale), 1), max(int(float64(h)*scale), 1))
}
