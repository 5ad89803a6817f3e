package rendernode

import (
	"image"
	"math"
	"slices"

	"github.com/gogpu/gg"
)

// FilterEffect post-processes the content of a PushFilterEffect scope.
//
// TransformBounds reports where content originally inside input ends up
// after the effect (a blur grows it, an offset moves it). Equal is used by
// the reconciler to decide whether an existing FilterEffectNode can be
// reused.
type FilterEffect interface {
	TransformBounds(input Rect) Rect
	Equal(other FilterEffect) bool
}

// TransformEffect is a FilterEffect expressible as a plain transform.
// Canvases apply it without an offscreen pass.
type TransformEffect interface {
	FilterEffect
	Matrix() gg.Matrix
}

// PixmapEffect is a FilterEffect that rewrites pixels. Raster canvases
// render the scope offscreen and call ApplyImage on the result.
type PixmapEffect interface {
	FilterEffect
	ApplyImage(img *image.RGBA)
}

// OffsetEffect shifts content by (DX, DY).
type OffsetEffect struct {
	DX, DY float64
}

// TransformBounds moves the input.
func (e OffsetEffect) TransformBounds(input Rect) Rect {
	if input.IsEmpty() {
		return input
	}
	return input.Offset(e.DX, e.DY)
}

// Equal reports whether other is the same offset.
func (e OffsetEffect) Equal(other FilterEffect) bool {
	o, ok := other.(OffsetEffect)
	return ok && o == e
}

// Matrix returns the translation.
func (e OffsetEffect) Matrix() gg.Matrix {
	return gg.Translate(e.DX, e.DY)
}

// BlurEffect applies a separable Gaussian blur with standard deviation
// Radius pixels.
type BlurEffect struct {
	Radius float64
}

// extent returns how far the kernel reaches, in whole pixels.
func (e BlurEffect) extent() int {
	if e.Radius <= 0 {
		return 0
	}
	return int(math.Ceil(e.Radius * 3))
}

// TransformBounds grows the input by three standard deviations.
func (e BlurEffect) TransformBounds(input Rect) Rect {
	if input.IsEmpty() {
		return input
	}
	return input.Inflate(float64(e.extent()))
}

// Equal reports whether other is the same blur.
func (e BlurEffect) Equal(other FilterEffect) bool {
	o, ok := other.(BlurEffect)
	return ok && o == e
}

// ApplyImage blurs img in place.
func (e BlurEffect) ApplyImage(img *image.RGBA) {
	ext := e.extent()
	if ext == 0 || img == nil {
		return
	}
	kernel := gaussianKernel(e.Radius, ext)
	b := img.Rect
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	temp := make([]float32, w*h*4)

	// Horizontal pass: img -> temp
	for y := 0; y < h; y++ {
		row := y * img.Stride
		for x := 0; x < w; x++ {
			var r, g, bl, a float32
			for k, weight := range kernel {
				kx := min(max(x+k-ext, 0), w-1)
				i := row + kx*4
				r += float32(img.Pix[i+0]) * weight
				g += float32(img.Pix[i+1]) * weight
				bl += float32(img.Pix[i+2]) * weight
				a += float32(img.Pix[i+3]) * weight
			}
			t := (y*w + x) * 4
			temp[t+0], temp[t+1], temp[t+2], temp[t+3] = r, g, bl, a
		}
	}

	// Vertical pass: temp -> img
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, bl, a float32
			for k, weight := range kernel {
				ky := min(max(y+k-ext, 0), h-1)
				t := (ky*w + x) * 4
				r += temp[t+0] * weight
				g += temp[t+1] * weight
				bl += temp[t+2] * weight
				a += temp[t+3] * weight
			}
			i := y*img.Stride + x*4
			img.Pix[i+0] = clampUint8(r)
			img.Pix[i+1] = clampUint8(g)
			img.Pix[i+2] = clampUint8(bl)
			img.Pix[i+3] = clampUint8(a)
		}
	}
}

// gaussianKernel returns a normalized 1D kernel of size 2*ext+1.
func gaussianKernel(sigma float64, ext int) []float32 {
	kernel := make([]float32, 2*ext+1)
	var sum float64
	for i := range kernel {
		d := float64(i - ext)
		v := math.Exp(-(d * d) / (2 * sigma * sigma))
		kernel[i] = float32(v)
		sum += v
	}
	for i := range kernel {
		kernel[i] = float32(float64(kernel[i]) / sum)
	}
	return kernel
}

func clampUint8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// BrightnessEffect scales color channels by Amount. 1 leaves content
// unchanged, 0 turns it black.
type BrightnessEffect struct {
	Amount float64
}

// TransformBounds returns the input.
func (e BrightnessEffect) TransformBounds(input Rect) Rect {
	return input
}

// Equal reports whether other is the same brightness.
func (e BrightnessEffect) Equal(other FilterEffect) bool {
	o, ok := other.(BrightnessEffect)
	return ok && o == e
}

// ApplyImage scales premultiplied color channels in place, capped at alpha.
func (e BrightnessEffect) ApplyImage(img *image.RGBA) {
	if img == nil || e.Amount == 1 {
		return
	}
	amount := float32(max(e.Amount, 0))
	b := img.Rect
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			a := float32(row[i+3])
			row[i+0] = clampUint8(min(float32(row[i+0])*amount, a))
			row[i+1] = clampUint8(min(float32(row[i+1])*amount, a))
			row[i+2] = clampUint8(min(float32(row[i+2])*amount, a))
		}
	}
}

// FilterEffectGroup applies Effects in order. GraphicsContext expands a
// group into one nested FilterEffectNode per member.
type FilterEffectGroup struct {
	Effects []FilterEffect
}

// NewFilterEffectGroup creates a group, skipping nil effects.
func NewFilterEffectGroup(effects ...FilterEffect) *FilterEffectGroup {
	g := &FilterEffectGroup{Effects: make([]FilterEffect, 0, len(effects))}
	for _, e := range effects {
		if e != nil {
			g.Effects = append(g.Effects, e)
		}
	}
	return g
}

// TransformBounds chains the members' bounds transforms.
func (g *FilterEffectGroup) TransformBounds(input Rect) Rect {
	for _, e := range g.Effects {
		input = e.TransformBounds(input)
	}
	return input
}

// Equal reports whether other is a group with equal members.
func (g *FilterEffectGroup) Equal(other FilterEffect) bool {
	o, ok := other.(*FilterEffectGroup)
	if !ok {
		return false
	}
	return slices.EqualFunc(g.Effects, o.Effects, func(a, b FilterEffect) bool {
		return a.Equal(b)
	})
}

// filterEqual compares two possibly nil effects.
func filterEqual(a, b FilterEffect) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
