package raster

import "github.com/gogpu/gg"

// Option configures a Canvas during creation.
type Option func(*options)

type options struct {
	context    *gg.Context
	background *gg.RGBA
}

func defaultOptions() options {
	return options{}
}

// WithContext draws into an existing context instead of a new one. The
// canvas takes its size from the context.
func WithContext(ctx *gg.Context) Option {
	return func(o *options) {
		o.context = ctx
	}
}

// WithBackground clears the canvas to c on creation.
func WithBackground(c gg.RGBA) Option {
	return func(o *options) {
		o.background = &c
	}
}
