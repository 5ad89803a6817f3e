package rendernode

// GraphicsOption configures a GraphicsContext.
type GraphicsOption func(*graphicsOptions)

type graphicsOptions struct {
	untracked func(RenderNode)
}

func defaultGraphicsOptions() graphicsOptions {
	return graphicsOptions{}
}

// WithUntrackedObserver registers fn to be called once for every node
// that leaves the tree, just before it is disposed. Pass
// Processor.Untracked to keep a processor's cache table in step with the
// tree:
//
//	p := rendernode.NewProcessor()
//	g := rendernode.NewGraphicsContext(root, rendernode.WithUntrackedObserver(p.Untracked))
func WithUntrackedObserver(fn func(RenderNode)) GraphicsOption {
	return func(o *graphicsOptions) {
		o.untracked = fn
	}
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*processorOptions)

type processorOptions struct {
	factory   CanvasFactory
	threshold int
	layers    *LayerCache
}

// DefaultCacheThreshold is the number of consecutive unchanged pulls after
// which an eligible container is rasterized into the layer cache.
const DefaultCacheThreshold = 3

func defaultProcessorOptions() processorOptions {
	return processorOptions{threshold: DefaultCacheThreshold}
}

// WithCanvasFactory sets the factory handed to nodes through
// Context.Factory and used for layer rasterization.
func WithCanvasFactory(f CanvasFactory) ProcessorOption {
	return func(o *processorOptions) {
		o.factory = f
	}
}

// WithCacheThreshold sets how many consecutive unchanged pulls a
// container needs before it is rasterized. Values below 1 are ignored.
func WithCacheThreshold(n int) ProcessorOption {
	return func(o *processorOptions) {
		if n >= 1 {
			o.threshold = n
		}
	}
}

// WithLayerCache enables rasterization of stable subtrees into c.
// It has no effect without a canvas factory.
func WithLayerCache(c *LayerCache) ProcessorOption {
	return func(o *processorOptions) {
		o.layers = c
	}
}
