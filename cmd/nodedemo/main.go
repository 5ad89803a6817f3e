// Command nodedemo records an animated scene into a retained render tree
// and reports how much of the tree each frame reused.
package main

import (
	"flag"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	_ "github.com/gogpu/gg/recording/backends/raster" // playback target for -canvas=record
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/rendernode"
	"github.com/gogpu/rendernode/backends/raster"
	"github.com/gogpu/rendernode/backends/record"
)

func main() {
	var (
		width   = flag.Int("width", 640, "image width")
		height  = flag.Int("height", 360, "image height")
		frames  = flag.Int("frames", 8, "number of frames to record")
		output  = flag.String("output", "nodedemo.png", "output file for the last frame")
		canvas  = flag.String("canvas", "raster", "canvas backend: raster or record")
		cacheMB = flag.Int("cache", 16, "layer cache budget in MB (0 disables)")
		verbose = flag.Bool("v", false, "log reconciliation details")
	)
	flag.Parse()

	if *verbose {
		rendernode.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}
	face := src.Face(18)

	opts := []rendernode.ProcessorOption{rendernode.WithCanvasFactory(raster.Factory())}
	var layers *rendernode.LayerCache
	if *cacheMB > 0 {
		layers = rendernode.NewLayerCache(*cacheMB)
		opts = append(opts, rendernode.WithLayerCache(layers))
	}
	proc := rendernode.NewProcessor(opts...)
	root := rendernode.NewContainerNode()
	panel := &panel{face: face, changed: true}

	var ops []rendernode.Operation
	for frame := 0; frame < *frames; frame++ {
		g := rendernode.NewGraphicsContext(root, rendernode.WithUntrackedObserver(proc.Untracked))
		drawFrame(g, panel, frame, float64(*width), float64(*height))
		g.Dispose()
		ops = proc.Pull(root)

		s := g.Stats()
		log.Printf("frame %d: reused=%d created=%d removed=%d ops=%d",
			frame, s.Reused, s.Created, s.Removed, len(ops))
	}

	if layers != nil {
		cs := layers.Stats()
		log.Printf("layer cache: entries=%d size=%d hits=%d misses=%d evictions=%d",
			cs.Entries, cs.Size, cs.Hits, cs.Misses, cs.Evictions)
	}

	if err := save(*canvas, *output, *width, *height, ops); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Last frame saved to %s (%dx%d, %s canvas)\n", *output, *width, *height, *canvas)
}

func drawFrame(g *rendernode.GraphicsContext, p *panel, frame int, w, h float64) {
	g.Clear(gg.RGB(0.12, 0.14, 0.2))

	// Static background grid, reused every frame.
	grid := rendernode.NewPen(gg.RGBA{R: 1, G: 1, B: 1, A: 0.08}, 1)
	for x := 0.0; x < w; x += 40 {
		g.DrawRectangle(rendernode.NewRect(x, 0, 40, h), nil, grid)
	}

	// A drawable that tracks its own changes: rendered once.
	g.DrawDrawable(p)

	// Moving ball under a transform: only the transform node changes.
	t := float64(frame) / 8
	s := g.PushTransform(gg.Translate(40+t*(w-160), h/2+math.Sin(t*math.Pi*2)*60), rendernode.TransformPrepend)
	glow := g.PushFilterEffect(rendernode.BlurEffect{Radius: 4})
	g.DrawEllipse(rendernode.NewRect(-30, -30, 60, 60), rendernode.Solid(gg.RGBA{R: 1, G: 0.6, B: 0.2, A: 0.6}), nil)
	glow.Pop()
	ball := rendernode.NewRadialGradientBrush(0, 0, 0, 24).
		AddColorStop(0, gg.RGB(1, 0.9, 0.4)).
		AddColorStop(1, gg.RGB(1, 0.4, 0.1))
	g.DrawEllipse(rendernode.NewRect(-24, -24, 48, 48), ball, rendernode.NewPen(gg.White, 2))
	s.Pop()
}

// panel is a Drawable that only re-renders when marked changed.
type panel struct {
	face    text.Face
	changed bool
}

func (p *panel) Measure(available rendernode.Size) rendernode.Size {
	return rendernode.Size{Width: min(available.Width, 220), Height: 80}
}

func (p *panel) Render(g *rendernode.GraphicsContext) {
	defer func() { p.changed = false }()
	s := g.PushOpacity(0.85)
	defer s.Pop()
	bg := rendernode.NewLinearGradientBrush(20, 20, 20, 100).
		AddColorStop(0, gg.RGB(0.25, 0.3, 0.45)).
		AddColorStop(1, gg.RGB(0.15, 0.18, 0.3))
	g.DrawRectangle(rendernode.NewRect(20, 20, 220, 80), bg, rendernode.NewPen(gg.RGB(0.5, 0.6, 0.9), 2))
	g.DrawText(rendernode.TextRun{Text: "retained render tree", Face: p.face, Origin: gg.Pt(36, 66)},
		rendernode.Solid(gg.White), nil)
}

func (p *panel) HasChanges() bool { return p.changed }

func save(name, output string, width, height int, ops []rendernode.Operation) error {
	switch name {
	case "record":
		c := record.New(width, height)
		rendernode.Render(c, ops)
		backend, err := recording.NewBackend("raster")
		if err != nil {
			return err
		}
		if err := c.Finish().Playback(backend); err != nil {
			return err
		}
		return backend.(recording.FileBackend).SaveToFile(output)
	default:
		c := raster.New(width, height)
		rendernode.Render(c, ops)
		return c.SavePNG(output)
	}
}
