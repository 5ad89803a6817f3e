// Package rendernode provides a retained render tree for 2D graphics with
// incremental reconciliation.
//
// # Overview
//
// Drawing code is written against an immediate-mode API, GraphicsContext,
// but every call is matched against the node already recorded at the same
// position in a tree of RenderNode values. Equal calls keep their node,
// changed calls replace it, and calls that no longer happen are removed.
// Between frames the tree therefore changes only where the drawing
// changed, which lets a Processor reuse per-node results and rasterize
// stable subtrees into a layer cache.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gg"
//	    "github.com/gogpu/rendernode"
//	    "github.com/gogpu/rendernode/backends/raster"
//	)
//
//	root := rendernode.NewContainerNode()
//	p := rendernode.NewProcessor(rendernode.WithCanvasFactory(raster.Factory()))
//
//	g := rendernode.NewGraphicsContext(root, rendernode.WithUntrackedObserver(p.Untracked))
//	g.Clear(gg.White)
//	s := g.PushOpacity(0.5)
//	g.DrawRectangle(rendernode.NewRect(10, 10, 100, 50), rendernode.Solid(gg.Red), nil)
//	s.Pop()
//	g.Dispose()
//
//	c := raster.New(256, 256)
//	rendernode.Render(c, p.Pull(root))
//	c.SavePNG("out.png")
//
// # Architecture
//
// The package is organized into:
//   - Recording: GraphicsContext, PushedState, Drawable
//   - Nodes: ContainerNode, the shape and media nodes, the decorator nodes
//   - Processing: Processor, NodeCache, LayerCache, Operation
//   - Painting: the Canvas interface, implemented by backends/raster and
//     backends/record and selected by name through Register
//   - Resources: Ref and Bitmap, plus the loaders in package source
//
// # Coordinate System
//
// Coordinates follow gg: origin at top-left, X grows right, Y grows down.
// Operation bounds are expressed in the coordinate space of the tree root.
package rendernode
