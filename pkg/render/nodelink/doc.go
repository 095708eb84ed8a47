// Package nodelink draws an element model as a static node-link diagram.
//
// # Overview
//
// [ToDOT] emits Graphviz DOT with every node pinned at its layout position,
// so the image matches the interactive view. Colors, borders, opacity and
// dash patterns come from the stylesheet passed in: the base table plus any
// selection overlay, resolved with [style.Cascade] so later rules win.
//
//	out := selection.Compute(model, state)
//	dot := nodelink.ToDOT(model, out.Stylesheet, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] with the neato engine for
// in-process SVG rendering. PDF and PNG conversion requires librsvg
// (rsvg-convert).
package nodelink
