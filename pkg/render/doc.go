// Package render converts rendered SVG into other output formats.
//
// The [nodelink] subpackage draws an element model as a pinned node-link
// diagram with Graphviz; this package turns its SVG into PDF or PNG with the
// external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/mutuals/pkg/render/nodelink
package render
