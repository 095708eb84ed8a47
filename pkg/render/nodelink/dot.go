package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/render"
	"github.com/matzehuels/mutuals/pkg/style"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds each node's summary metric as a second label line.
	Detailed bool

	// Background is the canvas color. Empty means transparent.
	Background string
}

// pointsPerInch converts layout units (treated as points) to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a model to DOT for the neato engine. Node positions are
// pinned; y is flipped because Graphviz grows upward.
func ToDOT(m *graph.Model, rules []style.Rule, opts Options) string {
	bg := opts.Background
	if bg == "" {
		bg = "transparent"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", bg)
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fixedsize=true, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [arrowsize=0.8];\n")
	buf.WriteString("\n")

	for _, n := range m.Nodes() {
		props := style.Cascade(rules, nodeTarget(n))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Base().ElementID, strings.Join(nodeAttrs(n, props, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range m.Edges() {
		props := style.Cascade(rules, edgeTarget(e))
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.SourceElement, e.TargetElement, strings.Join(edgeAttrs(e, props), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeTarget(n graph.Node) style.Target {
	b := n.Base()
	return style.Target{ID: b.ElementID, Data: map[string]string{style.DataGroup: string(b.Key.Kind)}}
}

func edgeTarget(e graph.Edge) style.Target {
	return style.Target{Edge: true, ID: e.ID, Data: map[string]string{style.DataEdgeType: string(e.Type)}}
}

func nodeAttrs(n graph.Node, p style.Properties, opts Options) []string {
	b := n.Base()
	alpha := opacity(p)
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", num(b.Position.X), num(-b.Position.Y)),
		fmt.Sprintf("width=%s", num(b.Width/pointsPerInch)),
		fmt.Sprintf("height=%s", num(b.Height/pointsPerInch)),
	}
	if c := p.String("background-color"); c != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", withAlpha(c, alpha)))
	}
	if c := p.String("border-color"); c != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", withAlpha(c, alpha)))
	}
	if w, ok := pixels(p.String("border-width")); ok {
		attrs = append(attrs, "penwidth="+num(w))
	}
	if c := p.String("color"); c != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", withAlpha(c, alpha)))
	}
	if fs, ok := pixels(p.String("font-size")); ok {
		attrs = append(attrs, "fontsize="+num(fs))
	}
	return attrs
}

func edgeAttrs(e graph.Edge, p style.Properties) []string {
	alpha := opacity(p)
	attrs := []string{fmt.Sprintf("id=%q", e.ID)}
	if c := p.String("line-color"); c != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", withAlpha(c, alpha)))
	}
	if w, ok := pixels(p.String("width")); ok {
		attrs = append(attrs, "penwidth="+num(w))
	}
	if p.String("line-style") == "dashed" {
		attrs = append(attrs, `style="dashed"`)
	}
	return attrs
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.Base().Label
	if !detailed {
		return label
	}
	switch n := n.(type) {
	case *graph.PersonNode:
		return fmt.Sprintf("%s\n%d servers", label, n.Connections())
	case *graph.GroupNode:
		return fmt.Sprintf("%s\n%d members", label, n.MemberCount)
	case *graph.SelfNode:
		return fmt.Sprintf("%s\n%d servers", label, n.TotalGroups)
	}
	return label
}

// opacity returns the element opacity in [0, 1]; 1 when unset.
func opacity(p style.Properties) float64 {
	v, err := strconv.ParseFloat(p.String("opacity"), 64)
	if err != nil || v < 0 || v > 1 {
		return 1
	}
	return v
}

// withAlpha appends an alpha byte to a #rrggbb color when alpha < 1.
func withAlpha(color string, alpha float64) string {
	if alpha >= 1 || len(color) != 7 || color[0] != '#' {
		return color
	}
	return fmt.Sprintf("%s%02x", color, int(alpha*255+0.5))
}

// pixels parses "3px" or "3".
func pixels(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	return v, err == nil
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
