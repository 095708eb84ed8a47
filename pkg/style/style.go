// Package style holds the renderer stylesheet: a declarative base table keyed
// by element markers and the selection overlay rules appended after it.
//
// Rules are plain values. Base returns a fresh table on every call and
// Compose always allocates, so a shared stylesheet is never modified in place.
// Precedence is append order: when several rules set the same property on an
// element, the last one wins (see [Cascade]).
package style

import (
	"strconv"
	"strings"

	"github.com/matzehuels/mutuals/pkg/layout"
)

// Properties maps style property names to values. Values are strings except
// for list-valued properties such as "line-dash-pattern".
type Properties map[string]any

// Clone returns a shallow copy of p.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the property as a string, or "" when absent.
func (p Properties) String(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return toString(v)
	}
}

// Rule is one stylesheet entry.
type Rule struct {
	Selector string     `json:"selector"`
	Style    Properties `json:"style"`
}

// Marker classes and data keys used by the base table.
const (
	ClassHighlightedNode = "highlighted-node"
	ClassHighlightedEdge = "highlighted-edge"
	ClassDimmed          = "dimmed"

	DataGroup    = "group"
	DataEdgeType = "edge_type"
)

// Theme colors.
const (
	ColorUser         = "#5865F2"
	ColorServer       = "#10b981"
	ColorServerBorder = "#059669"
	ColorMe           = "#ef4444"
	ColorMeBorder     = "#dc2626"
	ColorMembership   = "#3b82f6"
	ColorConnection   = "#10b981"
	ColorAccent       = "#FEE75C"
	ColorSelectedFill = "#FFEBB3"
	ColorBackground   = "#1f2937"

	DimmedOpacity = "0.3"
)

func px(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "px" }

// Base returns the base stylesheet. Font sizes follow the layout engine so
// label widths and rendered text agree.
func Base() []Rule {
	return []Rule{
		{Selector: "node", Style: Properties{
			"label":               "data(label)",
			"text-valign":         "center",
			"text-halign":         "center",
			"text-wrap":           "wrap",
			"text-max-width":      "data(width)",
			"font-family":         "ui-sans-serif, system-ui, sans-serif",
			"font-weight":         "500",
			"width":               "data(width)",
			"height":              "data(height)",
			"border-width":        "3px",
			"color":               "#ffffff",
			"text-outline-width":  "1px",
			"text-outline-color":  "#000000",
			"background-opacity":  "0.9",
			"transition-property": "background-color, border-color, width, height",
			"transition-duration": "0.3s",
			"shape":               "round-rectangle",
			"border-radius":       "12px",
		}},
		{Selector: "[group = 'user']", Style: Properties{
			"background-color":   ColorUser,
			"border-color":       ColorUser,
			"font-size":          px(layout.FontSize(layout.KindPerson)),
			"color":              "#ffffff",
			"text-outline-width": "0px",
			"font-weight":        "600",
		}},
		{Selector: "[group = 'server']", Style: Properties{
			"background-color":   ColorServer,
			"border-color":       ColorServerBorder,
			"color":              "#ffffff",
			"font-size":          px(layout.FontSize(layout.KindGroup)),
			"text-outline-width": "0px",
			"font-weight":        "600",
		}},
		{Selector: "[group = 'me']", Style: Properties{
			"background-color":   ColorMe,
			"border-color":       ColorMeBorder,
			"font-size":          px(layout.FontSize(layout.KindSelf)),
			"color":              "#ffffff",
			"text-outline-width": "0px",
			"font-weight":        "700",
			"border-width":       "4px",
		}},
		{Selector: "edge", Style: Properties{
			"width":               "3px",
			"curve-style":         "bezier",
			"target-arrow-shape":  "triangle",
			"arrow-scale":         "1.5",
			"transition-property": "line-color, target-arrow-color, width",
			"transition-duration": "0.3s",
		}},
		{Selector: "[edge_type = 'membership']", Style: Properties{
			"line-color":         ColorMembership,
			"target-arrow-color": ColorMembership,
			"line-style":         "solid",
		}},
		{Selector: "[edge_type = 'connection']", Style: Properties{
			"line-color":         ColorConnection,
			"target-arrow-color": ColorConnection,
			"line-style":         "dashed",
			"line-dash-pattern":  []int{10, 5},
		}},
		{Selector: "node:active", Style: Properties{
			"overlay-opacity": "0.2",
			"overlay-color":   "#ffffff",
		}},
		{Selector: "." + ClassHighlightedNode, Style: Properties{
			"border-color":       "#fbbf24",
			"border-width":       "4px",
			"background-color":   "#fef3c7",
			"color":              "#000000",
			"text-outline-color": "#f59e0b",
			"z-index":            "10",
		}},
		{Selector: "." + ClassHighlightedEdge, Style: Properties{
			"line-color":         "#fbbf24",
			"target-arrow-color": "#fbbf24",
			"width":              "5px",
			"opacity":            "1",
			"z-index":            "5",
		}},
		{Selector: "." + ClassDimmed, Style: Properties{
			"opacity": DimmedOpacity,
		}},
	}
}

// =============================================================================
// Overlay rules
// =============================================================================

// NodeSelector returns the selector matching the node with the given element id.
func NodeSelector(elementID string) string { return "node[id = '" + quote(elementID) + "']" }

// EdgeSelector returns the selector matching the edge with the given id.
func EdgeSelector(edgeID string) string { return "edge[id = '" + quote(edgeID) + "']" }

// quote escapes backslashes and single quotes for a quoted selector value.
func quote(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SelectedNode emphasizes the selected node.
func SelectedNode(elementID string) Rule {
	return Rule{Selector: NodeSelector(elementID), Style: Properties{
		"border-color":       ColorAccent,
		"border-width":       "6px",
		"background-color":   ColorSelectedFill,
		"color":              "#000000",
		"text-outline-color": ColorAccent,
		"z-index":            "10",
	}}
}

// NeighborNode marks a node adjacent to the selection.
func NeighborNode(elementID string) Rule {
	return Rule{Selector: NodeSelector(elementID), Style: Properties{
		"border-color": ColorAccent,
		"border-width": "4px",
		"z-index":      "8",
	}}
}

// HighlightedEdge marks an edge incident to the selection.
func HighlightedEdge(edgeID string) Rule {
	return Rule{Selector: EdgeSelector(edgeID), Style: Properties{
		"line-color":         ColorAccent,
		"target-arrow-color": ColorAccent,
		"width":              "5px",
		"opacity":            "1",
		"z-index":            "5",
	}}
}

// DimmedNode fades a node outside the selection.
func DimmedNode(elementID string) Rule {
	return Rule{Selector: NodeSelector(elementID), Style: Properties{
		"opacity": DimmedOpacity,
	}}
}

// Compose returns base followed by overlay in a new slice. Neither input is
// modified.
func Compose(base, overlay []Rule) []Rule {
	out := make([]Rule, 0, len(base)+len(overlay))
	out = append(out, base...)
	return append(out, overlay...)
}

func toString(v any) string {
	switch v := v.(type) {
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, " ")
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}
