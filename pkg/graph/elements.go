package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/mutuals/pkg/layout"
)

// Element is one renderer element: a node (with Position) or an edge.
type Element struct {
	Data     map[string]any `json:"data"`
	Position *layout.Point  `json:"position,omitempty"`
}

// Metric keys carried in node data.
const (
	MetricConnections  = "connections"   // user: number of groups
	MetricUserCount    = "user_count"    // server: number of members
	MetricTotalServers = "total_servers" // me: number of groups
)

// NodeElement converts a node to its renderer element.
func NodeElement(n Node) Element {
	b := n.Base()
	data := map[string]any{
		"id":     b.ElementID,
		"label":  b.Label,
		"group":  string(b.Key.Kind),
		"width":  b.Width,
		"height": b.Height,
	}
	switch n := n.(type) {
	case *PersonNode:
		data[MetricConnections] = n.Connections()
	case *GroupNode:
		data[MetricUserCount] = n.MemberCount
	case *SelfNode:
		data[MetricTotalServers] = n.TotalGroups
	}
	p := b.Position
	return Element{Data: data, Position: &p}
}

// EdgeElement converts an edge to its renderer element.
func EdgeElement(e Edge) Element {
	return Element{Data: map[string]any{
		"id":        e.ID,
		"source":    e.SourceElement,
		"target":    e.TargetElement,
		"edge_type": string(e.Type),
	}}
}

// Elements returns nodes then edges in model order.
func (m *Model) Elements() []Element {
	out := make([]Element, 0, len(m.nodes)+len(m.edges))
	for _, n := range m.nodes {
		out = append(out, NodeElement(n))
	}
	for _, e := range m.edges {
		out = append(out, EdgeElement(e))
	}
	return out
}

// Document is the exported form of a model: its elements and summary counts.
type Document struct {
	Elements []Element `json:"elements"`
	Stats    Stats     `json:"stats"`
}

// WriteElements writes the model as an indented JSON [Document].
func WriteElements(m *Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Elements: m.Elements(), Stats: m.Stats()}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
