package graph

import (
	"fmt"

	"github.com/matzehuels/mutuals/pkg/layout"
)

// =============================================================================
// Kinds and Keys
// =============================================================================

// Kind is the node type marker shared with the renderer's style table.
type Kind string

const (
	KindUser   Kind = "user"   // a person
	KindServer Kind = "server" // a group
	KindMe     Kind = "me"     // the viewer
)

// ParseKind accepts the renderer markers and the descriptive aliases
// ("person", "group", "self").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "user", "person":
		return KindUser, nil
	case "server", "group":
		return KindServer, nil
	case "me", "self":
		return KindMe, nil
	}
	return "", fmt.Errorf("unknown node kind %q", s)
}

func (k Kind) layoutKind() layout.Kind {
	switch k {
	case KindServer:
		return layout.KindGroup
	case KindMe:
		return layout.KindSelf
	default:
		return layout.KindPerson
	}
}

// EdgeType tags an edge.
type EdgeType string

const (
	EdgeMembership EdgeType = "membership" // person → group
	EdgeConnection EdgeType = "connection" // group → self
)

// Self node constants.
const (
	SelfID    = "self"
	SelfLabel = "You"
)

// Key identifies a node by kind and entity id.
type Key struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// String renders the key as kind:id.
func (k Key) String() string { return string(k.Kind) + ":" + k.ID }

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool { return k == Key{} }

// =============================================================================
// Nodes
// =============================================================================

// Node is implemented by *PersonNode, *GroupNode and *SelfNode.
// Use a type switch to reach the kind-specific fields.
type Node interface {
	Base() *NodeBase
	Kind() Kind
}

// NodeBase holds the fields every node carries.
type NodeBase struct {
	Key       Key
	ElementID string
	Label     string
	Width     float64
	Height    float64
	Position  layout.Point
}

// Base returns the shared node fields.
func (b *NodeBase) Base() *NodeBase { return b }

// Kind returns the node kind.
func (b *NodeBase) Kind() Kind { return b.Key.Kind }

// PersonNode is a person with their sorted group memberships.
type PersonNode struct {
	NodeBase
	Groups []string
}

// Connections returns the number of groups the person belongs to.
func (n *PersonNode) Connections() int { return len(n.Groups) }

// GroupNode is a group with its distinct member count.
type GroupNode struct {
	NodeBase
	MemberCount int
}

// SelfNode is the viewer, connected to every group.
type SelfNode struct {
	NodeBase
	TotalGroups int
}

var (
	_ Node = (*PersonNode)(nil)
	_ Node = (*GroupNode)(nil)
	_ Node = (*SelfNode)(nil)
)

// =============================================================================
// Edges
// =============================================================================

// Edge is a typed edge between two nodes.
type Edge struct {
	ID            string
	Source        Key
	Target        Key
	SourceElement string
	TargetElement string
	Type          EdgeType
}

// Touches reports whether k is one of the edge's endpoints.
func (e Edge) Touches(k Key) bool { return e.Source == k || e.Target == k }

// Other returns the endpoint opposite k. The result is only meaningful when
// Touches(k) is true.
func (e Edge) Other(k Key) Key {
	if e.Source == k {
		return e.Target
	}
	return e.Source
}
