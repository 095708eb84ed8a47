package graph

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/mutuals/pkg/layout"
	"github.com/matzehuels/mutuals/pkg/membership"
)

// Model is the immutable element model: every node and edge of one snapshot.
type Model struct {
	nodes     []Node
	edges     []Edge
	byKey     map[Key]Node
	byElement map[string]Node
	byID      map[string][]Node
	self      *SelfNode
	adj       *membership.Adjacency
	spacing   float64
}

// Stats summarizes a model.
type Stats struct {
	Users       int `json:"users"`
	Servers     int `json:"servers"`
	Connections int `json:"connections"` // membership edges
	Nodes       int `json:"nodes"`
	Edges       int `json:"edges"`
}

// Build assembles the model from a person → groups adjacency.
//
// Node order is persons (ascending), groups (ascending), self. Edge order is
// membership edges in person then group order, followed by one connection
// edge per group. The same adjacency and options always yield the same ids,
// positions and order.
func Build(adj *membership.Adjacency, opts layout.Options) *Model {
	if adj == nil {
		adj = membership.FromMap(nil)
	}
	persons := adj.Persons()
	groups := adj.AllGroups()
	pos := layout.Compute(len(persons), len(groups), opts)

	keys := make([]Key, 0, len(persons)+len(groups)+1)
	for _, p := range persons {
		keys = append(keys, Key{Kind: KindUser, ID: p})
	}
	for _, g := range groups {
		keys = append(keys, Key{Kind: KindServer, ID: g})
	}
	keys = append(keys, Key{Kind: KindMe, ID: SelfID})
	elementIDs := assignElementIDs(keys)

	m := &Model{
		nodes:     make([]Node, 0, len(keys)),
		byKey:     make(map[Key]Node, len(keys)),
		byElement: make(map[string]Node, len(keys)),
		byID:      make(map[string][]Node, len(keys)),
		adj:       adj,
		spacing:   pos.Spacing,
	}

	base := func(k Key, label string, p layout.Point) NodeBase {
		w, h := layout.Size(label, k.Kind.layoutKind())
		return NodeBase{Key: k, ElementID: elementIDs[k], Label: label, Width: w, Height: h, Position: p}
	}

	for i, p := range persons {
		k := Key{Kind: KindUser, ID: p}
		m.add(&PersonNode{NodeBase: base(k, p, pos.Persons[i]), Groups: adj.Groups(p)})
	}
	for i, g := range groups {
		k := Key{Kind: KindServer, ID: g}
		m.add(&GroupNode{NodeBase: base(k, g, pos.Groups[i]), MemberCount: adj.MemberCount(g)})
	}
	selfKey := Key{Kind: KindMe, ID: SelfID}
	m.self = &SelfNode{NodeBase: base(selfKey, SelfLabel, pos.Self), TotalGroups: len(groups)}
	m.add(m.self)

	used := make(map[string]bool, len(keys)+adj.MembershipCount()+len(groups))
	for _, id := range elementIDs {
		used[id] = true
	}
	for _, p := range persons {
		src := Key{Kind: KindUser, ID: p}
		for _, g := range adj.Groups(p) {
			m.edges = append(m.edges, m.newEdge(src, Key{Kind: KindServer, ID: g}, EdgeMembership, used))
		}
	}
	for _, g := range groups {
		m.edges = append(m.edges, m.newEdge(Key{Kind: KindServer, ID: g}, selfKey, EdgeConnection, used))
	}
	return m
}

func (m *Model) add(n Node) {
	b := n.Base()
	m.nodes = append(m.nodes, n)
	m.byKey[b.Key] = n
	m.byElement[b.ElementID] = n
	m.byID[b.Key.ID] = append(m.byID[b.Key.ID], n)
}

// newEdge names the edge "<source>-<target>". Element ids may contain "-",
// so two edges (or an edge and a node) can spell the same id; later ones get
// a "~n" suffix, in edge order. used holds every id taken so far.
func (m *Model) newEdge(src, dst Key, t EdgeType, used map[string]bool) Edge {
	s, d := m.byKey[src].Base().ElementID, m.byKey[dst].Base().ElementID
	base := s + "-" + d
	id := base
	for n := 2; used[id]; n++ {
		id = base + "~" + strconv.Itoa(n)
	}
	used[id] = true
	return Edge{
		ID:            id,
		Source:        src,
		Target:        dst,
		SourceElement: s,
		TargetElement: d,
		Type:          t,
	}
}

// assignElementIDs gives every key a renderer id. Entity ids shared by more
// than one kind are prefixed with the kind; any clash that remains after
// that gets a numeric suffix, in key order.
func assignElementIDs(keys []Key) map[Key]string {
	count := make(map[string]int, len(keys))
	for _, k := range keys {
		count[k.ID]++
	}

	out := make(map[Key]string, len(keys))
	used := make(map[string]bool, len(keys))
	for _, k := range keys {
		if count[k.ID] == 1 {
			out[k] = k.ID
			used[k.ID] = true
		}
	}
	for _, k := range keys {
		if count[k.ID] == 1 {
			continue
		}
		id := k.String()
		for n := 2; used[id]; n++ {
			id = k.String() + "~" + strconv.Itoa(n)
		}
		out[k] = id
		used[id] = true
	}
	return out
}

// Nodes returns all nodes in model order. The slice is a copy; the nodes are
// shared and must not be modified.
func (m *Model) Nodes() []Node { return append([]Node(nil), m.nodes...) }

// Edges returns all edges in model order.
func (m *Model) Edges() []Edge { return append([]Edge(nil), m.edges...) }

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.nodes) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.edges) }

// Node looks a node up by key.
func (m *Model) Node(k Key) (Node, bool) {
	n, ok := m.byKey[k]
	return n, ok
}

// Lookup finds a node by renderer element id.
func (m *Model) Lookup(elementID string) (Node, bool) {
	n, ok := m.byElement[elementID]
	return n, ok
}

// Find returns every node whose entity id is id, in model order.
func (m *Model) Find(id string) []Node { return append([]Node(nil), m.byID[id]...) }

// Self returns the viewer node.
func (m *Model) Self() *SelfNode { return m.self }

// Adjacency returns the membership relation the model was built from.
func (m *Model) Adjacency() *membership.Adjacency { return m.adj }

// Spacing returns the row spacing used for the columns.
func (m *Model) Spacing() float64 { return m.spacing }

// Stats returns aggregate counts.
func (m *Model) Stats() Stats {
	return Stats{
		Users:       m.adj.Len(),
		Servers:     m.adj.GroupCount(),
		Connections: m.adj.MembershipCount(),
		Nodes:       len(m.nodes),
		Edges:       len(m.edges),
	}
}

// Resolve maps an element id or entity id to a key. An element id match wins;
// otherwise the entity id must name exactly one node.
func (m *Model) Resolve(id string) (Key, error) {
	if n, ok := m.byElement[id]; ok {
		return n.Base().Key, nil
	}
	switch nodes := m.byID[id]; len(nodes) {
	case 0:
		return Key{}, fmt.Errorf("no node %q", id)
	case 1:
		return nodes[0].Base().Key, nil
	default:
		return Key{}, fmt.Errorf("id %q is ambiguous across %d kinds", id, len(nodes))
	}
}
