package selection

import (
	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/panel"
	"github.com/matzehuels/mutuals/pkg/style"
)

// =============================================================================
// State and Events
// =============================================================================

// Phase is the selection state machine phase.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDeselected Phase = "deselected"
	PhaseSelected   Phase = "selected"
)

// State is the transient selection state. Selected is set only in
// PhaseSelected.
type State struct {
	Phase    Phase     `json:"phase"`
	Selected graph.Key `json:"selected,omitzero"`
}

// Initial returns the state before any interaction.
func Initial() State { return State{Phase: PhaseIdle} }

// Event is an interaction event: [Tap] or [Deselect].
type Event interface{ event() }

// Tap is a click on a node. ID is an element id or an entity id. Kind is
// optional; when set, the node must be of that kind.
type Tap struct {
	ID   string     `json:"id"`
	Kind graph.Kind `json:"kind,omitempty"`
}

// Deselect clears the selection.
type Deselect struct{}

func (Tap) event()      {}
func (Deselect) event() {}

// Transition applies ev to s. On a rejected event it returns s unchanged
// together with the error.
func Transition(m *graph.Model, s State, ev Event) (State, error) {
	switch ev := ev.(type) {
	case Deselect:
		return State{Phase: PhaseDeselected}, nil
	case Tap:
		k, err := resolve(m, ev)
		if err != nil {
			return s, err
		}
		return State{Phase: PhaseSelected, Selected: k}, nil
	case nil:
		return s, errors.New(errors.ErrCodeInvalidEvent, "nil event")
	default:
		return s, errors.New(errors.ErrCodeInvalidEvent, "unsupported event %T", ev)
	}
}

func resolve(m *graph.Model, t Tap) (graph.Key, error) {
	if err := errors.ValidateEventID(t.ID); err != nil {
		return graph.Key{}, err
	}
	if t.Kind == "" {
		k, err := m.Resolve(t.ID)
		if err != nil {
			return graph.Key{}, errors.Wrap(errors.ErrCodeNodeNotFound, err, "tap %q", t.ID)
		}
		return k, nil
	}

	kind, err := graph.ParseKind(string(t.Kind))
	if err != nil {
		return graph.Key{}, errors.Wrap(errors.ErrCodeInvalidKind, err, "tap %q", t.ID)
	}
	if n, ok := m.Lookup(t.ID); ok && n.Kind() == kind {
		return n.Base().Key, nil
	}
	if n, ok := m.Node(graph.Key{Kind: kind, ID: t.ID}); ok {
		return n.Base().Key, nil
	}
	return graph.Key{}, errors.New(errors.ErrCodeNodeNotFound, "no %s node %q", kind, t.ID)
}

// =============================================================================
// Output
// =============================================================================

// Highlight is the selected node's neighborhood, by element id.
//
// Nodes holds neighbors in first-seen edge order, Edges the incident edges in
// model order and Dimmed every other node in model order. Nodes and Dimmed are
// disjoint, and together with Selected they cover every node.
type Highlight struct {
	Selected string   `json:"selected,omitempty"`
	Nodes    []string `json:"nodes"`
	Edges    []string `json:"edges"`
	Dimmed   []string `json:"dimmed"`
}

// Output is everything the view renders for one state.
type Output struct {
	State      State        `json:"state"`
	Highlight  Highlight    `json:"highlight"`
	Overlay    []style.Rule `json:"overlay"`
	Stylesheet []style.Rule `json:"stylesheet"`
	Panel      panel.Panel  `json:"panel"`
}

// Compute derives the view output for s. A selected key that is no longer in
// the model yields the Idle output.
func Compute(m *graph.Model, s State) Output {
	adj := m.Adjacency()

	switch s.Phase {
	case PhaseDeselected:
		return noSelection(s, panel.Deselected(adj))
	case PhaseSelected:
		if n, ok := m.Node(s.Selected); ok {
			return selected(m, s, n)
		}
	}
	return noSelection(Initial(), panel.Idle(adj))
}

func noSelection(s State, p panel.Panel) Output {
	return Output{
		State:      s,
		Highlight:  Highlight{Nodes: []string{}, Edges: []string{}, Dimmed: []string{}},
		Overlay:    []style.Rule{},
		Stylesheet: style.Base(),
		Panel:      p,
	}
}

func selected(m *graph.Model, s State, n graph.Node) Output {
	h := Neighborhood(m, n.Base().Key)

	overlay := make([]style.Rule, 0, 1+len(h.Nodes)+len(h.Edges)+len(h.Dimmed))
	overlay = append(overlay, style.SelectedNode(h.Selected))
	for _, id := range h.Nodes {
		overlay = append(overlay, style.NeighborNode(id))
	}
	for _, id := range h.Edges {
		overlay = append(overlay, style.HighlightedEdge(id))
	}
	for _, id := range h.Dimmed {
		overlay = append(overlay, style.DimmedNode(id))
	}

	return Output{
		State:      s,
		Highlight:  h,
		Overlay:    overlay,
		Stylesheet: style.Compose(style.Base(), overlay),
		Panel:      panelFor(m, n),
	}
}

// Neighborhood scans every edge once and collects the nodes and edges touching
// k. The caller must pass a key present in m.
func Neighborhood(m *graph.Model, k graph.Key) Highlight {
	self, _ := m.Node(k)
	h := Highlight{Selected: self.Base().ElementID, Nodes: []string{}, Edges: []string{}}

	near := map[graph.Key]bool{k: true}
	for _, e := range m.Edges() {
		if !e.Touches(k) {
			continue
		}
		h.Edges = append(h.Edges, e.ID)
		other := e.Other(k)
		if near[other] {
			continue
		}
		near[other] = true
		if n, ok := m.Node(other); ok {
			h.Nodes = append(h.Nodes, n.Base().ElementID)
		}
	}

	h.Dimmed = make([]string, 0, m.NodeCount()-len(near))
	for _, n := range m.Nodes() {
		if !near[n.Base().Key] {
			h.Dimmed = append(h.Dimmed, n.Base().ElementID)
		}
	}
	return h
}

func panelFor(m *graph.Model, n graph.Node) panel.Panel {
	adj := m.Adjacency()
	switch n := n.(type) {
	case *graph.PersonNode:
		return panel.Person(adj, n.Key.ID)
	case *graph.GroupNode:
		return panel.Group(adj, n.Key.ID)
	default:
		return panel.Self(adj)
	}
}
