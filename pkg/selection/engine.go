package selection

import (
	"context"
	"time"

	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/observability"
)

// Engine holds one view's selection and its last computed output.
type Engine struct {
	model *graph.Model
	state State
	out   Output
}

// NewEngine starts an engine in the Idle state.
func NewEngine(m *graph.Model) *Engine {
	e := &Engine{}
	e.Reset(m)
	return e
}

// Handle applies ev and recomputes the output from scratch. A rejected event
// leaves the state and output untouched and returns them with the error.
func (e *Engine) Handle(ctx context.Context, ev Event) (Output, error) {
	start := time.Now()
	next, err := Transition(e.model, e.state, ev)
	if err != nil {
		if t, ok := ev.(Tap); ok {
			observability.Selection().OnRejected(ctx, t.ID, err)
		}
		return e.out, err
	}

	e.state = next
	e.out = Compute(e.model, next)

	switch next.Phase {
	case PhaseSelected:
		observability.Selection().OnSelect(ctx, string(next.Selected.Kind),
			len(e.out.Highlight.Nodes), len(e.out.Highlight.Dimmed), time.Since(start))
	case PhaseDeselected:
		observability.Selection().OnDeselect(ctx)
	}
	return e.out, nil
}

// Reset switches to m and returns to Idle.
func (e *Engine) Reset(m *graph.Model) {
	e.model = m
	e.state = Initial()
	e.out = Compute(m, e.state)
}

// Current returns the last computed output.
func (e *Engine) Current() Output { return e.out }

// State returns the current selection state.
func (e *Engine) State() State { return e.state }

// Model returns the model the engine works on.
func (e *Engine) Model() *graph.Model { return e.model }
