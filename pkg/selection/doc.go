// Package selection is the click-driven highlighting engine.
//
// A [State] records what is selected; nothing else survives between events.
// [Transition] applies one interaction event to a state, and [Compute]
// derives everything the view needs from the model and a state: the
// highlighted subgraph, the dimmed complement, the overlay rules appended to
// the base stylesheet, and the detail panel. Both are pure functions over an
// immutable [graph.Model].
//
// # States
//
//	Idle ──tap(id)──▶ Selected(id) ──tap(id')──▶ Selected(id')
//	  │                    │
//	  └────deselect───▶ Deselected ◀──deselect──┘
//
// Idle and Deselected highlight nothing and render the base stylesheet
// unchanged. They differ only in the panel: Idle shows the guide with a group
// directory, Deselected shows the guide with aggregate counts.
//
// A tap naming a node that is not in the model is rejected: the prior state is
// kept and the returned error carries [errors.ErrCodeNodeNotFound].
//
// [Engine] holds the current state for one view and runs events one at a
// time. It is not safe for concurrent use; hosts serving several views keep
// one engine per view and serialize that view's events.
package selection
