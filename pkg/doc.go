// Package pkg provides the core libraries for mutuals, an interactive map of
// the people you share chat servers with.
//
// # Overview
//
// A membership snapshot lists, per server, the members you share it with.
// mutuals turns it into a bipartite node-link diagram: persons on the left,
// servers on the right, and a single "You" node on the far right connected to
// every server. Selecting a node highlights its neighborhood and fills an
// information panel.
//
// # Architecture
//
// The data flow:
//
//	Snapshot (JSON file, HTTP URL, MongoDB)
//	         ↓
//	    [source] package (load)
//	         ↓
//	    [membership] package (bidirectional adjacency)
//	         ↓
//	    [graph] + [layout] packages (positioned element model)
//	         ↓
//	    [selection] + [panel] + [style] packages (interaction state)
//	         ↓
//	    cytoscape elements, JSON, SVG/PDF/PNG
//
// # Quick Start
//
//	snap, _ := source.NewFile("snapshot.json").Load(ctx)
//	adj := membership.Build(snap)
//	m := graph.Build(adj, layout.DefaultOptions())
//
//	eng := selection.NewEngine(m)
//	out, _ := eng.Handle(ctx, selection.Tap{ID: "A", Kind: graph.KindServer})
//	fmt.Println(out.Panel.Title)
//
// # Main Packages
//
// [source] - Snapshot sources: JSON file, HTTP URL and MongoDB.
//
// [membership] - Snapshot decoding and the person/server adjacency.
//
// [graph] - The element model: nodes, edges, element ids and positions.
//
// [layout] - Column placement and node sizing.
//
// [selection] - The selection state machine and highlight computation.
//
// [panel] - Information panel content for each selection.
//
// [style] - The base stylesheet and highlight overlays.
//
// [pipeline] - Orchestration (load → adjacency → model → render) with caching.
//
// [cache] - File, Redis and null caches.
//
// [render/nodelink] - Graphviz rendering of the element model.
//
// [observability] - Hooks for pipeline, selection, cache and HTTP events.
//
// [source]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/source
// [membership]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/membership
// [graph]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/layout
// [selection]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/selection
// [panel]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/panel
// [style]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/style
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/render/nodelink
// [observability]: https://pkg.go.dev/github.com/matzehuels/mutuals/pkg/observability
package pkg
