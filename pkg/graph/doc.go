// Package graph provides the element model of a membership diagram: typed,
// positioned nodes and typed edges, built once per snapshot.
//
// # Architecture
//
// The model sits between the membership builder and everything that draws or
// inspects the diagram:
//
//	membership.Snapshot → membership.Build → *Adjacency
//	                    → graph.Build      → *Model
//	                    → selection / render / server
//
// # Core Types
//
//   - [Model]: the immutable node and edge set
//   - [Node]: tagged variant implemented by [*PersonNode], [*GroupNode] and [*SelfNode]
//   - [Edge]: a membership (person → group) or connection (group → self) edge
//   - [Key]: (kind, id) pair used for every internal lookup
//
// # Identifiers
//
// A person and a group could carry the same literal name. Lookups therefore
// always go through [Key]. The renderer needs unique element ids, so when such
// a collision exists both nodes get a kind prefix ("user:x", "server:x");
// otherwise the element id is the entity id. Edge ids join the two endpoint
// element ids with "-":
//
//	alice-Gaming      membership edge
//	Gaming-self       connection edge
//
// # Renderer Format
//
// [Model.Elements] produces the cytoscape-style element list consumed by the
// browser view:
//
//	[
//	  {"data": {"id": "alice", "label": "alice", "group": "user", "width": 80, "height": 40, "connections": 1},
//	   "position": {"x": -500, "y": 600}},
//	  {"data": {"id": "alice-Gaming", "source": "alice", "target": "Gaming", "edge_type": "membership"}}
//	]
//
// # Concurrency
//
// A [Model] is read-only after [Build] and safe for concurrent use.
package graph
