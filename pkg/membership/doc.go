// Package membership turns a raw group-membership snapshot into a normalized
// person → groups adjacency.
//
// # Input
//
// A [Snapshot] maps a group name to the members seen in it, each with
// optional metadata listing further groups the member shares with the viewer:
//
//	{
//	  "Gaming":  {"alice#0001": {}, "bob#4242": {"mutual_servers": ["Book Club"]}},
//	  "Book Club": {"carol#9": null}
//	}
//
// Member metadata is decoded leniently: anything that is not an object with a
// list of strings under "mutual_servers" (or "mutual_groups") is read as an
// empty hint list. A single odd member never fails the whole snapshot.
//
// # Building
//
// [Build] strips the discriminator suffix from every member id (everything from
// the separator, "#" by default, onward), registers the member in the group it
// was listed under and in every hinted group, then sorts and deduplicates:
//
//	adj := membership.Build(snapshot)
//	adj.Persons()        // ["alice", "bob", "carol"]
//	adj.Groups("bob")    // ["Book Club", "Gaming"]
//	adj.Members("Gaming") // ["alice", "bob"]
//
// # Concurrency
//
// An [Adjacency] is immutable once built and safe for concurrent readers.
package membership
