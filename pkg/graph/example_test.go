package graph_test

import (
	"fmt"

	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/layout"
	"github.com/matzehuels/mutuals/pkg/membership"
)

func ExampleBuild() {
	adj := membership.FromMap(map[string][]string{
		"alice": {"Gaming"},
		"bob":   {"Book Club", "Gaming"},
	})
	m := graph.Build(adj, layout.DefaultOptions())

	for _, n := range m.Nodes() {
		b := n.Base()
		switch n := n.(type) {
		case *graph.PersonNode:
			fmt.Printf("%s %s groups=%d\n", n.Kind(), b.ElementID, n.Connections())
		case *graph.GroupNode:
			fmt.Printf("%s %s members=%d\n", n.Kind(), b.ElementID, n.MemberCount)
		case *graph.SelfNode:
			fmt.Printf("%s %s (%s) total=%d\n", n.Kind(), b.ElementID, b.Label, n.TotalGroups)
		}
	}
	for _, e := range m.Edges() {
		fmt.Println(e.Type, e.ID)
	}
	// Output:
	// user alice groups=1
	// user bob groups=2
	// server Book Club members=1
	// server Gaming members=2
	// me self (You) total=2
	// membership alice-Gaming
	// membership bob-Book Club
	// membership bob-Gaming
	// connection Book Club-self
	// connection Gaming-self
}

func ExampleModel_Resolve() {
	adj := membership.FromMap(map[string][]string{"x": {"x"}})
	m := graph.Build(adj, layout.DefaultOptions())

	if _, err := m.Resolve("x"); err != nil {
		fmt.Println("error:", err)
	}
	k, _ := m.Resolve("server:x")
	fmt.Println(k.Kind, k.ID)
	// Output:
	// error: id "x" is ambiguous across 2 kinds
	// server x
}
