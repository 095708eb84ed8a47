package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/layout"
	"github.com/matzehuels/mutuals/pkg/membership"
	"github.com/matzehuels/mutuals/pkg/style"
)

func sample() *graph.Model {
	return graph.Build(membership.FromMap(map[string][]string{
		"p1": {"A"},
		"p2": {"A", "B"},
	}), layout.DefaultOptions())
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sample(), style.Base(), Options{})

	for _, want := range []string{
		"digraph G",
		"layout=neato",
		`"p1" [label="p1", pos="-500,-`,
		`"self" [label="You", pos="1100,-500!"`,
		`"p1" -> "A" [id="p1-A"`,
		`"A" -> "self" [id="A-self"`,
		`bgcolor="transparent"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_BaseColors(t *testing.T) {
	dot := ToDOT(sample(), style.Base(), Options{Background: style.ColorBackground})

	if !strings.Contains(dot, `fillcolor="`+style.ColorUser+`"`) {
		t.Error("user fill color missing")
	}
	if !strings.Contains(dot, `color="`+style.ColorMeBorder+`"`) {
		t.Error("self border color missing")
	}
	if !strings.Contains(dot, `style="dashed"`) {
		t.Error("connection edges should be dashed")
	}
	if !strings.Contains(dot, `bgcolor="`+style.ColorBackground+`"`) {
		t.Error("background not applied")
	}
}

func TestToDOT_Overlay(t *testing.T) {
	rules := style.Compose(style.Base(), []style.Rule{
		style.SelectedNode("A"),
		style.HighlightedEdge("p1-A"),
		style.DimmedNode("B"),
	})
	dot := ToDOT(sample(), rules, Options{})

	lines := map[string]string{}
	for _, l := range strings.Split(dot, "\n") {
		l = strings.TrimSpace(l)
		if i := strings.Index(l, " ["); i > 0 {
			lines[l[:i]] = l
		}
	}

	if a := lines[`"A"`]; !strings.Contains(a, `fillcolor="`+style.ColorSelectedFill+`"`) || !strings.Contains(a, "penwidth=6") {
		t.Errorf("selected node attrs = %s", a)
	}
	if b := lines[`"B"`]; !strings.Contains(b, `fillcolor="`+style.ColorServer+`4d"`) {
		t.Errorf("dimmed node attrs = %s", b)
	}
	if e := lines[`"p1" -> "A"`]; !strings.Contains(e, `color="`+style.ColorAccent+`"`) || !strings.Contains(e, "penwidth=5") {
		t.Errorf("highlighted edge attrs = %s", e)
	}
}

func TestFmtLabel(t *testing.T) {
	m := sample()
	a, _ := m.Node(graph.Key{Kind: graph.KindServer, ID: "A"})

	if got := fmtLabel(a, false); got != "A" {
		t.Errorf("simple label = %q", got)
	}
	if got := fmtLabel(a, true); got != "A\n2 members" {
		t.Errorf("detailed label = %q", got)
	}
}

func TestWithAlpha(t *testing.T) {
	tests := []struct {
		color string
		alpha float64
		want  string
	}{
		{"#10b981", 1, "#10b981"},
		{"#10b981", 0.3, "#10b9814d"},
		{"white", 0.3, "white"},
	}
	for _, tt := range tests {
		if got := withAlpha(tt.color, tt.alpha); got != tt.want {
			t.Errorf("withAlpha(%q, %v) = %q, want %q", tt.color, tt.alpha, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 200.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 200.00" width="100" height="200"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox should be unchanged, got %s", got)
	}
}
