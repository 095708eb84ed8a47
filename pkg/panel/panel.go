// Package panel describes the detail panel shown next to the graph.
//
// A [Panel] is data only. The HTML view and the terminal explorer each draw
// it their own way; [Panel.Text] gives a plain-text rendering for logs and
// tests.
package panel

import (
	"fmt"
	"strings"

	"github.com/matzehuels/mutuals/pkg/membership"
)

// View identifies which panel variant is shown.
type View string

const (
	ViewIdle       View = "idle"       // nothing selected yet
	ViewDeselected View = "deselected" // selection explicitly cleared
	ViewPerson     View = "person"
	ViewGroup      View = "group"
	ViewSelf       View = "self"
)

// Tone is the color role of a piece of text.
type Tone string

const (
	ToneDefault Tone = ""
	ToneMuted   Tone = "muted"
	ToneUser    Tone = "user"
	ToneServer  Tone = "server"
	ToneSelf    Tone = "me"
)

// Line is one line of panel text.
type Line struct {
	Text   string `json:"text"`
	Tone   Tone   `json:"tone,omitempty"`
	Italic bool   `json:"italic,omitempty"`
}

// Item is a list entry with an optional secondary detail.
type Item struct {
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Tone   Tone   `json:"tone,omitempty"`
}

// Section is a titled list below the header.
type Section struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// LegendEntry maps a node color to its meaning.
type LegendEntry struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

// Panel is the detail panel content.
type Panel struct {
	View     View          `json:"view"`
	Title    string        `json:"title"`
	Tone     Tone          `json:"tone,omitempty"`
	Lines    []Line        `json:"lines,omitempty"`
	Legend   []LegendEntry `json:"legend,omitempty"`
	Sections []Section     `json:"sections,omitempty"`
}

// Hint is the guide's call to action.
const Hint = "Click any node to see connections"

// SelfTitle is the self panel header.
const SelfTitle = "You"

// Legend returns the node color legend.
func Legend() []LegendEntry {
	return []LegendEntry{
		{Label: "Blue = Users", Tone: ToneUser},
		{Label: "Green = Servers", Tone: ToneServer},
		{Label: "Red = You", Tone: ToneSelf},
	}
}

// Guide returns the bare guide: hint and legend.
func Guide() Panel {
	return Panel{
		View:   ViewIdle,
		Title:  "Guide",
		Lines:  []Line{{Text: Hint, Tone: ToneMuted}},
		Legend: Legend(),
	}
}

// Idle returns the initial panel: the guide followed by a directory of every
// group with its member count.
func Idle(adj *membership.Adjacency) Panel {
	p := Guide()
	groups := adj.AllGroups()
	items := make([]Item, 0, len(groups))
	for _, g := range groups {
		items = append(items, Item{Label: g, Detail: members(adj.MemberCount(g)), Tone: ToneServer})
	}
	p.Sections = []Section{{Title: "Servers", Items: items}}
	return p
}

// Deselected returns the guide followed by aggregate counts.
func Deselected(adj *membership.Adjacency) Panel {
	p := Guide()
	p.View = ViewDeselected
	p.Sections = []Section{{Title: "Stats", Items: []Item{
		{Label: fmt.Sprintf("Users: %d", adj.Len()), Tone: ToneMuted},
		{Label: fmt.Sprintf("Servers: %d", adj.GroupCount()), Tone: ToneMuted},
		{Label: fmt.Sprintf("Connections: %d", adj.MembershipCount()), Tone: ToneMuted},
	}}}
	return p
}

// Person lists the groups a person belongs to.
func Person(adj *membership.Adjacency, id string) Panel {
	groups := adj.Groups(id)
	return Panel{
		View:     ViewPerson,
		Title:    id,
		Tone:     ToneUser,
		Lines:    []Line{{Text: "Member of " + count(len(groups), "server", "servers") + ":"}},
		Sections: []Section{{Items: items(groups, ToneServer)}},
	}
}

// Group lists every person whose membership contains the group.
func Group(adj *membership.Adjacency, id string) Panel {
	m := adj.Members(id)
	return Panel{
		View:     ViewGroup,
		Title:    id,
		Tone:     ToneServer,
		Lines:    []Line{{Text: members(len(m)) + ":"}},
		Sections: []Section{{Items: items(m, ToneUser)}},
	}
}

// Self summarizes the viewer's reach.
func Self(adj *membership.Adjacency) Panel {
	return Panel{
		View:  ViewSelf,
		Title: SelfTitle,
		Tone:  ToneSelf,
		Lines: []Line{
			{Text: "Connected to " + count(adj.Len(), "user", "users") + " through " + count(adj.GroupCount(), "server", "servers")},
			{Text: "Your network reach", Tone: ToneMuted, Italic: true},
		},
	}
}

func members(n int) string { return count(n, "member", "members") }

func count(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

func items(labels []string, tone Tone) []Item {
	out := make([]Item, len(labels))
	for i, l := range labels {
		out[i] = Item{Label: l, Tone: tone}
	}
	return out
}

// Text renders the panel as plain text.
func (p Panel) Text() string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteByte('\n')
	for _, l := range p.Lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	for _, e := range p.Legend {
		b.WriteString(e.Label)
		b.WriteByte('\n')
	}
	for _, s := range p.Sections {
		if s.Title != "" {
			b.WriteString("\n" + s.Title + "\n")
		}
		for _, it := range s.Items {
			b.WriteString("  " + it.Label)
			if it.Detail != "" {
				b.WriteString(" (" + it.Detail + ")")
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
