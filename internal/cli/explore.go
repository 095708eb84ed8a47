package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/panel"
	"github.com/matzehuels/mutuals/pkg/selection"
	"github.com/matzehuels/mutuals/pkg/style"
)

// exploreCommand creates the explore command, a terminal version of the viewer.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "explore [snapshot.json|mongodb://...]",
		Short: "Explore the graph in the terminal",
		Long: `Explore the graph in the terminal.

Move through users, servers and yourself with ↑/↓ (or j/k), press enter to
select and d to clear the selection. The right pane shows the detail panel;
the list marks the selection (●), its neighbors (◆) and dims the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, loc string, flags buildFlags) error {
	_, res, closeFn, err := c.build(ctx, loc, flags)
	if err != nil {
		return err
	}
	defer closeFn()

	p := tea.NewProgram(newExploreModel(ctx, res.Model), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// =============================================================================
// exploreModel - bubbletea model driving a selection engine
// =============================================================================

var (
	exploreCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	explorePaneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)

	toneStyles = map[panel.Tone]lipgloss.Style{
		panel.ToneMuted:  lipgloss.NewStyle().Foreground(colorGray),
		panel.ToneUser:   lipgloss.NewStyle().Foreground(lipgloss.Color(style.ColorUser)),
		panel.ToneServer: lipgloss.NewStyle().Foreground(lipgloss.Color(style.ColorServer)),
		panel.ToneSelf:   lipgloss.NewStyle().Foreground(lipgloss.Color(style.ColorMe)),
	}
)

type exploreModel struct {
	ctx    context.Context
	nodes  []graph.Node
	engine *selection.Engine
	out    selection.Output
	status string

	cursor int
	offset int
	height int
}

func newExploreModel(ctx context.Context, m *graph.Model) exploreModel {
	engine := selection.NewEngine(m)
	return exploreModel{
		ctx:    ctx,
		nodes:  m.Nodes(),
		engine: engine,
		out:    engine.Current(),
		height: 20,
	}
}

func (m exploreModel) Init() tea.Cmd { return nil }

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
			}
		case "enter", " ":
			if len(m.nodes) > 0 {
				m.apply(selection.Tap{ID: m.nodes[m.cursor].Base().ElementID})
			}
		case "d":
			m.apply(selection.Deselect{})
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
	}

	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m, nil
}

func (m *exploreModel) apply(ev selection.Event) {
	out, err := m.engine.Handle(m.ctx, ev)
	m.out = out
	m.status = ""
	if err != nil {
		m.status = err.Error()
	}
}

func (m exploreModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("mutuals"))
	b.WriteString("  ")
	b.WriteString(exploreDimStyle.Render("↑/↓ move  ⏎ select  d clear  q quit"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		explorePaneStyle.Render(m.listView()),
		" ",
		explorePaneStyle.Width(42).Render(renderPanel(m.out.Panel)),
	))
	b.WriteString("\n")
	hl := m.out.Highlight
	b.WriteString(exploreDimStyle.Render(fmt.Sprintf("  %s · %d highlighted · %d edges · %d dimmed",
		m.out.State.Phase, len(hl.Nodes), len(hl.Edges), len(hl.Dimmed))))
	if m.status != "" {
		b.WriteString("\n  " + StyleWarning.Render(m.status))
	}
	return b.String()
}

func (m exploreModel) listView() string {
	hl := m.out.Highlight
	highlighted := make(map[string]bool, len(hl.Nodes))
	for _, id := range hl.Nodes {
		highlighted[id] = true
	}
	dimmed := make(map[string]bool, len(hl.Dimmed))
	for _, id := range hl.Dimmed {
		dimmed[id] = true
	}

	var lines []string
	end := min(m.offset+m.height, len(m.nodes))
	for i := m.offset; i < end; i++ {
		n := m.nodes[i].Base()
		mark := " "
		switch {
		case n.ElementID == hl.Selected:
			mark = "●"
		case highlighted[n.ElementID]:
			mark = "◆"
		}
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%s %-24s %s", cursor, mark, truncate(n.Label, 24), kindTag(n.Key.Kind))

		switch {
		case i == m.cursor:
			line = exploreCursorStyle.Render(line)
		case dimmed[n.ElementID]:
			line = exploreDimStyle.Render(line)
		default:
			line = toneStyle(toneOf(n.Key.Kind)).Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, exploreDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))
	return strings.Join(lines, "\n")
}

// renderPanel draws a detail panel with its tones.
func renderPanel(p panel.Panel) string {
	var b strings.Builder
	b.WriteString(toneStyle(p.Tone).Bold(true).Render(p.Title))
	b.WriteString("\n")
	for _, l := range p.Lines {
		s := toneStyle(l.Tone)
		if l.Italic {
			s = s.Italic(true)
		}
		b.WriteString(s.Render(l.Text) + "\n")
	}
	for _, e := range p.Legend {
		b.WriteString(toneStyle(e.Tone).Render("● ") + e.Label + "\n")
	}
	for _, sec := range p.Sections {
		b.WriteString("\n" + StyleDim.Render(strings.ToUpper(sec.Title)) + "\n")
		for _, it := range sec.Items {
			b.WriteString(toneStyle(it.Tone).Render(it.Label))
			if it.Detail != "" {
				b.WriteString(" " + StyleDim.Render(it.Detail))
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func toneStyle(t panel.Tone) lipgloss.Style {
	if s, ok := toneStyles[t]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func toneOf(k graph.Kind) panel.Tone {
	switch k {
	case graph.KindUser:
		return panel.ToneUser
	case graph.KindServer:
		return panel.ToneServer
	case graph.KindMe:
		return panel.ToneSelf
	}
	return ""
}

func kindTag(k graph.Kind) string {
	return exploreDimStyle.Render(string(k))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
