package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted
)

var (
	// StyleTitle for section headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for addresses and other things to act on.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleLabel = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

// Status markers. Each is rendered in its own color by [printer.status].
var (
	markSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	markError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	markInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
	markFile    = StyleDim.Render("→")
	markSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	markCached  = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	markFresh   = lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
)

// =============================================================================
// Printer
// =============================================================================

// printer writes styled status lines. Commands build one from
// cmd.OutOrStdout() so output can be captured in tests.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer { return printer{w: w} }

func (p printer) status(mark, format string, args ...any) {
	fmt.Fprintln(p.w, mark+" "+fmt.Sprintf(format, args...))
}

func (p printer) success(format string, args ...any) { p.status(markSuccess, format, args...) }
func (p printer) failure(format string, args ...any) { p.status(markError, format, args...) }
func (p printer) info(format string, args ...any)    { p.status(markInfo, format, args...) }

// detail prints an indented, dimmed line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written output path.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+markFile+" "+StyleValue.Render(path))
}

// field prints a labeled value in an aligned column.
func (p printer) field(label, value string) {
	fmt.Fprintln(p.w, styleLabel.Render(label)+" "+StyleValue.Render(value))
}

// title prints a section heading preceded by a blank line.
func (p printer) title(s string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, StyleTitle.Render(s))
}

// line prints s unstyled.
func (p printer) line(s string) { fmt.Fprintln(p.w, s) }

// modelSummary prints element counts and whether the model came from cache,
// e.g. "  6 nodes · 5 edges · cached".
func (p printer) modelSummary(nodes, edges int, cached bool) {
	var parts []string
	if nodes > 0 {
		parts = append(parts, StyleDim.Render(plural(nodes, "node")))
	}
	if edges > 0 {
		parts = append(parts, StyleDim.Render(plural(edges, "edge")))
	}
	if cached {
		parts = append(parts, markCached)
	} else {
		parts = append(parts, markFresh)
	}
	fmt.Fprintln(p.w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
