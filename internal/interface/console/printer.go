// Package console renders run output for a human watching the terminal.
// The published card is shown in a bordered panel before the snippet store
// is touched, so a bad configuration is visible without opening the gist.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Printer writes styled status lines and the card preview panel.
type Printer struct {
	out io.Writer

	panelStyle   lipgloss.Style
	titleStyle   lipgloss.Style
	contentStyle lipgloss.Style
	successStyle lipgloss.Style
	infoStyle    lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewPrinter creates a Printer writing to out. A nil out falls back to
// stdout.
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}

	return &Printer{
		out: out,
		panelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("4")).
			Padding(0, 1),
		titleStyle:   lipgloss.NewStyle().Bold(true),
		contentStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		successStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		infoStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// Panel prints the card preview: the title, then the body in a rounded
// border sized to the widest line. Widths are measured visually so the
// emoji in titles and placeholder lines don't skew the frame.
func (p *Printer) Panel(title, content string) {
	width := runewidth.StringWidth(title)
	for _, line := range strings.Split(content, "\n") {
		if w := runewidth.StringWidth(line); w > width {
			width = w
		}
	}

	panel := p.panelStyle.Width(width + 2).Render(p.contentStyle.Render(content))
	fmt.Fprintln(p.out, p.titleStyle.Render(title))
	fmt.Fprintln(p.out, panel)
}

// Successf prints a success line.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

// Infof prints an informational line.
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.infoStyle.Render("ℹ"), fmt.Sprintf(format, args...))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.errorStyle.Render("Error:"), fmt.Sprintf(format, args...))
}
