package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/penwyp/go-health-monitor/internal/util"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	goalMetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

const (
	barGlyph  = "█"
	goalGlyph = "│"
)

// BarFormatter draws one horizontal bar per day, scaled to the largest value
// or goal. Reports without bars are printed as a table.
type BarFormatter struct {
	width int
}

// NewBarFormatter draws bars within width columns; 0 uses the terminal width.
func NewBarFormatter(width int) *BarFormatter {
	return &BarFormatter{width: width}
}

func (f *BarFormatter) Format(w io.Writer, r *Report) error {
	if len(r.Bars) == 0 {
		return NewTableFormatter().Format(w, r)
	}

	width := f.width
	if width <= 0 {
		width = util.TerminalWidth()
	}

	labelWidth, textWidth := 0, 0
	var scale float64
	for _, bar := range r.Bars {
		labelWidth = max(labelWidth, util.GetDisplayWidth(bar.Label))
		textWidth = max(textWidth, util.GetDisplayWidth(bar.Text))
		scale = max(scale, bar.Value, bar.Goal)
	}

	// label, space, bar, space, text
	barWidth := width - labelWidth - textWidth - 2
	if barWidth < 10 {
		barWidth = 10
	}

	if r.Title != "" {
		fmt.Fprintln(w, titleStyle.Render(r.Title))
	}
	for _, bar := range r.Bars {
		fmt.Fprintf(w, "%s %s %s\n",
			util.PadString(bar.Label, labelWidth, true),
			renderBar(bar, scale, barWidth),
			bar.Text)
	}
	for _, line := range r.Summary {
		fmt.Fprintln(w, line)
	}
	return nil
}

func renderBar(bar Bar, scale float64, width int) string {
	filled, goalAt := 0, -1
	if scale > 0 {
		filled = int(bar.Value / scale * float64(width))
		if bar.Goal > 0 {
			goalAt = min(int(bar.Goal/scale*float64(width)), width-1)
		}
	}
	if bar.Value > 0 && filled == 0 {
		filled = 1
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i < filled:
			b.WriteString(barGlyph)
		case i == goalAt:
			b.WriteString(goalGlyph)
		default:
			b.WriteString(" ")
		}
	}

	switch {
	case bar.Muted:
		return mutedStyle.Render(b.String())
	case bar.Goal > 0 && bar.Value >= bar.Goal:
		return goalMetStyle.Render(b.String())
	default:
		return barStyle.Render(b.String())
	}
}
