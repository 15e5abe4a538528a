package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-health-monitor/internal/util"
)

// minColumnWidth keeps short columns readable
const minColumnWidth = 6

type TableFormatter struct{}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

func (f *TableFormatter) Format(w io.Writer, r *Report) error {
	if r.Title != "" {
		fmt.Fprintln(w, r.Title)
	}

	if len(r.Headers) > 0 {
		widths := f.calculateColumnWidths(r)

		f.printBorder(w, widths, "top")
		f.printRow(w, r.Headers, widths, nil)
		f.printBorder(w, widths, "middle")
		for _, row := range r.Rows {
			f.printRow(w, row, widths, r.RightAlign)
		}
		f.printBorder(w, widths, "bottom")
	}

	for _, line := range r.Summary {
		fmt.Fprintln(w, line)
	}
	return nil
}

// calculateColumnWidths sizes each column to its widest cell in display cells
func (f *TableFormatter) calculateColumnWidths(r *Report) []int {
	widths := make([]int, len(r.Headers))
	for i, header := range r.Headers {
		widths[i] = max(util.GetDisplayWidth(header), minColumnWidth)
	}
	for _, row := range r.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], util.GetDisplayWidth(cell))
			}
		}
	}
	return widths
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(w io.Writer, widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	var b strings.Builder
	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2)) // +2 for padding spaces
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	fmt.Fprintln(w, b.String())
}

// printRow pads every cell to its column; rightAlign marks numeric columns
func (f *TableFormatter) printRow(w io.Writer, values []string, widths []int, rightAlign []bool) {
	var b strings.Builder
	b.WriteString("│")
	for i, width := range widths {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		left := i >= len(rightAlign) || !rightAlign[i]
		b.WriteString(" ")
		b.WriteString(util.PadString(value, width, left))
		b.WriteString(" │")
	}
	fmt.Fprintln(w, b.String())
}
