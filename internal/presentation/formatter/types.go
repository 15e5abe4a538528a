package formatter

import (
	"fmt"
	"io"
	"strings"
)

// Report is a rendered-agnostic view of one command's output.
type Report struct {
	Title   string
	Headers []string
	Rows    [][]string
	// RightAlign marks numeric columns.
	RightAlign []bool
	// Summary lines are printed under the table.
	Summary []string
	// Bars drive the bar chart; reports without them fall back to the table.
	Bars []Bar
	// Data is the structured value emitted by the JSON formatter.
	Data interface{}
}

// Bar is one labelled value of a bar chart.
type Bar struct {
	Label string
	Value float64
	Goal  float64
	Text  string
	// Muted bars are drawn dimmed: gaps and carried values.
	Muted bool
}

// Formatter writes a report.
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatBars  = "bars"
)

// New returns the formatter for an output format name.
func New(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return NewTableFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatCSV:
		return NewCSVFormatter(), nil
	case FormatBars:
		return NewBarFormatter(0), nil
	default:
		return nil, fmt.Errorf("invalid output format %q (use table, json, csv or bars)", format)
	}
}
