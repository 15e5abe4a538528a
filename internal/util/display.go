package util

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const defaultTerminalWidth = 80

// GetDisplayWidth calculates the display width of a string, counting wide runes twice
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadString pads s with spaces to the given display width
func PadString(s string, width int, leftAlign bool) string {
	actual := GetDisplayWidth(s)
	if actual >= width {
		return s
	}
	padding := strings.Repeat(" ", width-actual)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// TruncateString cuts s to width display cells, marking the cut with "…"
func TruncateString(s string, width int) string {
	if GetDisplayWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// TerminalWidth reports the width of stdout, falling back to 80 columns when it is not a terminal
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return defaultTerminalWidth
	}
	return width
}
