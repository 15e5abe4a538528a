package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		width     int
		leftAlign bool
		expected  string
	}{
		{name: "left align", input: "kg", width: 5, leftAlign: true, expected: "kg   "},
		{name: "right align", input: "72.5", width: 6, expected: "  72.5"},
		{name: "already wide", input: "overflow", width: 3, expected: "overflow"},
		{name: "wide runes", input: "水", width: 4, leftAlign: true, expected: "水  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PadString(tt.input, tt.width, tt.leftAlign))
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "16:8 int…", TruncateString("16:8 intermittent", 9))
}

func TestTerminalWidthFallback(t *testing.T) {
	// Tests run without a TTY on stdout.
	assert.GreaterOrEqual(t, TerminalWidth(), 40)
}
