package util

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNum(t *testing.T) {
	assert.Equal(t, "05", FormatNum(5))
	assert.Equal(t, "12", FormatNum(12))
	assert.Equal(t, "00", FormatNum(0))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{name: "zero", input: 0, expected: "0m"},
		{name: "minutes only", input: 45 * time.Minute, expected: "45m"},
		{name: "hours and minutes", input: 16*time.Hour + 30*time.Minute, expected: "16h 30m"},
		{name: "over a day", input: 36 * time.Hour, expected: "36h 0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.input))
		})
	}
}

func TestFormatOptional(t *testing.T) {
	assert.Equal(t, "-", FormatOptional(1, false, 1))
	assert.Equal(t, "-", FormatOptional(math.NaN(), true, 1))
	assert.Equal(t, "72.35", FormatOptional(72.345, true, 2))
}

func TestFormatWeight(t *testing.T) {
	assert.Equal(t, "72.5 kg", FormatWeight(72.5, ""))
	assert.Equal(t, "160.0 lb", FormatWeight(160, "lb"))
}

func TestAutoID(t *testing.T) {
	a := AutoID("br")
	b := AutoID("br")

	assert.True(t, strings.HasPrefix(a, "br"))
	assert.Len(t, a, 18)
	assert.NotEqual(t, a, b)
}
