package util

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormatNum zero-pads a number to two digits
func FormatNum(n int) string {
	return fmt.Sprintf("%02d", n)
}

// FormatDuration renders a duration as "Xh Ym", or "Ym" under an hour
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatHours renders fractional hours with one decimal
func FormatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

// FormatWeight renders a weight with one decimal and its unit
func FormatWeight(value float64, unit string) string {
	if unit == "" {
		unit = "kg"
	}
	return fmt.Sprintf("%.1f %s", value, unit)
}

// FormatOptional renders a float or "-" when the value is not valid
func FormatOptional(value float64, valid bool, decimals int) string {
	if !valid || math.IsNaN(value) {
		return "-"
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// AutoID returns a prefixed, compact random identifier such as "br3f9c...".
func AutoID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + id[:16]
}
