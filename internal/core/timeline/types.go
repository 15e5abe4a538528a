package timeline

import "time"

// EntryType tags the variant of an Entry.
type EntryType string

const (
	TypeWater   EntryType = "water"
	TypeWeight  EntryType = "weight"
	TypeFasting EntryType = "fasting"
)

// Entry is one health event. Exactly one of Water, Weight and Fasting is set,
// matching Type.
type Entry struct {
	Type      EntryType `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Day   string `json:"day"`   // weekday abbreviation, "Mon"
	Date  int    `json:"date"`  // day of month
	Month int    `json:"month"` // 0-11
	Year  int    `json:"year"`
	Hour  int    `json:"hour"`
	Min   int    `json:"min"`
	Sec   int    `json:"sec"`

	Water   *WaterDetail   `json:"water,omitempty"`
	Weight  *WeightDetail  `json:"weight,omitempty"`
	Fasting *FastingDetail `json:"fasting,omitempty"`
}

// WaterDetail is a single drink.
type WaterDetail struct {
	Value float64 `json:"value"`
	Goal  float64 `json:"goal"`
}

// WeightDetail is a weigh-in in kilograms.
type WeightDetail struct {
	Value float64 `json:"value"`
}

// FastingDetail is a completed fasting session.
type FastingDetail struct {
	Plan  string        `json:"plan"`
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Total time.Duration `json:"total"`
}
