// Package calendar provides a calendar-day value type and the day ranges
// used as the x-axis of every chart.
package calendar

import (
	"fmt"
	"time"
)

// KeyLayout is the "YYYY-MM-DD" form used in stored records and on the wire.
const KeyLayout = "2006-01-02"

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Date is a day on the calendar, independent of any timezone.
// The zero value is not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the normalised date, so New(2024, 1, 32) is Feb 1.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns the calendar day of t as observed in loc.
func In(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return FromTime(t.In(loc))
}

// Today returns the current day in loc.
func Today(loc *time.Location) Date {
	return In(time.Now(), loc)
}

// ParseKey parses a "YYYY-MM-DD" key.
func ParseKey(key string) (Date, error) {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return FromTime(t), nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Key renders the date as "YYYY-MM-DD".
func (d Date) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) String() string {
	return d.Key()
}

// MonthIndex returns the zero-based month, 0 for January.
func (d Date) MonthIndex() int {
	return int(d.Month) - 1
}

// MonthAbbrev returns the three-letter month name.
func (d Date) MonthAbbrev() string {
	return monthAbbrev[d.MonthIndex()]
}

// Label renders the gap label used by charts, e.g. "Jan 05".
func (d Date) Label() string {
	return fmt.Sprintf("%s %02d", d.MonthAbbrev(), d.Day)
}

// AddDays moves the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return New(d.Year, d.Month, d.Day+n)
}

// Start returns local midnight of the day in loc.
func (d Date) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// End returns the next day's local midnight in loc, the exclusive end of the day.
// DST days are 23 or 25 hours long.
func (d Date) End(loc *time.Location) time.Time {
	return d.AddDays(1).Start(loc)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}
