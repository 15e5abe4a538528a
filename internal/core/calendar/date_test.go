package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	today := New(2024, time.March, 2)

	tests := []struct {
		name  string
		days  int
		first string
	}{
		{name: "single day", days: 1, first: "2024-03-02"},
		{name: "crosses leap day", days: 3, first: "2024-02-29"},
		{name: "default span", days: DefaultRangeDays, first: "2023-11-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := Range(tt.days, today)
			require.Len(t, dates, tt.days)
			assert.Equal(t, tt.first, dates[0].Key())
			assert.Equal(t, today, dates[len(dates)-1])

			for i := 1; i < len(dates); i++ {
				assert.Equal(t, dates[i-1].AddDays(1), dates[i], "range must be consecutive")
			}
		})
	}
}

func TestRange_NonPositive(t *testing.T) {
	today := New(2024, time.March, 2)
	assert.Empty(t, Range(0, today))
	assert.Empty(t, Range(-5, today))
	assert.NotNil(t, Range(0, today))
}

func TestRange_StableWithinDay(t *testing.T) {
	loc := time.UTC
	a := Range(7, Today(loc))
	b := Range(7, Today(loc))
	assert.Equal(t, a, b)
	assert.Equal(t, Today(loc), a[6])
}

func TestDateFields(t *testing.T) {
	d := New(2024, time.January, 5)

	assert.Equal(t, "2024-01-05", d.Key())
	assert.Equal(t, 0, d.MonthIndex())
	assert.Equal(t, 5, d.Day)
	assert.Equal(t, "Jan 05", d.Label())
	assert.Equal(t, "Jan", d.MonthAbbrev())
	assert.Equal(t, time.Friday, d.Weekday())
}

func TestNew_Normalises(t *testing.T) {
	assert.Equal(t, Date{2024, time.February, 1}, New(2024, time.January, 32))
	assert.Equal(t, Date{2023, time.December, 31}, New(2024, time.January, 0))
}

func TestParseKey(t *testing.T) {
	d, err := ParseKey("2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, New(2024, time.December, 31), d)

	_, err = ParseKey("31/12/2024")
	assert.Error(t, err)
	_, err = ParseKey("")
	assert.Error(t, err)
}

func TestIn_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	ts := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, New(2024, time.May, 1), In(ts, time.UTC))
	assert.Equal(t, New(2024, time.May, 2), In(ts, tokyo))
}

func TestStartEnd(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// DST starts on 2024-03-10 in New York.
	d := New(2024, time.March, 10)
	assert.Equal(t, 23*time.Hour, d.End(ny).Sub(d.Start(ny)))

	regular := New(2024, time.March, 11)
	assert.Equal(t, 24*time.Hour, regular.End(ny).Sub(regular.Start(ny)))
}

func TestBefore(t *testing.T) {
	a := New(2023, time.December, 31)
	b := New(2024, time.January, 1)
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
	assert.True(t, Date{}.IsZero())
}
