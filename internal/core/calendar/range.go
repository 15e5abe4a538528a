package calendar

// DefaultRangeDays is the span of every chart: roughly four months.
const DefaultRangeDays = 122

// Range returns days consecutive dates ending at today, oldest first.
// A non-positive days yields an empty slice.
func Range(days int, today Date) []Date {
	if days <= 0 {
		return []Date{}
	}

	dates := make([]Date, days)
	for i := 0; i < days; i++ {
		dates[i] = today.AddDays(i - days + 1)
	}
	return dates
}
