// Package chart turns bucketed records into gap-filled daily series.
package chart

import (
	"fmt"
	"time"

	"github.com/penwyp/go-health-monitor/internal/core/calendar"
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/data/aggregator"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// PointKind discriminates the variants of Point.
type PointKind int

const (
	// PointPopulated is a day with a record.
	PointPopulated PointKind = iota
	// PointGap is a day without a record; only Date and Label are set.
	PointGap
	// PointCarried is a weight day without a record. It repeats the last
	// known value and is hidden so the line stays continuous.
	PointCarried
)

func (k PointKind) String() string {
	switch k {
	case PointPopulated:
		return "populated"
	case PointGap:
		return "gap"
	case PointCarried:
		return "carried"
	default:
		return fmt.Sprintf("PointKind(%d)", int(k))
	}
}

// Point is one day of a series.
type Point struct {
	Kind   PointKind
	Date   calendar.Date
	Label  string
	ID     string
	Value  float64
	Goal   float64
	Hidden bool
	// Segments are the fasting slices of the day, fasting series only.
	Segments []aggregator.FastingSegment
}

// Mean is an average that may be undefined. Valid is false when no value
// contributed to it.
type Mean struct {
	Value float64
	Valid bool
}

func meanOf(values []float64) Mean {
	if len(values) == 0 {
		return Mean{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Mean{Value: sum / float64(len(values)), Valid: true}
}

// Span bounds the populated part of a series, both ends inclusive.
type Span struct {
	Start int
	End   int
}

// IntakeSeries is the hydration chart.
type IntakeSeries struct {
	Points    []Point
	AvgIntake Mean
}

// FastingSeries is the fasting chart.
type FastingSeries struct {
	Points         []Point
	MaxDuration    time.Duration
	AvgHoursPerDay Mean
}

// WeightSeries is the body-weight chart. Visible is nil when no day in range
// has a record.
type WeightSeries struct {
	Points    []Point
	Visible   *Span
	AvgWeight Mean
}

// Assembler merges the date range ending today with bucketed records.
type Assembler struct {
	Days  int
	Clock util.Clock
}

// NewAssembler creates an assembler over the last days days of clock.
func NewAssembler(days int, clock util.Clock) *Assembler {
	return &Assembler{Days: days, Clock: clock}
}

func (a *Assembler) clock() util.Clock {
	if a.Clock == nil {
		return util.GetTimeProvider()
	}
	return a.Clock
}

func (a *Assembler) aggregator() *aggregator.Aggregator {
	return aggregator.NewAggregator(a.clock().Location())
}

// Range returns the x-axis of every series.
func (a *Assembler) Range() []calendar.Date {
	c := a.clock()
	return calendar.Range(a.Days, calendar.In(c.Now(), c.Location()))
}

// Intake builds the hydration series. today, when set, overrides the stored
// record of its day.
func (a *Assembler) Intake(records []model.IntakeRecord, today *model.IntakeRecord) (IntakeSeries, error) {
	buckets, err := a.aggregator().BucketIntake(records, today)
	if err != nil {
		return IntakeSeries{}, fmt.Errorf("failed to bucket intake: %w", err)
	}

	days := a.Range()
	series := IntakeSeries{Points: make([]Point, 0, len(days))}
	var values []float64

	for _, day := range days {
		b, ok := buckets[day]
		if !ok {
			series.Points = append(series.Points, gap(day))
			continue
		}
		values = append(values, b.Value)
		series.Points = append(series.Points, Point{
			Kind:  PointPopulated,
			Date:  day,
			Label: day.Key(),
			ID:    b.ID,
			Value: b.Value,
			Goal:  b.Goal,
		})
	}

	series.AvgIntake = meanOf(values)
	return series, nil
}

// Fasting builds the fasting series. A day's value is the sum of its kept
// segments in hours.
func (a *Assembler) Fasting(records []model.FastingRecord) (FastingSeries, error) {
	buckets, err := a.aggregator().BucketFasting(records)
	if err != nil {
		return FastingSeries{}, fmt.Errorf("failed to bucket fasting: %w", err)
	}

	days := a.Range()
	series := FastingSeries{
		Points:      make([]Point, 0, len(days)),
		MaxDuration: buckets.MaxDuration,
	}
	var hours []float64

	for _, day := range days {
		segs, ok := buckets.Days[day]
		if !ok {
			series.Points = append(series.Points, gap(day))
			continue
		}
		total := buckets.TotalHours(day)
		hours = append(hours, total)
		series.Points = append(series.Points, Point{
			Kind:     PointPopulated,
			Date:     day,
			Label:    day.Key(),
			Value:    total,
			Segments: segs,
		})
	}

	series.AvgHoursPerDay = meanOf(hours)
	return series, nil
}

// Weight builds the body-weight series. Days after the first record repeat
// the last known value as hidden carried points. Days before it are
// PointGap with no value, not a hidden zero point, so a missing weight never
// reads as 0 kg.
// Labels carry the month only where it changes, e.g. "Jan 30", "31", "Feb 1".
func (a *Assembler) Weight(records []model.BodyRecord) (WeightSeries, error) {
	buckets, err := a.aggregator().BucketWeight(records)
	if err != nil {
		return WeightSeries{}, fmt.Errorf("failed to bucket weight: %w", err)
	}

	days := a.Range()
	series := WeightSeries{Points: make([]Point, 0, len(days))}
	var (
		values       []float64
		visitedMonth time.Month
		lastValue    float64
		seen         bool
	)

	for i, day := range days {
		label := fmt.Sprintf("%d", day.Day)
		if i == 0 || day.Month != visitedMonth {
			visitedMonth = day.Month
			label = fmt.Sprintf("%s %d", day.MonthAbbrev(), day.Day)
		}

		b, ok := buckets[day]
		switch {
		case ok:
			if series.Visible == nil {
				series.Visible = &Span{Start: i}
			}
			series.Visible.End = i
			lastValue = b.Value
			seen = true
			values = append(values, b.Value)
			series.Points = append(series.Points, Point{
				Kind:  PointPopulated,
				Date:  day,
				Label: label,
				ID:    b.ID,
				Value: b.Value,
			})
		case seen:
			series.Points = append(series.Points, Point{
				Kind:   PointCarried,
				Date:   day,
				Label:  label,
				Value:  lastValue,
				Hidden: true,
			})
		default:
			series.Points = append(series.Points, Point{Kind: PointGap, Date: day, Label: label})
		}
	}

	series.AvgWeight = meanOf(values)
	return series, nil
}

func gap(day calendar.Date) Point {
	return Point{Kind: PointGap, Date: day, Label: day.Label()}
}
