package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/penwyp/go-health-monitor/internal/core/calendar"
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// MinFastingSegment is the shortest per-day slice of a fast that is kept.
const MinFastingSegment = time.Hour

// Aggregator buckets raw records by local calendar day.
type Aggregator struct {
	location   *time.Location
	minSegment time.Duration
}

// IntakeBucket holds the intake recorded for one day.
type IntakeBucket struct {
	ID    string
	Value float64
	Goal  float64
}

// WeightBucket holds the weight recorded for one day. Merged counts the
// records folded into it.
type WeightBucket struct {
	ID     string
	Value  float64
	Merged int
}

// FastingSegment is the part of a fasting session that falls within one day.
type FastingSegment struct {
	RecordID string
	Plan     string
	Start    time.Time
	End      time.Time
}

// Duration of the segment.
func (s FastingSegment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Hours of the segment as a fraction.
func (s FastingSegment) Hours() float64 {
	return s.Duration().Hours()
}

// StartClock renders the start as 24h "15:04".
func (s FastingSegment) StartClock() string {
	return s.Start.Format("15:04")
}

// EndClock renders the end as 24h "15:04"; a segment ending at midnight shows "24:00".
func (s FastingSegment) EndClock() string {
	if s.End.Hour() == 0 && s.End.Minute() == 0 && s.End.After(s.Start) {
		return "24:00"
	}
	return s.End.Format("15:04")
}

// FastingBuckets is the per-day split of all fasting sessions.
type FastingBuckets struct {
	Days        map[calendar.Date][]FastingSegment
	MaxDuration time.Duration
}

// TotalHours sums the kept segments of a day.
func (b FastingBuckets) TotalHours(day calendar.Date) float64 {
	var total float64
	for _, seg := range b.Days[day] {
		total += seg.Hours()
	}
	return total
}

// NewAggregator creates an aggregator that computes day boundaries in loc.
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{
		location:   loc,
		minSegment: MinFastingSegment,
	}
}

// Location returns the timezone used for day boundaries.
func (a *Aggregator) Location() *time.Location {
	return a.location
}

// BucketIntake rebuilds the intake records keyed by day. When today is not
// nil it is applied last and replaces any stored record for the same day.
func (a *Aggregator) BucketIntake(records []model.IntakeRecord, today *model.IntakeRecord) (map[calendar.Date]IntakeBucket, error) {
	buckets := make(map[calendar.Date]IntakeBucket, len(records)+1)

	put := func(r model.IntakeRecord) error {
		day, err := calendar.ParseKey(r.Date)
		if err != nil {
			return model.Invalid("water", r.ID, "date", fmt.Sprintf("%q is not YYYY-MM-DD", r.Date))
		}
		buckets[day] = IntakeBucket{ID: r.ID, Value: r.Value, Goal: r.Goal}
		return nil
	}

	for _, r := range records {
		if err := put(r); err != nil {
			return nil, err
		}
	}
	if today != nil {
		if err := put(*today); err != nil {
			return nil, err
		}
	}

	util.LogDebugf("Bucketed %d intake records into %d days", len(records), len(buckets))
	return buckets, nil
}

// BucketWeight folds weight records into one bucket per day. A later record on
// an existing day updates the bucket's value in place; the bucket keeps the id
// of the first record seen for that day.
func (a *Aggregator) BucketWeight(records []model.BodyRecord) (map[calendar.Date]WeightBucket, error) {
	buckets := make(map[calendar.Date]WeightBucket)

	for _, r := range records {
		if r.Type != model.BodyTypeWeight {
			continue
		}
		created, err := model.ParseTimestamp(r.CreatedAt, a.location)
		if err != nil {
			return nil, model.Invalid("weight", r.ID, "createdAt", err.Error())
		}
		day := calendar.In(created, a.location)

		if existing, ok := buckets[day]; ok {
			existing.Value = r.Value
			existing.Merged++
			buckets[day] = existing
			continue
		}
		buckets[day] = WeightBucket{ID: r.ID, Value: r.Value, Merged: 1}
	}

	return buckets, nil
}

// UpsertDailyWeight applies the one-weight-per-day rule to a record list: the
// first weight record created on now's day has its value replaced, otherwise a
// new record with newID is appended. The input slice is not modified.
func (a *Aggregator) UpsertDailyWeight(records []model.BodyRecord, value float64, newID string, now time.Time) ([]model.BodyRecord, bool, error) {
	today := calendar.In(now, a.location)
	stamp := model.FormatTimestamp(now)
	out := append([]model.BodyRecord(nil), records...)

	for i, r := range out {
		if r.Type != model.BodyTypeWeight {
			continue
		}
		created, err := model.ParseTimestamp(r.CreatedAt, a.location)
		if err != nil {
			return nil, false, model.Invalid("weight", r.ID, "createdAt", err.Error())
		}
		if calendar.In(created, a.location) == today {
			out[i].Value = value
			out[i].UpdatedAt = stamp
			return out, false, nil
		}
	}

	out = append(out, model.BodyRecord{
		ID:        newID,
		Value:     value,
		Type:      model.BodyTypeWeight,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	})
	return out, true, nil
}

// BucketFasting splits every session at local midnight. Each day receives the
// slice of the session clipped to [00:00, 24:00); slices shorter than
// MinFastingSegment are dropped. MaxDuration is taken over whole sessions.
func (a *Aggregator) BucketFasting(records []model.FastingRecord) (FastingBuckets, error) {
	result := FastingBuckets{Days: make(map[calendar.Date][]FastingSegment)}

	for _, r := range records {
		if err := validateFasting(r); err != nil {
			return FastingBuckets{}, err
		}

		start := model.MillisToTime(r.StartTimeStamp).In(a.location)
		end := model.MillisToTime(r.EndTimeStamp).In(a.location)
		if total := end.Sub(start); total > result.MaxDuration {
			result.MaxDuration = total
		}

		for _, seg := range a.splitByDay(r, start, end) {
			day := calendar.In(seg.Start, a.location)
			result.Days[day] = append(result.Days[day], seg)
		}
	}

	for day := range result.Days {
		segs := result.Days[day]
		sort.SliceStable(segs, func(i, j int) bool {
			return segs[i].Start.Before(segs[j].Start)
		})
	}

	util.LogDebugf("Bucketed %d fasting sessions into %d days, longest %s",
		len(records), len(result.Days), util.FormatDuration(result.MaxDuration))
	return result, nil
}

func (a *Aggregator) splitByDay(r model.FastingRecord, start, end time.Time) []FastingSegment {
	var segments []FastingSegment

	for day := calendar.In(start, a.location); day.Start(a.location).Before(end); day = day.AddDays(1) {
		segStart := day.Start(a.location)
		if start.After(segStart) {
			segStart = start
		}
		segEnd := day.End(a.location)
		if end.Before(segEnd) {
			segEnd = end
		}

		if segEnd.Sub(segStart) < a.minSegment {
			continue
		}
		segments = append(segments, FastingSegment{
			RecordID: r.ID,
			Plan:     r.PlanName,
			Start:    segStart,
			End:      segEnd,
		})
	}

	return segments
}

func validateFasting(r model.FastingRecord) error {
	if r.StartTimeStamp <= 0 {
		return model.Invalid("fasting", r.ID, "startTimeStamp", "is missing")
	}
	if r.EndTimeStamp <= 0 {
		return model.Invalid("fasting", r.ID, "endTimeStamp", "is missing")
	}
	if r.EndTimeStamp < r.StartTimeStamp {
		return model.Invalid("fasting", r.ID, "endTimeStamp", "is before startTimeStamp")
	}
	return nil
}
