package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/util"
)

// Builder normalizes water, weight and fasting records into timeline entries
type Builder struct {
	location *time.Location
}

// NewBuilder creates a builder that reports wall-clock fields in loc
func NewBuilder(loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{location: loc}
}

// BuildFromWater expands every drink logged in the intake days
func (b *Builder) BuildFromWater(records []model.IntakeRecord) ([]Entry, error) {
	var entries []Entry

	for _, rec := range records {
		for _, drink := range rec.Times {
			ts, err := model.ParseTimestamp(drink.CreatedAt, b.location)
			if err != nil {
				return nil, model.Invalid("water", drink.ID, "createdAt", err.Error())
			}
			e := b.newEntry(TypeWater, drink.ID, ts)
			e.Water = &WaterDetail{Value: drink.Value, Goal: rec.Goal}
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// BuildFromBody builds weigh-in entries; other body measurements are skipped
func (b *Builder) BuildFromBody(records []model.BodyRecord) ([]Entry, error) {
	entries := make([]Entry, 0, len(records))

	for _, rec := range records {
		if rec.Type != model.BodyTypeWeight {
			continue
		}
		ts, err := model.ParseTimestamp(rec.CreatedAt, b.location)
		if err != nil {
			return nil, model.Invalid("weight", rec.ID, "createdAt", err.Error())
		}
		e := b.newEntry(TypeWeight, rec.ID, ts)
		e.Weight = &WeightDetail{Value: rec.Value}
		entries = append(entries, e)
	}

	return entries, nil
}

// BuildFromFasting builds session entries positioned at their creation time,
// or at the session end when the record has none
func (b *Builder) BuildFromFasting(records []model.FastingRecord) ([]Entry, error) {
	entries := make([]Entry, 0, len(records))

	for _, rec := range records {
		if rec.StartTimeStamp <= 0 || rec.EndTimeStamp < rec.StartTimeStamp {
			return nil, model.Invalid("fasting", rec.ID, "endTimeStamp", "does not close the session")
		}
		start := model.MillisToTime(rec.StartTimeStamp).In(b.location)
		end := model.MillisToTime(rec.EndTimeStamp).In(b.location)

		ts := end
		if rec.CreatedAt != "" {
			parsed, err := model.ParseTimestamp(rec.CreatedAt, b.location)
			if err != nil {
				return nil, model.Invalid("fasting", rec.ID, "createdAt", err.Error())
			}
			ts = parsed
		}

		e := b.newEntry(TypeFasting, rec.ID, ts)
		e.Fasting = &FastingDetail{
			Plan:  rec.PlanName,
			Start: start,
			End:   end,
			Total: end.Sub(start),
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Merge builds all three sources and orders them newest first. Entries with
// the same instant keep their input order: water, weight, fasting.
func (b *Builder) Merge(water []model.IntakeRecord, body []model.BodyRecord, fasting []model.FastingRecord) ([]Entry, error) {
	waterEntries, err := b.BuildFromWater(water)
	if err != nil {
		return nil, err
	}
	weightEntries, err := b.BuildFromBody(body)
	if err != nil {
		return nil, err
	}
	fastingEntries, err := b.BuildFromFasting(fasting)
	if err != nil {
		return nil, err
	}

	merged := MergeTimelines(waterEntries, weightEntries, fastingEntries)
	util.LogDebugf("Merged timeline: %d water, %d weight, %d fasting",
		len(waterEntries), len(weightEntries), len(fastingEntries))
	return merged, nil
}

// MergeTimelines concatenates timelines and sorts them newest first
func MergeTimelines(timelines ...[]Entry) []Entry {
	var totalSize int
	for _, tl := range timelines {
		totalSize += len(tl)
	}

	merged := make([]Entry, 0, totalSize)
	for _, tl := range timelines {
		merged = append(merged, tl...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	return merged
}

// Limit keeps the first n entries; n <= 0 keeps all
func Limit(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// FilterSince drops entries older than cutoff
func FilterSince(entries []Entry, cutoff time.Time) []Entry {
	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (b *Builder) newEntry(typ EntryType, id string, ts time.Time) Entry {
	local := ts.In(b.location)
	return Entry{
		Type:      typ,
		ID:        id,
		Timestamp: local,
		Day:       local.Weekday().String()[:3],
		Date:      local.Day(),
		Month:     int(local.Month()) - 1,
		Year:      local.Year(),
		Hour:      local.Hour(),
		Min:       local.Minute(),
		Sec:       local.Second(),
	}
}
