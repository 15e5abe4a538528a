package timeline

import (
	"testing"
	"time"

	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/testing/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_NewestFirst(t *testing.T) {
	gen := fixtures.NewRecordGenerator(time.UTC)
	b := NewBuilder(time.UTC)

	water := gen.Water("2024-05-01", 250, 2000, gen.At(2024, time.May, 1, 9, 0))
	weight := gen.Weight(gen.At(2024, time.May, 1, 8, 0), 72)
	fast := gen.Fast(gen.At(2024, time.April, 30, 18, 0), gen.At(2024, time.May, 1, 10, 0), "16:8")

	entries, err := b.Merge([]model.IntakeRecord{water}, []model.BodyRecord{weight}, []model.FastingRecord{fast})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, TypeFasting, entries[0].Type)
	assert.Equal(t, 10, entries[0].Hour)
	assert.Equal(t, TypeWater, entries[1].Type)
	assert.Equal(t, 9, entries[1].Hour)
	assert.Equal(t, TypeWeight, entries[2].Type)
	assert.Equal(t, 8, entries[2].Hour)

	require.NotNil(t, entries[0].Fasting)
	assert.Equal(t, 16*time.Hour, entries[0].Fasting.Total)
	assert.Equal(t, "16:8", entries[0].Fasting.Plan)
	require.NotNil(t, entries[1].Water)
	assert.Equal(t, 2000.0, entries[1].Water.Goal)
}

func TestMerge_TiesKeepInputOrder(t *testing.T) {
	gen := fixtures.NewRecordGenerator(time.UTC)
	b := NewBuilder(time.UTC)
	at := gen.At(2024, time.May, 1, 9, 0)

	water := gen.Water("2024-05-01", 250, 2000, at)
	weight := gen.Weight(at, 72)

	entries, err := b.Merge([]model.IntakeRecord{water}, []model.BodyRecord{weight}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, TypeWater, entries[0].Type)
	assert.Equal(t, TypeWeight, entries[1].Type)
}

func TestBuildFromWater_ExpandsDrinks(t *testing.T) {
	gen := fixtures.NewRecordGenerator(time.UTC)
	b := NewBuilder(time.UTC)

	rec := gen.Water("2024-05-01", 600, 2000,
		gen.At(2024, time.May, 1, 8, 0),
		gen.At(2024, time.May, 1, 12, 0),
		gen.At(2024, time.May, 1, 16, 0))

	entries, err := b.BuildFromWater([]model.IntakeRecord{rec, gen.Water("2024-05-02", 0, 2000)})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, 200.0, e.Water.Value)
		assert.Equal(t, "Wed", e.Day)
		assert.Equal(t, 4, e.Month)
		assert.Equal(t, 2024, e.Year)
	}
}

func TestBuildFromFasting_TimezoneAware(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	b := NewBuilder(time.UTC)

	rec := model.FastingRecord{
		ID:             "f1",
		StartTimeStamp: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
		EndTimeStamp:   time.Date(2024, time.May, 1, 16, 0, 0, 0, time.UTC).UnixMilli(),
		CreatedAt:      time.Date(2024, time.May, 2, 1, 0, 0, 0, tokyo).Format(time.RFC3339),
	}

	entries, err := b.BuildFromFasting([]model.FastingRecord{rec})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// 01:00+09:00 on May 2 is 16:00 UTC on May 1; the offset is honoured.
	assert.Equal(t, 1, entries[0].Date)
	assert.Equal(t, 16, entries[0].Hour)
}

func TestBuildFromFasting_FallsBackToEnd(t *testing.T) {
	gen := fixtures.NewRecordGenerator(time.UTC)
	fast := gen.Fast(gen.At(2024, time.May, 1, 0, 0), gen.At(2024, time.May, 1, 14, 30), "14:10")
	fast.CreatedAt = ""

	entries, err := NewBuilder(time.UTC).BuildFromFasting([]model.FastingRecord{fast})
	require.NoError(t, err)
	assert.Equal(t, 14, entries[0].Hour)
	assert.Equal(t, 30, entries[0].Min)
}

func TestBuild_InvalidRecords(t *testing.T) {
	b := NewBuilder(time.UTC)

	_, err := b.BuildFromBody([]model.BodyRecord{{ID: "b", Type: model.BodyTypeWeight, CreatedAt: "yesterday"}})
	assert.ErrorIs(t, err, model.ErrInvalidRecord)

	_, err = b.BuildFromFasting([]model.FastingRecord{{ID: "f", StartTimeStamp: 10, EndTimeStamp: 5}})
	assert.ErrorIs(t, err, model.ErrInvalidRecord)

	_, err = b.BuildFromWater([]model.IntakeRecord{{ID: "w", Times: []model.IntakeTime{{ID: "t"}}}})
	assert.ErrorIs(t, err, model.ErrInvalidRecord)
}

func TestBuildFromBody_SkipsOtherTypes(t *testing.T) {
	entries, err := NewBuilder(time.UTC).BuildFromBody([]model.BodyRecord{
		{ID: "h", Type: "height", Value: 180, CreatedAt: "2024-05-01T08:00:00Z"},
	})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLimitAndFilter(t *testing.T) {
	base := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "a", Timestamp: base},
		{ID: "b", Timestamp: base.Add(-time.Hour)},
		{ID: "c", Timestamp: base.Add(-2 * time.Hour)},
	}

	assert.Len(t, Limit(entries, 2), 2)
	assert.Len(t, Limit(entries, 0), 3)
	assert.Len(t, Limit(entries, 10), 3)

	filtered := FilterSince(entries, base.Add(-time.Hour))
	require.Len(t, filtered, 2)
	assert.Equal(t, "b", filtered[1].ID)
}
