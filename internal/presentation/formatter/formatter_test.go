package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-health-monitor/internal/core/calendar"
	"github.com/penwyp/go-health-monitor/internal/core/chart"
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/core/timeline"
	"github.com/penwyp/go-health-monitor/internal/data/aggregator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIntake() chart.IntakeSeries {
	return chart.IntakeSeries{
		Points: []chart.Point{
			{Kind: chart.PointPopulated, Date: calendar.New(2024, time.May, 1), Label: "May 01", ID: "wr1", Value: 1500, Goal: 2000},
			{Kind: chart.PointGap, Date: calendar.New(2024, time.May, 2), Label: "May 02"},
		},
		AvgIntake: chart.Mean{Value: 1500, Valid: true},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format string
		want   interface{}
	}{
		{"", &TableFormatter{}},
		{"table", &TableFormatter{}},
		{"JSON", &JSONFormatter{}},
		{"csv", &CSVFormatter{}},
		{"bars", &BarFormatter{}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := New(tt.format)
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}

	_, err := New("xml")
	assert.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, IntakeReport(sampleIntake())))
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "Water intake", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "┌"))
	assert.Contains(t, lines[2], "Intake (ml)")
	assert.Contains(t, out, "│ 2024-05-01 │ May 01 │        1500 │      2000 │      75% │")
	assert.Contains(t, out, "│ 2024-05-02 │ May 02 │           - │         - │        - │")
	assert.Equal(t, "Average intake: 1500 ml", lines[len(lines)-1])

	// Every table line has the same display width.
	width := len([]rune(lines[1]))
	for _, line := range lines[1:6] {
		assert.Equal(t, width, len([]rune(line)), line)
	}
}

func TestTableFormatter_SummaryOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, MessageReport("BMI", nil, "BMI: 22.9", "Status: Normal")))
	assert.Equal(t, "BMI\nBMI: 22.9\nStatus: Normal\n", buf.String())
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, IntakeReport(sampleIntake())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Date", "Day", "Intake (ml)", "Goal (ml)", "Progress"}, records[0])
	assert.Equal(t, []string{"2024-05-01", "May 01", "1500", "2000", "75%"}, records[1])
	assert.Equal(t, []string{"2024-05-02", "May 02", "-", "-", "-"}, records[2])
}

func TestJSONFormatter_Series(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, IntakeReport(sampleIntake())))

	var got seriesView
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "intake", got.Series)
	require.Len(t, got.Points, 2)
	require.NotNil(t, got.Points[0].Value)
	assert.Equal(t, 1500.0, *got.Points[0].Value)
	assert.Equal(t, "populated", got.Points[0].Kind)
	assert.Nil(t, got.Points[1].Value, "gaps have no value")
	assert.Equal(t, "gap", got.Points[1].Kind)
	require.NotNil(t, got.Average)
	assert.Equal(t, 1500.0, *got.Average)
}

func TestJSONFormatter_RowsWithoutData(t *testing.T) {
	r := &Report{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, r))
	assert.JSONEq(t, `[{"a":"1","b":"2"}]`, buf.String())
}

func TestBarFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBarFormatter(40).Format(&buf, IntakeReport(sampleIntake())))
	out := buf.String()

	assert.Contains(t, out, "Water intake")
	assert.Contains(t, out, "1500 ml")
	// Bar width is 40 - 6 (label) - 7 (text) - 2 spaces; 1500 of 2000 fills 18.
	assert.Equal(t, 18, strings.Count(out, barGlyph))
	assert.Equal(t, 1, strings.Count(out, goalGlyph))
	assert.Contains(t, out, "Average intake: 1500 ml")
}

func TestBarFormatter_FallsBackToTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBarFormatter(40).Format(&buf, QueueReport(nil, 500)))
	assert.Contains(t, buf.String(), "Action ID")
	assert.Contains(t, buf.String(), "0 of 500 slots used")
}

func TestFastingReport(t *testing.T) {
	day := calendar.New(2024, time.May, 2)
	start := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	series := chart.FastingSeries{
		Points: []chart.Point{
			{Kind: chart.PointGap, Date: day.AddDays(-1), Label: "May 01"},
			{Kind: chart.PointPopulated, Date: day, Label: "May 02", Value: 8.5, Segments: []aggregator.FastingSegment{
				{RecordID: "fr1", Plan: "16:8", Start: start, End: start.Add(8*time.Hour + 30*time.Minute)},
			}},
		},
		MaxDuration:    16 * time.Hour,
		AvgHoursPerDay: chart.Mean{Value: 8.5, Valid: true},
	}

	r := FastingReport(series)
	require.Len(t, r.Rows, 2)
	assert.Equal(t, []string{"2024-05-01", "May 01", "-", ""}, r.Rows[0])
	assert.Equal(t, []string{"2024-05-02", "May 02", "8.5h", "00:00-08:30"}, r.Rows[1])
	assert.Equal(t, []string{"Longest fast: 16h 0m", "Average per fasting day: 8.5h"}, r.Summary)

	view := r.Data.(seriesView)
	require.NotNil(t, view.MaxDurationHours)
	assert.Equal(t, 16.0, *view.MaxDurationHours)
	require.Len(t, view.Points[1].Segments, 1)
	assert.Equal(t, "08:30", view.Points[1].Segments[0].End)
}

func TestWeightReport(t *testing.T) {
	series := chart.WeightSeries{
		Points: []chart.Point{
			{Kind: chart.PointGap, Date: calendar.New(2024, time.Jan, 29), Label: "Jan 29"},
			{Kind: chart.PointPopulated, Date: calendar.New(2024, time.Jan, 30), Label: "30", ID: "br1", Value: 70},
			{Kind: chart.PointCarried, Date: calendar.New(2024, time.Jan, 31), Label: "31", Value: 70, Hidden: true},
		},
		Visible:   &chart.Span{Start: 1, End: 1},
		AvgWeight: chart.Mean{Value: 70, Valid: true},
	}

	r := WeightReport(series, "kg")
	assert.Equal(t, []string{"Date", "Day", "Weight (kg)"}, r.Headers)
	assert.Equal(t, "-", r.Rows[0][2])
	assert.Equal(t, "70.0", r.Rows[1][2])
	assert.Equal(t, "(70.0)", r.Rows[2][2])
	assert.True(t, r.Bars[2].Muted)
	assert.Equal(t, []string{"Average weight: 70.0 kg"}, r.Summary)

	lb := WeightReport(series, "lb")
	assert.Equal(t, "154.3", lb.Rows[1][2])
	view := lb.Data.(seriesView)
	require.NotNil(t, view.Visible)
	assert.Equal(t, spanView{Start: 1, End: 1}, *view.Visible)
}

func TestWeightReport_NoData(t *testing.T) {
	r := WeightReport(chart.WeightSeries{}, "")
	assert.Equal(t, []string{"Average weight: -", "No weight recorded in range"}, r.Summary)
	assert.Nil(t, r.Data.(seriesView).Visible)
}

func TestTimelineReport(t *testing.T) {
	start := time.Date(2024, time.May, 1, 18, 0, 0, 0, time.UTC)
	entries := []timeline.Entry{
		{Type: timeline.TypeFasting, ID: "fr1", Day: "Thu", Date: 2, Month: 4, Year: 2024, Hour: 10,
			Fasting: &timeline.FastingDetail{Plan: "16:8", Start: start, End: start.Add(16 * time.Hour), Total: 16 * time.Hour}},
		{Type: timeline.TypeWater, ID: "d1", Day: "Thu", Date: 2, Month: 4, Year: 2024, Hour: 9, Min: 5,
			Water: &timeline.WaterDetail{Value: 250, Goal: 2000}},
		{Type: timeline.TypeWeight, ID: "br1", Day: "Thu", Date: 2, Month: 4, Year: 2024, Hour: 8,
			Weight: &timeline.WeightDetail{Value: 70.25}},
	}

	r := TimelineReport(entries)
	require.Len(t, r.Rows, 3)
	assert.Equal(t, []string{"Thu 2024-05-02 10:00", "fasting", "16:8 16h 0m (May 01 18:00-May 02 10:00)"}, r.Rows[0])
	assert.Equal(t, []string{"Thu 2024-05-02 09:05", "water", "250 ml (goal 2000 ml)"}, r.Rows[1])
	assert.Equal(t, []string{"Thu 2024-05-02 08:00", "weight", "70.2 kg"}, r.Rows[2])
	assert.Empty(t, r.Summary)

	empty := TimelineReport(nil)
	assert.Equal(t, []string{"No activity recorded"}, empty.Summary)
	assert.NotNil(t, empty.Data)
}

func TestQueueReport(t *testing.T) {
	actions := []model.QueuedAction{
		{UserID: "u1", ActionID: "qaid1", Invoker: model.InvokerLogWater, Name: model.ActionLogWater},
		{UserID: "u1", ActionID: "qaid2", Invoker: model.InvokerUpdateWeight, Name: model.ActionUpdateWeight, Attempts: 2},
	}
	r := QueueReport(actions, 500)
	assert.Equal(t, []string{"1", "qaid1", "LOG_WATER", "u1", "0"}, r.Rows[0])
	assert.Equal(t, []string{"2", "qaid2", "UPDATE_WEIGHT", "u1", "2"}, r.Rows[1])
	assert.Equal(t, []string{"2 of 500 slots used"}, r.Summary)
	assert.Len(t, r.Data.([]actionView), 2)
}
