package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/penwyp/go-health-monitor/internal/core/chart"
	"github.com/penwyp/go-health-monitor/internal/core/health"
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/core/timeline"
	"github.com/penwyp/go-health-monitor/internal/util"
)

const missing = "-"

// maxPlanWidth caps fasting plan names in timeline details.
const maxPlanWidth = 12

type segmentView struct {
	RecordID string  `json:"recordId"`
	Plan     string  `json:"plan"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Hours    float64 `json:"hours"`
}

type pointView struct {
	Date     string        `json:"date"`
	Label    string        `json:"label"`
	Kind     string        `json:"kind"`
	ID       string        `json:"id,omitempty"`
	Value    *float64      `json:"value"`
	Goal     float64       `json:"goal,omitempty"`
	Hidden   bool          `json:"hidden,omitempty"`
	Segments []segmentView `json:"segments,omitempty"`
}

type spanView struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type seriesView struct {
	Series           string      `json:"series"`
	Unit             string      `json:"unit"`
	Points           []pointView `json:"points"`
	Average          *float64    `json:"average"`
	MaxDurationHours *float64    `json:"maxDurationHours,omitempty"`
	Visible          *spanView   `json:"visible,omitempty"`
}

func meanPtr(m chart.Mean) *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

func viewPoint(p chart.Point, value float64) pointView {
	v := pointView{
		Date:   p.Date.Key(),
		Label:  p.Label,
		Kind:   p.Kind.String(),
		ID:     p.ID,
		Goal:   p.Goal,
		Hidden: p.Hidden,
	}
	if p.Kind != chart.PointGap {
		v.Value = &value
	}
	for _, s := range p.Segments {
		v.Segments = append(v.Segments, segmentView{
			RecordID: s.RecordID,
			Plan:     s.Plan,
			Start:    s.StartClock(),
			End:      s.EndClock(),
			Hours:    s.Hours(),
		})
	}
	return v
}

// IntakeReport lists daily water intake in millilitres.
func IntakeReport(series chart.IntakeSeries) *Report {
	r := &Report{
		Title:      "Water intake",
		Headers:    []string{"Date", "Day", "Intake (ml)", "Goal (ml)", "Progress"},
		RightAlign: []bool{false, false, true, true, true},
	}
	view := seriesView{Series: "intake", Unit: "ml", Average: meanPtr(series.AvgIntake)}

	for _, p := range series.Points {
		view.Points = append(view.Points, viewPoint(p, p.Value))

		switch p.Kind {
		case chart.PointPopulated:
			progress := missing
			if p.Goal > 0 {
				progress = fmt.Sprintf("%.0f%%", p.Value/p.Goal*100)
			}
			r.Rows = append(r.Rows, []string{p.Date.Key(), p.Label, formatAmount(p.Value), formatAmount(p.Goal), progress})
			r.Bars = append(r.Bars, Bar{Label: p.Label, Value: p.Value, Goal: p.Goal, Text: formatAmount(p.Value) + " ml"})
		default:
			r.Rows = append(r.Rows, []string{p.Date.Key(), p.Label, missing, missing, missing})
			r.Bars = append(r.Bars, Bar{Label: p.Label, Muted: true, Text: missing})
		}
	}

	r.Summary = []string{"Average intake: " + util.FormatOptional(series.AvgIntake.Value, series.AvgIntake.Valid, 0) + " ml"}
	r.Data = view
	return r
}

// FastingReport lists fasting hours per day with their windows.
func FastingReport(series chart.FastingSeries) *Report {
	r := &Report{
		Title:      "Fasting",
		Headers:    []string{"Date", "Day", "Hours", "Windows"},
		RightAlign: []bool{false, false, true, false},
	}
	maxHours := series.MaxDuration.Hours()
	view := seriesView{
		Series:           "fasting",
		Unit:             "h",
		Average:          meanPtr(series.AvgHoursPerDay),
		MaxDurationHours: &maxHours,
	}

	for _, p := range series.Points {
		view.Points = append(view.Points, viewPoint(p, p.Value))

		if p.Kind != chart.PointPopulated {
			r.Rows = append(r.Rows, []string{p.Date.Key(), p.Label, missing, ""})
			r.Bars = append(r.Bars, Bar{Label: p.Label, Muted: true, Text: missing})
			continue
		}

		windows := make([]string, 0, len(p.Segments))
		for _, s := range p.Segments {
			windows = append(windows, s.StartClock()+"-"+s.EndClock())
		}
		r.Rows = append(r.Rows, []string{p.Date.Key(), p.Label, util.FormatHours(p.Value), strings.Join(windows, ", ")})
		r.Bars = append(r.Bars, Bar{Label: p.Label, Value: p.Value, Text: util.FormatHours(p.Value)})
	}

	r.Summary = []string{
		"Longest fast: " + util.FormatDuration(series.MaxDuration),
		"Average per fasting day: " + util.FormatOptional(series.AvgHoursPerDay.Value, series.AvgHoursPerDay.Valid, 1) + "h",
	}
	r.Data = view
	return r
}

// WeightReport lists daily weight in unit (kg or lb). Carried days show the
// last known value in parentheses.
func WeightReport(series chart.WeightSeries, unit string) *Report {
	if unit != health.UnitPound {
		unit = health.UnitKilogram
	}
	convert := func(kg float64) float64 {
		if unit == health.UnitPound {
			return health.KilogramsToPounds(kg)
		}
		return kg
	}

	r := &Report{
		Title:      "Weight",
		Headers:    []string{"Date", "Day", "Weight (" + unit + ")"},
		RightAlign: []bool{false, false, true},
	}
	view := seriesView{Series: "weight", Unit: unit}
	if series.AvgWeight.Valid {
		avg := convert(series.AvgWeight.Value)
		view.Average = &avg
	}
	if series.Visible != nil {
		view.Visible = &spanView{Start: series.Visible.Start, End: series.Visible.End}
	}

	for _, p := range series.Points {
		value := convert(p.Value)
		view.Points = append(view.Points, viewPoint(p, value))

		switch p.Kind {
		case chart.PointPopulated:
			text := fmt.Sprintf("%.1f", value)
			r.Rows = append(r.Rows, []string{p.Date.Key(), p.Label, text})
			r.Bars = append(r.Bars, Bar{Label: p.Label, Value: value, Text: text})
		case chart.PointCarried:
			text := fmt.Sprintf("(%.1f)", value)
			r.Rows = append(r.Rows, []string{p.Date.Key(), p.Label, text})
			r.Bars = append(r.Bars, Bar{Label: p.Label, Value: value, Muted: true, Text: text})
		default:
			r.Rows = append(r.Rows, []string{p.Date.Key(), p.Label, missing})
			r.Bars = append(r.Bars, Bar{Label: p.Label, Muted: true, Text: missing})
		}
	}

	avg := missing
	if view.Average != nil {
		avg = util.FormatWeight(*view.Average, unit)
	}
	r.Summary = []string{"Average weight: " + avg}
	if series.Visible == nil {
		r.Summary = append(r.Summary, "No weight recorded in range")
	}
	r.Data = view
	return r
}

// TimelineReport lists health events newest first.
func TimelineReport(entries []timeline.Entry) *Report {
	r := &Report{
		Title:   "Timeline",
		Headers: []string{"When", "Type", "Detail"},
		Data:    entries,
	}
	if entries == nil {
		r.Data = []timeline.Entry{}
	}

	for _, e := range entries {
		when := fmt.Sprintf("%s %04d-%s-%s %s:%s", e.Day, e.Year,
			util.FormatNum(e.Month+1), util.FormatNum(e.Date), util.FormatNum(e.Hour), util.FormatNum(e.Min))
		r.Rows = append(r.Rows, []string{when, string(e.Type), entryDetail(e)})
	}
	if len(entries) == 0 {
		r.Summary = []string{"No activity recorded"}
	}
	return r
}

func entryDetail(e timeline.Entry) string {
	switch e.Type {
	case timeline.TypeWater:
		if e.Water == nil {
			return ""
		}
		return fmt.Sprintf("%s ml (goal %s ml)", formatAmount(e.Water.Value), formatAmount(e.Water.Goal))
	case timeline.TypeWeight:
		if e.Weight == nil {
			return ""
		}
		return util.FormatWeight(e.Weight.Value, health.UnitKilogram)
	case timeline.TypeFasting:
		if e.Fasting == nil {
			return ""
		}
		return fmt.Sprintf("%s %s (%s-%s)",
			util.TruncateString(e.Fasting.Plan, maxPlanWidth),
			util.FormatDuration(e.Fasting.Total),
			e.Fasting.Start.Format("Jan 02 15:04"),
			e.Fasting.End.Format("Jan 02 15:04"))
	default:
		return ""
	}
}

type actionView struct {
	Position int    `json:"position"`
	ActionID string `json:"actionId"`
	Name     string `json:"name"`
	Invoker  string `json:"invoker"`
	UserID   string `json:"userId"`
	Attempts int    `json:"attempts"`
}

// QueueReport lists queued writes, head first.
func QueueReport(actions []model.QueuedAction, capacity int) *Report {
	r := &Report{
		Title:      "Offline queue",
		Headers:    []string{"#", "Action ID", "Name", "User", "Attempts"},
		RightAlign: []bool{true, false, false, false, true},
	}
	views := make([]actionView, 0, len(actions))
	for i, a := range actions {
		views = append(views, actionView{
			Position: i + 1,
			ActionID: a.ActionID,
			Name:     a.Name,
			Invoker:  a.Invoker,
			UserID:   a.UserID,
			Attempts: a.Attempts,
		})
		r.Rows = append(r.Rows, []string{strconv.Itoa(i + 1), a.ActionID, a.Name, a.UserID, strconv.Itoa(a.Attempts)})
	}
	r.Summary = []string{fmt.Sprintf("%d of %d slots used", len(actions), capacity)}
	r.Data = views
	return r
}

// MessageReport is a report made of summary lines only.
func MessageReport(title string, data interface{}, lines ...string) *Report {
	return &Report{Title: title, Summary: lines, Data: data}
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

