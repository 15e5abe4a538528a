package tracker

import (
	"context"
	"fmt"

	"github.com/penwyp/go-health-monitor/internal/core/chart"
	"github.com/penwyp/go-health-monitor/internal/core/health"
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/core/timeline"
	"github.com/penwyp/go-health-monitor/internal/util"
)

func (t *Tracker) assembler(days int) *chart.Assembler {
	if days <= 0 {
		days = t.config.ChartDays
	}
	return chart.NewAssembler(days, t.clock)
}

// IntakeChart builds the hydration series over days days. today, when set,
// replaces the stored record for its day.
func (t *Tracker) IntakeChart(days int, today *model.IntakeRecord) (chart.IntakeSeries, error) {
	md, err := t.store.Metadata()
	if err != nil {
		return chart.IntakeSeries{}, err
	}
	return t.assembler(days).Intake(md.WaterRecords, today)
}

// TodayIntake builds a record for today holding ml, keeping the stored day's
// id and goal. It is the live value passed to IntakeChart.
func (t *Tracker) TodayIntake(ml float64) (*model.IntakeRecord, error) {
	md, err := t.store.Metadata()
	if err != nil {
		return nil, err
	}
	rec := &model.IntakeRecord{
		ID:    "today",
		Date:  t.today().Key(),
		Value: ml,
		Goal:  t.config.WaterGoal,
	}
	for _, r := range md.WaterRecords {
		if r.Date == rec.Date {
			rec.ID = r.ID
			if r.Goal > 0 {
				rec.Goal = r.Goal
			}
			break
		}
	}
	return rec, nil
}

// FastingChart builds the fasting series over days days.
func (t *Tracker) FastingChart(days int) (chart.FastingSeries, error) {
	md, err := t.store.Metadata()
	if err != nil {
		return chart.FastingSeries{}, err
	}
	return t.assembler(days).Fasting(md.FastingRecords)
}

// WeightChart builds the body-weight series over days days.
func (t *Tracker) WeightChart(days int) (chart.WeightSeries, error) {
	md, err := t.store.Metadata()
	if err != nil {
		return chart.WeightSeries{}, err
	}
	return t.assembler(days).Weight(md.BodyRecords)
}

// Timeline merges all records newest first, keeping at most limit entries
// when limit > 0.
func (t *Tracker) Timeline(limit int) ([]timeline.Entry, error) {
	md, err := t.store.Metadata()
	if err != nil {
		return nil, err
	}
	entries, err := timeline.NewBuilder(t.clock.Location()).Merge(md.WaterRecords, md.BodyRecords, md.FastingRecords)
	if err != nil {
		return nil, err
	}
	return timeline.Limit(entries, limit), nil
}

// BMIReport is the body-mass index for the current weight.
type BMIReport struct {
	WeightKg float64 `json:"weightKg"`
	HeightCm float64 `json:"heightCm"`
	BMI      float64 `json:"bmi"`
	Status   string  `json:"status"`
}

// BMI computes the index from the current weight. A positive heightCm is
// saved as the new height first.
func (t *Tracker) BMI(ctx context.Context, heightCm float64) (BMIReport, error) {
	if heightCm > 0 {
		if err := t.SetHeight(ctx, heightCm); err != nil {
			return BMIReport{}, err
		}
	}

	md, err := t.store.Metadata()
	if err != nil {
		return BMIReport{}, err
	}
	if md.Height <= 0 {
		return BMIReport{}, fmt.Errorf("height is not set")
	}
	if md.CurrentWeight <= 0 {
		return BMIReport{}, fmt.Errorf("no weight recorded")
	}

	bmi, err := health.BMI(md.CurrentWeight, md.Height)
	if err != nil {
		return BMIReport{}, err
	}
	return BMIReport{
		WeightKg: md.CurrentWeight,
		HeightCm: md.Height,
		BMI:      bmi,
		Status:   health.BMIStatus(bmi),
	}, nil
}

// SetHeight saves the height locally and pushes it to the service when a
// user is configured. Height is a profile field, not a record, so a failed
// push is logged and not queued.
func (t *Tracker) SetHeight(ctx context.Context, heightCm float64) error {
	if heightCm <= 0 {
		return model.Invalid("profile", "", "height", "must be > 0")
	}
	if err := t.store.UpdateMetadata(model.MetadataPatch{Height: &heightCm}); err != nil {
		return err
	}

	userID, err := t.UserID()
	if err != nil || userID == "" {
		return err
	}
	if err := t.service.SetHeight(ctx, userID, heightCm); err != nil {
		util.LogWarn("Failed to push height", util.F("error", err.Error()))
	}
	return nil
}
